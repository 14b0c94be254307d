// Copyright © 2026 clc
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package main

import (
	"fmt"
	"log"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/CameronLCrawford/vertex/isa"
)

var (
	listOpcodes     *widgets.List
	paragraphDetail *widgets.Paragraph
	paragraphTips   *widgets.Paragraph
)

func scopeString(scope isa.Scope) string {
	names := []string{"Z", "S", "C"}
	sb := &strings.Builder{}
	for i, flag := range names {
		switch scope[i] {
		case 1:
			sb.WriteString(flag)
			sb.WriteString("=1 ")
		case -1:
			sb.WriteString(flag)
			sb.WriteString("=0 ")
		}
	}
	if sb.Len() == 0 {
		return "unconditional"
	}
	return strings.TrimSpace(sb.String())
}

func renderDetail(p *widgets.Paragraph, opcode int) {
	instruction := isa.Instructions[opcode]
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("Opcode: $%02X\n", opcode))
	sb.WriteString(fmt.Sprintf("Scope:  %s\n", scopeString(instruction.Scope)))
	sb.WriteString(fmt.Sprintf("Steps:  %d\n\n", len(instruction.Micro)))
	for i, word := range instruction.Micro {
		sb.WriteString(fmt.Sprintf("%2d  %08X  %s\n", i, word, isa.DescribeWord(word)))
	}
	p.Title = instruction.Name
	p.Text = sb.String()
}

func initLayout() {
	listOpcodes = widgets.NewList()
	listOpcodes.Title = "Instructions"
	listOpcodes.SetRect(0, 0, 24, 40)
	listOpcodes.SelectedRowStyle = ui.NewStyle(ui.ColorCyan)
	for i, instruction := range isa.Instructions {
		listOpcodes.Rows = append(listOpcodes.Rows, fmt.Sprintf("$%02X %s", i, instruction.Name))
	}

	paragraphDetail = widgets.NewParagraph()
	paragraphDetail.SetRect(24, 0, 24+64, 37)

	paragraphTips = widgets.NewParagraph()
	paragraphTips.Title = "Tips"
	paragraphTips.Text = "UP/DOWN = Select Instruction    Q = Quit"
	paragraphTips.SetRect(24, 37, 24+64, 40)
}

func draw() {
	renderDetail(paragraphDetail, listOpcodes.SelectedRow)
	ui.Render(listOpcodes, paragraphDetail, paragraphTips)
}

func main() {
	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	initLayout()
	draw()

	for e := range ui.PollEvents() {
		if e.Type == ui.KeyboardEvent {
			if e.ID == "q" || e.ID == "Q" || e.ID == "<C-c>" {
				break
			} else if e.ID == "<Down>" || e.ID == "j" {
				listOpcodes.ScrollDown()
			} else if e.ID == "<Up>" || e.ID == "k" {
				listOpcodes.ScrollUp()
			} else if e.ID == "<PageDown>" {
				listOpcodes.ScrollPageDown()
			} else if e.ID == "<PageUp>" {
				listOpcodes.ScrollPageUp()
			}
			draw()
		}
	}
}

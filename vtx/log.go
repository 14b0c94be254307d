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

package vtx

import (
	"fmt"
	"os"
)

// Logger receives assembler diagnostics that do not abort assembly,
// such as the duplicate-label warning.
type Logger interface {
	Log(msg string)
}

type stderrLogger struct {
}

func (l *stderrLogger) Log(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

var (
	defaultLoggerImpl = &stderrLogger{}
	logger            Logger = defaultLoggerImpl
)

// SetLogger replaces the package logger. Passing nil restores the
// default, which writes to stderr.
func SetLogger(impl Logger) {
	if impl == nil {
		logger = defaultLoggerImpl
	} else {
		logger = impl
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/urfave/cli.v2"

	"github.com/CameronLCrawford/vertex"
)

func main() {
	app := &cli.App{
		Name:  "vtxasm",
		Usage: "Assemble Vtx source to a Vertex ROM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file (stdout if omitted)",
			},
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "address in memory to start program from; omission places the program at the end of memory",
			},
		},
		Action: func(c *cli.Context) error {
			var source []byte
			var err error
			if c.Args().Len() > 0 {
				source, err = os.ReadFile(c.Args().Get(0))
			} else {
				source, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			address := -1
			if text := c.String("address"); text != "" {
				parsed, err := strconv.ParseUint(text, 0, 16)
				if err != nil {
					return cli.Exit(fmt.Sprintf("invalid start address %q", text), 1)
				}
				address = int(parsed)
			}

			rom, err := vertex.Assemble(string(source), address)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if path := c.String("output"); path != "" {
				if err := os.WriteFile(path, rom, 0644); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				return nil
			}
			_, err = os.Stdout.Write(rom)
			return err
		},
	}

	app.Run(os.Args)
}

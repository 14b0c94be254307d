package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/urfave/cli.v2"

	"github.com/CameronLCrawford/vertex"
	"github.com/CameronLCrawford/vertex/link"
)

func readSource(c *cli.Context) (string, error) {
	if c.Args().Len() > 0 {
		raw, err := os.ReadFile(c.Args().Get(0))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func parseAddress(c *cli.Context) (int, error) {
	text := c.String("address")
	if text == "" {
		return -1, nil
	}
	address, err := strconv.ParseUint(text, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid start address %q", text)
	}
	return int(address), nil
}

func main() {
	app := &cli.App{
		Name:  "stornc",
		Usage: "Compile Storn source to a Vertex ROM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file (stdout if omitted)",
			},
			&cli.StringFlag{
				Name:    "assembly",
				Aliases: []string{"s"},
				Usage:   "file to write assembly to (no assembly written if omitted)",
			},
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "address in memory to start program from; omission places the program at the end of memory",
			},
			&cli.StringFlag{
				Name:    "imports",
				Aliases: []string{"i"},
				Usage:   "file to read import data from (no imports used if omitted)",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"e"},
				Usage:   "file to write export data to (no exports generated if omitted)",
			},
		},
		Action: func(c *cli.Context) error {
			source, err := readSource(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			address, err := parseAddress(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			imports := link.NewMap()
			if path := c.String("imports"); path != "" {
				imports, err = link.LoadFile(path)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}

			rom, assembly, exports, err := vertex.Compile(source, address, imports)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Compilation failed with error:\n%v", err), 1)
			}

			if path := c.String("assembly"); path != "" {
				if err := os.WriteFile(path, []byte(assembly), 0644); err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}
			if path := c.String("export"); path != "" {
				if err := exports.SaveFile(path); err != nil {
					return cli.Exit(err.Error(), 1)
				}
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

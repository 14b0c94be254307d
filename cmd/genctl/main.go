package main

import (
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/CameronLCrawford/vertex/isa"
)

func main() {
	app := &cli.App{
		Name:  "genctl",
		Usage: "Generate the Vertex control ROM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file",
				Value:   "control",
			},
		},
		Action: func(c *cli.Context) error {
			f, err := os.Create(c.String("output"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer f.Close()
			if err := isa.WriteControlROM(f); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}

	app.Run(os.Args)
}

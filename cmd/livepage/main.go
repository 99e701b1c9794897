package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "livepage",
		Usage: "paginate rich-text documents the way the live editor does",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "YAML profile with page and pagination settings",
				EnvVars: []string{"LIVEPAGE_PROFILE"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every pagination pass",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "paginate",
				Usage:     "print the page count and break positions of a document",
				ArgsUsage: "<source>",
				Action:    paginateAction,
			},
			{
				Name:      "export",
				Usage:     "export a document as a PDF with one page per editor page",
				ArgsUsage: "<source>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output PDF path (default: source name with .pdf)",
					},
					&cli.BoolFlag{
						Name:  "page-numbers",
						Usage: "print page numbers in the footer",
					},
				},
				Action: exportAction,
			},
			{
				Name:      "serve",
				Usage:     "serve a live preview of a document over HTTP",
				ArgsUsage: "[source]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "address to listen on (default from profile)",
					},
					&cli.StringFlag{
						Name:  "store",
						Usage: "SQLite database to autosave to",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "saved",
				Usage: "manage autosaved documents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "store",
						Usage:    "SQLite database holding the documents",
						Required: true,
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list saved documents, most recent first",
						Action: savedListAction,
					},
					{
						Name:      "delete",
						Usage:     "delete a saved document",
						ArgsUsage: "<name>",
						Action:    savedDeleteAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

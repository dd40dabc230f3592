package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/treeinv/lang"
	"github.com/arjunmahishi/treeinv/types"
)

// languageInfo is the capability summary printed by the languages command.
type languageInfo struct {
	Name         string              `json:"name" yaml:"name"`
	Extensions   []string            `json:"extensions" yaml:"extensions"`
	ElementTypes []types.ElementType `json:"element_types" yaml:"element_types"`
	Queries      []string            `json:"queries" yaml:"queries"`
}

func languagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "list supported languages, their extensions, element types and named queries",
		Action: func(ctx context.Context, _ *cli.Command) error {
			var infos []languageInfo
			for _, p := range lang.Default().Plugins() {
				infos = append(infos, languageInfo{
					Name:         p.Name(),
					Extensions:   p.Extensions(),
					ElementTypes: p.ElementTypes(),
					Queries:      p.QueryNames(),
				})
			}
			return settingsFrom(ctx).out.Write(infos)
		},
	}
}

func queriesCommand() *cli.Command {
	return &cli.Command{
		Name:      "queries",
		Usage:     "print the named queries of a language",
		ArgsUsage: "[name]",
		Description: "Print query text, one block per query, headed by a ';; <name>' line.\n" +
			"Output is designed to be grep-friendly and valid as a query file.\n\n" +
			"Examples:\n" +
			"  treeinv queries -l go                 # all Go queries\n" +
			"  treeinv queries -l go functions       # one query\n" +
			"  treeinv queries -l rust | grep -A3 impl",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "lang",
				Aliases:  []string{"l"},
				Usage:    "language name",
				Required: true,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			p, err := lang.Default().Lookup(cmd.String("lang"))
			if err != nil {
				return err
			}

			names := p.QueryNames()
			if want := cmd.Args().First(); want != "" {
				if _, ok := p.Queries().Get(want); !ok {
					return fmt.Errorf("%s has no query %q", p.Name(), want)
				}
				names = []string{want}
			}

			w := cmd.Root().Writer
			for i, name := range names {
				text, _ := p.Queries().Get(name)
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, ";; %s\n%s", name, text)
			}
			return nil
		},
	}
}

package main

import (
	"context"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/treeinv/config"
	"github.com/arjunmahishi/treeinv/treeinv"
	"github.com/arjunmahishi/treeinv/types"
)

// scanFlags are shared by every command that walks a directory.
func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "path",
			Value: ".",
			Usage: "root path to scan",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "single file to process",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "only process paths matching this glob (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "skip paths matching this glob (repeatable)",
		},
		&cli.BoolFlag{
			Name:  "no-gitignore",
			Usage: "do not honour the root .gitignore",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Value:   runtime.NumCPU(),
			Usage:   "number of parallel workers",
		},
		&cli.Int64Flag{
			Name:  "max-bytes",
			Value: 2 * 1024 * 1024,
			Usage: "skip files larger than this",
		},
	}
}

// scanSettings merges scan flags over the config file. Flags win when set.
type scanSettings struct {
	include   []string
	exclude   []string
	gitignore bool
	jobs      int
	maxBytes  int64
}

func resolveScan(cmd *cli.Command, cfg *config.Config) scanSettings {
	s := scanSettings{
		include:   cfg.Include,
		exclude:   cfg.Exclude,
		gitignore: cfg.Gitignore,
		jobs:      cfg.Jobs,
		maxBytes:  cfg.MaxBytes,
	}
	if cmd.IsSet("include") {
		s.include = cmd.StringSlice("include")
	}
	if cmd.IsSet("exclude") {
		s.exclude = cmd.StringSlice("exclude")
	}
	if cmd.Bool("no-gitignore") {
		s.gitignore = false
	}
	if cmd.IsSet("jobs") || s.jobs == 0 {
		s.jobs = cmd.Int("jobs")
	}
	if cmd.IsSet("max-bytes") || s.maxBytes == 0 {
		s.maxBytes = cmd.Int64("max-bytes")
	}
	return s
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "list the code elements of every matching file",
		Description: "Examples:\n" +
			"  treeinv extract --path ./src\n" +
			"  treeinv extract --lang go --type function --type class\n" +
			"  treeinv extract -f schema.sql --format yaml",
		Flags: append(scanFlags(),
			&cli.StringSliceFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "restrict to these languages (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "keep only these element types, e.g. function, class, table (repeatable)",
			},
		),
		Action: runExtract,
	}
}

func runExtract(ctx context.Context, cmd *cli.Command) error {
	s := settingsFrom(ctx)
	scan := resolveScan(cmd, s.cfg)

	languages := s.cfg.Languages
	if cmd.IsSet("lang") {
		languages = cmd.StringSlice("lang")
	}

	var elementTypes []types.ElementType
	for _, t := range cmd.StringSlice("type") {
		elementTypes = append(elementTypes, types.ElementType(t))
	}

	results, err := treeinv.Analyze(ctx, treeinv.AnalyzeOptions{
		Path:      cmd.String("path"),
		File:      cmd.String("file"),
		Languages: languages,
		Types:     elementTypes,
		Include:   scan.include,
		Exclude:   scan.exclude,
		Gitignore: scan.gitignore,
		Jobs:      scan.jobs,
		MaxBytes:  scan.maxBytes,
	})
	if err != nil {
		return err
	}
	return s.out.Write(results)
}

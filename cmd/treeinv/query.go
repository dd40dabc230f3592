package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/treeinv/lang"
	"github.com/arjunmahishi/treeinv/treeinv"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "run a tree-sitter query",
		Description: "Run an ad-hoc query (--query / --query-file) or one of the language's\n" +
			"named queries (--name). See `treeinv queries` for the named ones.\n\n" +
			"Examples:\n" +
			"  treeinv query -l go -q '(function_declaration name: (identifier) @name)'\n" +
			"  treeinv query -l python -n classes --path ./app\n" +
			"  treeinv query -f main.go -n functions",
		Flags: append(scanFlags(),
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "tree-sitter query string",
			},
			&cli.StringFlag{
				Name:  "query-file",
				Usage: "path to a tree-sitter query file",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "named query of the language",
			},
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "language of the query (detected from --file when omitted)",
			},
			&cli.IntFlag{
				Name:  "cache-size",
				Usage: "compiled queries to keep (default from config)",
			},
		),
		Action: runQuery,
	}
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	s := settingsFrom(ctx)
	scan := resolveScan(cmd, s.cfg)

	name := cmd.String("name")
	queryText := ""
	if name == "" {
		var err error
		if queryText, err = resolveQuery(cmd.String("query"), cmd.String("query-file")); err != nil {
			return err
		}
	} else if cmd.IsSet("query") || cmd.IsSet("query-file") {
		return errors.New("use --name or --query/--query-file, not both")
	}

	language, err := resolveLanguage(cmd.String("lang"), cmd.String("file"))
	if err != nil {
		return err
	}

	cacheSize := s.cfg.CacheSize
	if cmd.IsSet("cache-size") {
		cacheSize = cmd.Int("cache-size")
	}

	results, err := treeinv.Query(ctx, treeinv.QueryOptions{
		Query:     queryText,
		Name:      name,
		Language:  language,
		Path:      cmd.String("path"),
		File:      cmd.String("file"),
		Include:   scan.include,
		Exclude:   scan.exclude,
		Gitignore: scan.gitignore,
		Jobs:      scan.jobs,
		MaxBytes:  scan.maxBytes,
		CacheSize: cacheSize,
	})
	if err != nil {
		return err
	}
	return s.out.Write(results)
}

func resolveQuery(text, filePath string) (string, error) {
	if text != "" && filePath != "" {
		return "", errors.New("use --query or --query-file, not both")
	}
	if text != "" {
		return text, nil
	}
	if filePath == "" {
		return "", errors.New("--query, --query-file or --name is required")
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func resolveLanguage(name, file string) (string, error) {
	if name != "" {
		return name, nil
	}
	if file == "" {
		return "", errors.New("--lang is required unless --file is given")
	}
	p, ok := lang.Default().ForPath(file)
	if !ok {
		return "", errors.New("cannot detect the language of " + file + "; pass --lang")
	}
	return p.Name(), nil
}

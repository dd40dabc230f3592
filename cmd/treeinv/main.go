package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/treeinv/config"
	"github.com/arjunmahishi/treeinv/output"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		output.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "treeinv",
		Usage: "inventory and query code structure with tree-sitter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Value: ".",
				Usage: "directory holding " + config.FileName + ".yaml",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: json or yaml (default from config, else json)",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "single-line JSON output",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug details to stderr",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			extractCommand(),
			queryCommand(),
			languagesCommand(),
			queriesCommand(),
		},
	}
}

type settingsKey struct{}

// settings is what every subcommand needs from the root: the merged config and
// the output writer.
type settings struct {
	cfg *config.Config
	out *output.Writer
}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config-dir"))
	if err != nil {
		return ctx, err
	}

	level := slog.LevelDebug
	if !cmd.Bool("verbose") {
		if level, err = config.ParseLevel(cfg.LogLevel); err != nil {
			return ctx, err
		}
	}
	logOut := cmd.Root().ErrWriter
	if logOut == nil {
		logOut = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	formatName := cfg.Format
	if cmd.IsSet("format") {
		formatName = cmd.String("format")
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return ctx, err
	}

	s := &settings{
		cfg: cfg,
		out: output.New(output.Config{
			Format:  format,
			Compact: cmd.Bool("compact"),
			Output:  cmd.Root().Writer,
		}),
	}
	return context.WithValue(ctx, settingsKey{}, s), nil
}

func settingsFrom(ctx context.Context) *settings {
	if s, ok := ctx.Value(settingsKey{}).(*settings); ok {
		return s
	}
	return &settings{cfg: config.Default(), out: output.New(output.Config{})}
}

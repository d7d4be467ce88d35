package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trailingbot/internal/config"
	"trailingbot/internal/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "trailingbot",
		Usage: "Per-symbol trailing trade bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file or the directory holding config.yaml",
				Value:   "configs",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override runtime.log.level",
			},
		},
		Action: runAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Runtime.Log.Level = level
	}

	log := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	log.Info("Bot starting.")
	defer log.Info("Bot exited.")

	return run(ctx, cfg, log)
}

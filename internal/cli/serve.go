package cli

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gokatarajesh/quiz-bank/internal/app"
	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/logging"
)

func runServe(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		addr := flags.String("addr", "", "Listen address (default HTTP_ADDR)")
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(ctx)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		if *addr != "" {
			cfg.HTTPAddr = *addr
		}
		logger := logging.NewWithWriter(st.Err, cfg.Name, cfg.Env, cfg.LogLevel)

		instance, err := app.New(ctx, cfg, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to build app")
			return ExitError
		}
		if err := instance.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("runtime error")
			return ExitError
		}
		return ExitOK
	}
}

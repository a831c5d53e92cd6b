package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/app"
	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/internal/config"
	"github.com/gokatarajesh/quiz-bank/internal/logging"
)

// session is an opened bank plus what it took to open it.
type session struct {
	cfg     *config.App
	logger  zerolog.Logger
	bank    *bank.Repository
	backend *app.Backend
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("close store")
	}
}

// openSession loads configuration from the environment and opens the configured store.
// CLI logs go to stderr at warn level unless LOG_LEVEL says otherwise.
func openSession(ctx context.Context, st Streams) (*session, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	level := "warn"
	if _, set := os.LookupEnv("LOG_LEVEL"); set {
		level = cfg.LogLevel
	}
	logger := logging.NewWithWriter(st.Err, cfg.Name, cfg.Env, level)

	backend, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	repo := bank.NewRepository(backend.Store, bank.Options{Key: cfg.Store.Key}, logger)
	return &session{cfg: cfg, logger: logger, bank: repo, backend: backend}, nil
}

// parseFlags parses args, printing usage on -h. done reports that the command should
// return code immediately.
func parseFlags(cmd *Command, flags *flag.FlagSet, args []string, st Streams) (code int, done bool) {
	flags.SetOutput(st.Err)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandUsage(cmd, st.Out)
			return ExitOK, true
		}
		fmt.Fprintf(st.Err, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, st.Err)
		return ExitUsage, true
	}
	return ExitOK, false
}

func usageError(cmd *Command, st Streams, format string, args ...any) int {
	fmt.Fprintf(st.Err, format+"\n", args...)
	printCommandUsage(cmd, st.Err)
	return ExitUsage
}

func unexpectedArgs(cmd *Command, st Streams, args []string) int {
	return usageError(cmd, st, "unexpected arguments: %s", strings.Join(args, " "))
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ", ")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

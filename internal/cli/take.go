package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/gokatarajesh/quiz-bank/internal/quiz"
	"github.com/gokatarajesh/quiz-bank/internal/ui/take"
)

// runTestUI is replaced in tests; the real one needs a terminal.
var runTestUI = take.Run

func runTake(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		limit := flags.Int("n", 0, "Maximum number of questions (default QUIZ_MAX_QUESTIONS, 60)")
		noColor := flags.Bool("no-color", false, "Disable colors")
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
		}
		if *limit < 0 {
			return usageError(cmd, st, "-n must not be negative")
		}

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		qs, err := sess.bank.Load(ctx)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}

		count := sess.cfg.Quiz.MaxQuestions
		if *limit > 0 {
			count = *limit
		}
		test, err := quiz.NewGenerator(quiz.GeneratorOptions{MaxQuestions: count}).Generate(qs)
		if errors.Is(err, quiz.ErrEmptyBank) {
			fmt.Fprintln(st.Err, "No questions found in the bank. Please add questions first.")
			return ExitError
		}
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}

		res, submitted, err := runTestUI(test, st.In, st.Out, take.Options{NoColor: *noColor})
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		if !submitted {
			fmt.Fprintln(st.Out, "Test abandoned.")
			return ExitOK
		}
		sess.logger.Info().Str("test_id", res.TestID.String()).Int("score", res.Score).Int("total", res.Total).Msg("test graded")
		fmt.Fprintf(st.Out, "Your score: %s\n", res.Summary())
		return ExitOK
	}
}

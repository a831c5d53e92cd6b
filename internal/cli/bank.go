package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/internal/question"
)

func runAdd(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() != 1 {
			return usageError(cmd, st, "add needs exactly one file, or - for stdin")
		}

		text, err := readSource(flags.Arg(0), st.In)
		if err != nil {
			fmt.Fprintf(st.Err, "Error reading input: %v\n", err)
			return ExitError
		}
		if strings.TrimSpace(text) == "" {
			fmt.Fprintln(st.Err, "Please paste some text first.")
			return ExitError
		}

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		res, err := sess.bank.AddText(ctx, text)
		if errors.Is(err, bank.ErrNoQuestionsFound) {
			fmt.Fprintln(st.Err, "Could not find any valid questions to extract. Please check the format.")
			return ExitError
		}
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(st.Out, "%d new questions were added. %d duplicates were ignored.\n", res.Added, res.Duplicates)
		return ExitOK
	}
}

func runImport(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() != 1 {
			return usageError(cmd, st, "import needs exactly one file")
		}

		f, err := os.Open(flags.Arg(0))
		if err != nil {
			fmt.Fprintf(st.Err, "Error reading file: %v\n", err)
			return ExitError
		}
		defer f.Close()

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		res, err := sess.bank.Import(ctx, f)
		if errors.Is(err, bank.ErrMalformedImport) {
			fmt.Fprintln(st.Err, "Invalid file format. Please import a valid JSON file exported from this app.")
			return ExitError
		}
		if err != nil {
			fmt.Fprintf(st.Err, "Error reading file: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(st.Out, "%d new questions were imported. %d duplicates were ignored.\n", res.Added, res.Duplicates)
		return ExitOK
	}
}

func runExport(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		output := flags.String("o", "", "Write to this file instead of stdout (e.g. "+bank.ExportFilename+")")
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
		}

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		data, err := sess.bank.Export(ctx)
		if errors.Is(err, bank.ErrEmptyBank) {
			fmt.Fprintln(st.Err, "There are no questions to export.")
			return ExitError
		}
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}

		if *output == "" {
			fmt.Fprintln(st.Out, string(data))
			return ExitOK
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			fmt.Fprintf(st.Err, "Error writing %s: %v\n", *output, err)
			return ExitError
		}
		fmt.Fprintf(st.Out, "Exported to %s\n", *output)
		return ExitOK
	}
}

func runList(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
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
		if len(qs) == 0 {
			fmt.Fprintln(st.Out, "No questions saved yet.")
			return ExitOK
		}
		for i, q := range qs {
			writeQuestion(st.Out, i+1, q)
		}
		return ExitOK
	}
}

func writeQuestion(w io.Writer, number int, q question.Question) {
	fmt.Fprintf(w, "%d. %s\n", number, q.Question)
	for _, opt := range q.Options {
		mark := " "
		if opt == q.CorrectAnswer {
			mark = "*"
		}
		fmt.Fprintf(w, "   %s %s\n", mark, opt)
	}
}

func runCount(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
		}

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		n, err := sess.bank.Count(ctx)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(st.Out, n)
		return ExitOK
	}
}

func runEdit(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		if len(args) == 0 {
			return usageError(cmd, st, "edit needs a question number")
		}
		// The number comes first so flags can follow it.
		numArg, rest := args[0], args[1:]
		if isHelpArg(numArg) {
			printCommandUsage(cmd, st.Out)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		text := flags.String("question", "", "New question text")
		correct := flags.String("correct", "", "New correct answer; must be one of the options")
		var options stringList
		flags.Var(&options, "option", "Option text; repeat for each option, replaces all options")
		if code, done := parseFlags(cmd, flags, rest, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
		}
		index, ok := parseNumber(cmd, st, numArg)
		if !ok {
			return ExitUsage
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
		if index >= len(qs) {
			fmt.Fprintf(st.Err, "Question %d does not exist; the bank has %d questions.\n", index+1, len(qs))
			return ExitError
		}

		q := qs[index].Clone()
		if *text != "" {
			q.Question = *text
		}
		if len(options) > 0 {
			q.Options = []string(options)
		}
		if *correct != "" {
			q.CorrectAnswer = *correct
		}

		if err := sess.bank.UpdateAt(ctx, index, q); err != nil {
			var verr *question.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(st.Err, "Invalid question: %s\n", verr.Reason)
				return ExitError
			}
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(st.Out, "Question %d updated successfully.\n", index+1)
		return ExitOK
	}
}

func runDelete(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() != 1 {
			return usageError(cmd, st, "delete needs exactly one question number")
		}
		index, ok := parseNumber(cmd, st, flags.Arg(0))
		if !ok {
			return ExitUsage
		}

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		if err := sess.bank.DeleteAt(ctx, index); err != nil {
			if errors.Is(err, bank.ErrIndexOutOfRange) {
				fmt.Fprintf(st.Err, "Question %d does not exist.\n", index+1)
				return ExitError
			}
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(st.Out, "Question %d deleted.\n", index+1)
		return ExitOK
	}
}

func runClear(cmd *Command) func(args []string, st Streams) int {
	return func(args []string, st Streams) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		yes := flags.Bool("yes", false, "Confirm deleting ALL saved questions; this cannot be undone")
		if code, done := parseFlags(cmd, flags, args, st); done {
			return code
		}
		if flags.NArg() > 0 {
			return unexpectedArgs(cmd, st, flags.Args())
		}
		if !*yes {
			fmt.Fprintln(st.Err, "Refusing to delete ALL saved questions without -yes. This action cannot be undone.")
			return ExitUsage
		}

		ctx := context.Background()
		sess, err := openSession(ctx, st)
		if err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		defer sess.Close()

		if err := sess.bank.Clear(ctx); err != nil {
			fmt.Fprintf(st.Err, "Error: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(st.Out, "All questions have been cleared.")
		return ExitOK
	}
}

// parseNumber turns a 1-based list number into a bank index.
func parseNumber(cmd *Command, st Streams, arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		usageError(cmd, st, "question number must be a positive integer, got %q", arg)
		return 0, false
	}
	return n - 1, true
}

func readSource(name string, stdin io.Reader) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}

package cli

import (
	"fmt"
	"io"
	"os"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Streams are the terminal handles a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, s Streams) int
}

func Run(args []string, s Streams) int {
	if len(args) == 0 {
		printUsage(s.Out)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(s.Out)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(s.Err, "Unknown command: %s\n\n", args[0])
		printUsage(s.Err)
		return ExitUsage
	}

	return cmd.Run(args[1:], s)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quizbank <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"quizbank <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, s Streams) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("add", "Extract questions from pasted text and add them to the bank", []string{
		"quizbank add <file>",
		"quizbank add -        (read text from stdin)",
	}, runAdd),
	command("import", "Merge a JSON file exported by quizbank", []string{
		"quizbank import <file>",
	}, runImport),
	command("export", "Write the bank as JSON", []string{
		"quizbank export [-o mos-questions.json]",
	}, runExport),
	command("list", "Show every stored question", []string{
		"quizbank list",
	}, runList),
	command("count", "Print the number of stored questions", []string{
		"quizbank count",
	}, runCount),
	command("edit", "Replace a question by its list number", []string{
		"quizbank edit <n> [-question text] [-option text]... [-correct text]",
	}, runEdit),
	command("delete", "Remove a question by its list number", []string{
		"quizbank delete <n>",
	}, runDelete),
	command("clear", "Delete the whole bank", []string{
		"quizbank clear -yes",
	}, runClear),
	command("take", "Take a randomized test in the terminal", []string{
		"quizbank take [-n 60] [-no-color]",
	}, runTake),
	command("serve", "Run the HTTP API", []string{
		"quizbank serve",
	}, runServe),
}

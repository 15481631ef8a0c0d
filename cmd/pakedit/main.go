// pakedit inspects pak containers and writes patch containers holding
// edited property tables.
//
// Usage:
//
//	pakedit [--verbose] list <pak>
//	pakedit [--verbose] extract <pak> <member> [-o file]
//	pakedit [--verbose] dump <pak> <asset>
//	pakedit [--verbose] set <pak> <asset> <field> <value> -o <patch.pak>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

// command is one pakedit subcommand.
type command struct {
	name  string
	usage string
	args  int
	run   func(ctx context.Context, env *env, args []string) error
	flags func(fs *pflag.FlagSet, e *env)
}

// env carries the output streams and parsed flags shared by subcommands.
type env struct {
	stdout io.Writer
	logger *slog.Logger
	output string
}

var commands = []command{
	{name: "list", usage: "list <pak>", args: 1, run: runList},
	{name: "extract", usage: "extract <pak> <member> [-o file]", args: 2, run: runExtract, flags: outputFlag},
	{name: "dump", usage: "dump <pak> <asset>", args: 2, run: runDump},
	{name: "set", usage: "set <pak> <asset> <field> <value> -o <patch.pak>", args: 4, run: runSet, flags: outputFlag},
}

func outputFlag(fs *pflag.FlagSet, e *env) {
	fs.StringVarP(&e.output, "output", "o", "", "output file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	e := &env{stdout: stdout}
	var verbose bool
	fs := pflag.NewFlagSet("pakedit "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	if cmd.flags != nil {
		cmd.flags(fs, e)
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: pakedit %s\n", cmd.usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != cmd.args {
		fs.Usage()
		return fmt.Errorf("%s takes %d arguments, got %d", cmd.name, cmd.args, fs.NArg())
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	e.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return cmd.run(ctx, e, fs.Args())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	for _, c := range commands {
		fmt.Fprintf(w, "  pakedit [--verbose] %s\n", c.usage)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/gofraser/evosuite-sub000/smtlib"
)

// ReplayCommand represents a command for replaying an instruction trace.
type ReplayCommand struct {
	Stdout io.Writer
}

// NewReplayCommand returns a new instance of ReplayCommand.
func NewReplayCommand() *ReplayCommand {
	return &ReplayCommand{Stdout: os.Stdout}
}

// Run executes the "replay" subcommand.
func (cmd *ReplayCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shadowvm-replay", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose")
	smt := fs.Bool("smt", false, "print path condition as SMT-LIB")
	dump := fs.Bool("dump", false, "dump final environment")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("trace required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many traces specified")
	}

	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	trace, err := ReadTrace(f)
	if err != nil {
		return err
	}

	r, err := NewReplayer(trace)
	if err != nil {
		return err
	}

	log.Printf("[begin] %s.%s%s", trace.Method.Owner, trace.Method.Name, trace.Method.Desc)
	for i, line := range trace.Instructions {
		if err := ctx.Err(); err != nil {
			return err
		} else if err := r.Exec(line); err != nil {
			return fmt.Errorf("instruction #%d: %w", i, err)
		}
	}
	log.Printf("[end] faults=%d", r.Faults)

	pc := r.Machine.PathCondition
	if *smt {
		if err := smtlib.Encode(cmd.Stdout, pc.Constraints()); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.Stdout, pc.String())
	}

	if *dump {
		fmt.Fprint(cmd.Stdout, r.Machine.Env.Dump())
		config := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		config.Fdump(cmd.Stdout, pc.Conditions())
	}
	return nil
}

func (cmd *ReplayCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: shadowvm replay [arguments] TRACE

Arguments:

	-v
	    Enable verbose logging.
	-smt
	    Print the path condition as an SMT-LIB script.
	-dump
	    Dump the final environment and branch conditions.
`[1:])
}

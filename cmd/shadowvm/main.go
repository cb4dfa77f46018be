package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "replay":
		return NewReplayCommand().Run(ctx, args)
	default:
		return fmt.Errorf(`shadowvm %s: unknown command`, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Shadowvm tracks symbolic values alongside a concrete bytecode execution.

Usage:

	shadowvm <command> [arguments]

The commands are:

	replay      replay an instruction trace and print its path condition
	help        this screen
`[1:])
}

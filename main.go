// Command cardlink routes connectors between cards and inspects recorded
// routing sessions.
package main

import (
	"context"
	"io"
	"os"
)

var Version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command line. The store is closed even when a command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := newApp(stdout, stderr)
	defer a.teardown()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

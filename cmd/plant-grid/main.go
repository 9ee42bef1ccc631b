package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	// Entry point: create a root context and run the farmware.
	ctx := context.Background()

	// Pass in the command line arguments, environment variables, and standard output
	// stream to the run function. This allows the run function to be tested in isolation
	// without relying on the command line or environment variables of the device.
	if err := run(ctx, os.Args, os.Getenv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

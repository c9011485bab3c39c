package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// main maps command failure onto the exit code. context.Canceled surfaces
// when the user interrupts a conversion; the run is already stopped
// cleanly, so only the exit code reports it.
func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

package main

import (
	"fmt"
	"os"

	"github.com/groundworklabs/groundwork/internal/cli"
	"github.com/groundworklabs/groundwork/internal/store"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// Drain whatever data stores are still open before exiting.
	if drainErr := store.Drain(); drainErr != nil && err == nil {
		err = drainErr
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

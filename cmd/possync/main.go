// Command possync is the offline order capture and sync core of the
// TapResto POS client.
package main

import (
	"fmt"
	"os"

	"github.com/tapresto/possync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

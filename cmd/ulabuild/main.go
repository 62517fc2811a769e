package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errBuildFailed marks a run whose report was already printed.
var errBuildFailed = errors.New("build failed")

var rootCmd = &cobra.Command{
	Use:           "ulabuild",
	Short:         "Batch compiler driver for ula sources",
	Long:          `Compiles a single source file or a whole directory tree in parallel, mirroring the tree into an output directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newBuildCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBuildFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

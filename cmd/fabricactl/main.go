package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fabricactl",
	Short: "Administer a fabrica instance",
	Long: `fabricactl administers fabrica model descriptors from the command line.

Model descriptors are JSON documents that declare a record shape, its
field types, and its role permissions. fabricactl validates them
offline and imports them into the configured descriptor store without
going through the HTTP API.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

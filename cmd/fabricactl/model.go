package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// modelCmd represents the model command
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage model descriptors",
	Long:  `Validate and import model descriptors.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'model' requires a subcommand (validate, import)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
}

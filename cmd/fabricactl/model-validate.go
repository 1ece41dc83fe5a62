package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/localnerve/fabrica/internal/schema"
)

// modelValidateCmd represents the model validate command
var modelValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate model descriptor files",
	Long: `Validate one or more model descriptor JSON files without touching
any store. Each file is parsed, validated, and normalized; the
canonical form is printed on success.

Example:
  fabricactl model validate data/seed/task.json
  fabricactl model validate models/*.json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := 0
		for _, filename := range args {
			model, err := readDescriptorFile(filename)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
				failed++
				continue
			}
			output, _ := json.MarshalIndent(model, "", "  ")
			fmt.Printf("%s: ok\n%s\n", filename, string(output))
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	modelCmd.AddCommand(modelValidateCmd)
}

func readDescriptorFile(filename string) (*schema.ModelDescriptor, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseDescriptor(raw)
}

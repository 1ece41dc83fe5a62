package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/localnerve/fabrica/data"
	"github.com/localnerve/fabrica/internal/config"
	"github.com/localnerve/fabrica/internal/database"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/store"
)

var importSeed bool

// modelImportCmd represents the model import command
var modelImportCmd = &cobra.Command{
	Use:   "import [<file>...]",
	Short: "Import model descriptor files into the descriptor store",
	Long: `Validate one or more model descriptor JSON files and write them to
the descriptor store named by the DESCRIPTOR_STORE environment
variable (database or file). Existing descriptors with the same name
are overwritten. With --seed the bundled example descriptors are
imported instead of files.

Example:
  fabricactl model import data/seed/task.json data/seed/article.json
  fabricactl model import --seed`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && !importSeed {
			fmt.Fprintln(os.Stderr, "error: name descriptor files or pass --seed")
			_ = cmd.Help()
			os.Exit(1)
		}
		if err := runImport(args, importSeed); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to import models: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	modelImportCmd.Flags().BoolVar(&importSeed, "seed", false, "import the bundled seed descriptors")
	modelCmd.AddCommand(modelImportCmd)
}

func runImport(filenames []string, seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var descriptors store.DescriptorStore
	if cfg.DescriptorStore == config.StoreFile {
		fileStore, err := store.NewFileStore(cfg.ModelsDir)
		if err != nil {
			return err
		}
		descriptors = fileStore
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		descriptors = store.NewGormStore(db)
	}

	ctx := context.Background()
	registry := schema.NewRegistry(descriptors)
	if _, _, err := registry.LoadAll(ctx); err != nil {
		return err
	}

	models, err := collectDescriptors(filenames, seed)
	if err != nil {
		return err
	}

	for _, model := range models {
		if err := registry.Save(ctx, model); err != nil {
			return fmt.Errorf("model '%s': %w", model.Name, err)
		}
		fmt.Printf("Imported model '%s'\n", model.Name)
	}
	return nil
}

func collectDescriptors(filenames []string, seed bool) ([]*schema.ModelDescriptor, error) {
	var out []*schema.ModelDescriptor

	if seed {
		entries, err := data.SeedModels.ReadDir("seed")
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			raw, err := data.SeedModels.ReadFile("seed/" + entry.Name())
			if err != nil {
				return nil, err
			}
			model, err := parseDescriptor(raw)
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", entry.Name(), err)
			}
			out = append(out, model)
		}
	}

	for _, filename := range filenames {
		model, err := readDescriptorFile(filename)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		out = append(out, model)
	}
	return out, nil
}

func parseDescriptor(raw []byte) (*schema.ModelDescriptor, error) {
	var model schema.ModelDescriptor
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.ValidateAndNormalize(&model); err != nil {
		return nil, err
	}
	return &model, nil
}

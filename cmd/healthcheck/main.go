// main.go
//
// A dynamic schema engine and generic record data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of fabrica.
// fabrica is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// fabrica is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with fabrica.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/localnerve/fabrica/internal/config"
	"github.com/localnerve/fabrica/internal/database"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/services"
	"github.com/localnerve/fabrica/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Load the model registry the same way the server does
	var descriptors store.DescriptorStore
	if cfg.DescriptorStore == config.StoreFile {
		fileStore, err := store.NewFileStore(cfg.ModelsDir)
		if err != nil {
			log.Fatalf("Failed to open models directory: %v", err)
		}
		descriptors = fileStore
	} else {
		descriptors = store.NewGormStore(db)
	}
	registry := schema.NewRegistry(descriptors)
	if _, _, err := registry.LoadAll(context.Background()); err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}

	// Perform health check
	result := services.HealthCheck(cfg, db, registry)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}

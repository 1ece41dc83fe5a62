// file_store.go
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

package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/localnerve/fabrica/internal/types"
)

// FileStore persists one <modelkey>.json document per model under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates Dir if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.Collaborator(fmt.Errorf("failed to create models directory: %w", err))
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, strings.ToLower(name)+".json")
}

func (s *FileStore) ListAll(_ context.Context) ([]RawDescriptor, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, types.Collaborator(err)
	}

	var out []RawDescriptor
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			return nil, types.Collaborator(err)
		}
		out = append(out, RawDescriptor{
			Name: strings.TrimSuffix(entry.Name(), ".json"),
			Data: data,
		})
	}
	return out, nil
}

func (s *FileStore) ReadOne(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, types.Collaborator(err)
	}
	return data, nil
}

func (s *FileStore) WriteOne(_ context.Context, name string, data []byte) error {
	// Write-then-rename so a concurrent ListAll never reads a torn file.
	tmp, err := os.CreateTemp(s.Dir, ".descriptor-*")
	if err != nil {
		return types.Collaborator(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.Collaborator(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.Collaborator(err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return types.Collaborator(err)
	}
	return nil
}

func (s *FileStore) DeleteOne(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return types.ModelNotFound(name)
	}
	if err != nil {
		return types.Collaborator(err)
	}
	return nil
}

// Watch reports descriptor directory changes through onChange until ctx is
// done. Events are debounced so an editor's write-then-rename sequence
// produces a single callback.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return types.Collaborator(fmt.Errorf("failed to create watcher: %w", err))
	}

	if err := watcher.Add(s.Dir); err != nil {
		watcher.Close()
		return types.Collaborator(fmt.Errorf("failed to watch %s: %w", s.Dir, err))
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(250*time.Millisecond, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Descriptor watcher error: %v", err)
			}
		}
	}()

	return nil
}

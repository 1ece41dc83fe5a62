// gorm_store.go
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

package records

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/localnerve/fabrica/internal/models"
	"github.com/localnerve/fabrica/internal/types"
	"gorm.io/gorm"
)

// GormStore persists records as JSON blobs in the dynamic_records table.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore returns a record Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func decodeRecord(row *models.DynamicRecord) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return nil, types.Collaborator(err)
	}
	// The row id is authoritative.
	rec["id"] = row.ID
	return rec, nil
}

func encodeRecord(rec Record) (models.JSON, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, types.Collaborator(err)
	}
	return models.JSON(data), nil
}

func (s *GormStore) Insert(ctx context.Context, modelKey string, rec Record) (Record, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	row := models.DynamicRecord{ID: id, ModelKey: modelKey, Data: data}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, types.Collaborator(err)
	}
	return rec, nil
}

func (s *GormStore) FindAll(ctx context.Context, modelKey string) ([]Record, error) {
	var rows []models.DynamicRecord
	err := s.DB.WithContext(ctx).
		Where("model_key = ?", modelKey).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, types.Collaborator(err)
	}

	out := make([]Record, 0, len(rows))
	for i := range rows {
		rec, err := decodeRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *GormStore) FindOne(ctx context.Context, modelKey, id string) (Record, error) {
	var row models.DynamicRecord
	err := s.DB.WithContext(ctx).
		Where("model_key = ? AND id = ?", modelKey, id).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, types.Collaborator(err)
	}
	return decodeRecord(&row)
}

// Merge applies a shallow merge inside a transaction so concurrent merges of
// the same record serialize at the row. Fields absent from partial are
// preserved; last write wins across whole fields.
func (s *GormStore) Merge(ctx context.Context, modelKey, id string, partial Record) (Record, error) {
	var merged Record

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.DynamicRecord
		err := tx.Where("model_key = ? AND id = ?", modelKey, id).First(&row).Error
		if err == gorm.ErrRecordNotFound {
			return types.RecordNotFound(modelKey, id)
		}
		if err != nil {
			return types.Collaborator(err)
		}

		current, err := decodeRecord(&row)
		if err != nil {
			return err
		}

		for k, v := range partial {
			if k == "id" {
				continue
			}
			current[k] = v
		}
		current["id"] = row.ID

		data, err := encodeRecord(current)
		if err != nil {
			return err
		}
		if err := tx.Model(&row).Update("data", data).Error; err != nil {
			return types.Collaborator(err)
		}

		merged = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *GormStore) Remove(ctx context.Context, modelKey, id string) error {
	result := s.DB.WithContext(ctx).
		Where("model_key = ? AND id = ?", modelKey, id).
		Delete(&models.DynamicRecord{})
	if result.Error != nil {
		return types.Collaborator(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.RecordNotFound(modelKey, id)
	}
	return nil
}

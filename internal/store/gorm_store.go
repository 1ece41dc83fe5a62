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

package store

import (
	"context"
	"strings"

	"github.com/localnerve/fabrica/internal/models"
	"github.com/localnerve/fabrica/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists descriptors in the model_descriptors table.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore returns a DescriptorStore backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) ListAll(ctx context.Context) ([]RawDescriptor, error) {
	var rows []models.ModelDescriptorRow
	if err := s.DB.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, types.Collaborator(err)
	}

	out := make([]RawDescriptor, 0, len(rows))
	for _, row := range rows {
		out = append(out, RawDescriptor{Name: row.ModelKey, Data: []byte(row.Descriptor)})
	}
	return out, nil
}

func (s *GormStore) ReadOne(ctx context.Context, name string) ([]byte, error) {
	var row models.ModelDescriptorRow
	err := s.DB.WithContext(ctx).Where("model_key = ?", strings.ToLower(name)).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, types.Collaborator(err)
	}
	return []byte(row.Descriptor), nil
}

func (s *GormStore) WriteOne(ctx context.Context, name string, data []byte) error {
	row := models.ModelDescriptorRow{
		ModelKey:   strings.ToLower(name),
		Descriptor: models.JSON(data),
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "model_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"descriptor", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return types.Collaborator(err)
	}
	return nil
}

func (s *GormStore) DeleteOne(ctx context.Context, name string) error {
	result := s.DB.WithContext(ctx).
		Where("model_key = ?", strings.ToLower(name)).
		Delete(&models.ModelDescriptorRow{})
	if result.Error != nil {
		return types.Collaborator(result.Error)
	}
	if result.RowsAffected == 0 {
		return types.ModelNotFound(name)
	}
	return nil
}

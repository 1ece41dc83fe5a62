// models.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/types"
	"github.com/localnerve/fabrica/internal/utils"
)

// ModelHandler serves the administrative model publishing routes.
type ModelHandler struct {
	Registry *schema.Registry
}

// ModelSummary is the list-view projection of a descriptor.
type ModelSummary struct {
	Name       string `json:"name"`
	TableName  string `json:"tableName"`
	FieldCount int    `json:"fieldCount"`
	OwnerField string `json:"ownerField,omitempty"`
	Timestamps bool   `json:"timestamps"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// ListModels handles GET /api/models
// @Summary List models
// @Description List summaries of every registered model
// @Tags Models
// @Produce json
// @Success 200 {object} utils.ListResponseStruct
// @Security BearerAuth
// @Router /models [get]
func (h *ModelHandler) ListModels(c *fiber.Ctx) error {
	all := h.Registry.GetAll()
	summaries := make([]ModelSummary, 0, len(all))
	for _, m := range all {
		summaries = append(summaries, ModelSummary{
			Name:       m.Name,
			TableName:  m.TableName,
			FieldCount: len(m.Fields),
			OwnerField: m.OwnerField,
			Timestamps: m.TimestampsEnabled(),
			CreatedAt:  m.CreatedAt,
			UpdatedAt:  m.UpdatedAt,
		})
	}
	return utils.ListResponse(c, summaries, len(summaries))
}

// GetModel handles GET /api/models/:name
// @Summary Get a model
// @Description Get the full canonical descriptor of a model
// @Tags Models
// @Produce json
// @Param name path string true "Model name"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /models/{name} [get]
func (h *ModelHandler) GetModel(c *fiber.Ctx) error {
	name := c.Params("name")
	model := h.Registry.Get(name)
	if model == nil {
		return types.ModelNotFound(name)
	}
	return utils.DataResponse(c, fiber.StatusOK, model)
}

// PublishModel handles POST /api/models
// @Summary Publish a model
// @Description Validate, normalize, persist and register a new model
// @Tags Models
// @Accept json
// @Produce json
// @Param model body schema.ModelDescriptor true "Model descriptor"
// @Success 201 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /models [post]
func (h *ModelHandler) PublishModel(c *fiber.Ctx) error {
	var model schema.ModelDescriptor
	if err := c.BodyParser(&model); err != nil {
		return types.InvalidSchema("Invalid JSON body: %v", err)
	}

	if h.Registry.Exists(model.Name) {
		return types.InvalidSchema("Model '%s' already exists", model.Name)
	}

	if err := h.Registry.Save(c.Context(), &model); err != nil {
		return err
	}

	return utils.DataResponse(c, fiber.StatusCreated, &model)
}

// UpdateModel handles PUT /api/models/:name
// @Summary Update a model
// @Description Re-validate and overwrite a registered model in place
// @Tags Models
// @Accept json
// @Produce json
// @Param name path string true "Model name"
// @Param model body schema.ModelDescriptor true "Model descriptor"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /models/{name} [put]
func (h *ModelHandler) UpdateModel(c *fiber.Ctx) error {
	name := c.Params("name")
	if !h.Registry.Exists(name) {
		return types.ModelNotFound(name)
	}

	var model schema.ModelDescriptor
	if err := c.BodyParser(&model); err != nil {
		return types.InvalidSchema("Invalid JSON body: %v", err)
	}

	// The path names the model being updated; the body cannot rename it.
	model.Name = name
	model.CreatedAt = ""

	if err := h.Registry.Save(c.Context(), &model); err != nil {
		return err
	}

	return utils.DataResponse(c, fiber.StatusOK, &model)
}

// DeleteModel handles DELETE /api/models/:name
// @Summary Delete a model
// @Description Remove the persisted descriptor and the registry entry.
// @Description Existing records of the model are not cascade-deleted.
// @Tags Models
// @Produce json
// @Param name path string true "Model name"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /models/{name} [delete]
func (h *ModelHandler) DeleteModel(c *fiber.Ctx) error {
	name := c.Params("name")
	if !h.Registry.Exists(name) {
		return types.ModelNotFound(name)
	}

	if err := h.Registry.Delete(c.Context(), name); err != nil {
		return err
	}

	return utils.MessageResponse(c, "Model '"+name+"' deleted successfully")
}

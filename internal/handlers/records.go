// records.go
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
	"github.com/localnerve/fabrica/internal/authz"
	"github.com/localnerve/fabrica/internal/middleware"
	"github.com/localnerve/fabrica/internal/records"
	"github.com/localnerve/fabrica/internal/schema"
	"github.com/localnerve/fabrica/internal/types"
	"github.com/localnerve/fabrica/internal/utils"
)

// RecordHandler serves the generic CRUD routes for arbitrary models.
type RecordHandler struct {
	Registry *schema.Registry
	Service  *records.Service
}

// CreateRecord handles POST /api/:modelName
// @Summary Create a record
// @Description Create a new record of the named model
// @Tags Records
// @Accept json
// @Produce json
// @Param modelName path string true "Model name"
// @Param record body map[string]interface{} true "Record payload"
// @Success 201 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{modelName} [post]
func (h *RecordHandler) CreateRecord(c *fiber.Ctx) error {
	modelName := c.Params("modelName")
	model := h.Registry.Get(modelName)
	if model == nil {
		return types.ModelNotFound(modelName)
	}

	ident := middleware.Identity(c)
	if ident == nil {
		return types.Unauthenticated("Authentication required")
	}

	if d := authz.Decide(ident.Role, ident.ID, model, schema.OpCreate, nil); !d.Allowed {
		return types.Forbidden("%s", d.Reason)
	}

	var payload records.Record
	if err := c.BodyParser(&payload); err != nil {
		return types.InvalidSchema("Invalid JSON body: %v", err)
	}

	rec, err := h.Service.Create(c.Context(), modelName, payload, ident.ID, model)
	if err != nil {
		return err
	}

	return utils.DataResponse(c, fiber.StatusCreated, rec)
}

// ListRecords handles GET /api/:modelName
// @Summary List records
// @Description List every record of the named model
// @Tags Records
// @Produce json
// @Param modelName path string true "Model name"
// @Success 200 {object} utils.ListResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{modelName} [get]
func (h *RecordHandler) ListRecords(c *fiber.Ctx) error {
	modelName := c.Params("modelName")
	model := h.Registry.Get(modelName)
	if model == nil {
		return types.ModelNotFound(modelName)
	}

	ident := middleware.Identity(c)
	if ident == nil {
		return types.Unauthenticated("Authentication required")
	}

	if d := authz.Decide(ident.Role, ident.ID, model, schema.OpRead, nil); !d.Allowed {
		return types.Forbidden("%s", d.Reason)
	}

	recs, err := h.Service.FindAll(c.Context(), modelName)
	if err != nil {
		return err
	}

	return utils.ListResponse(c, recs, len(recs))
}

// GetRecord handles GET /api/:modelName/:id
// @Summary Get a record
// @Description Get one record of the named model by id
// @Tags Records
// @Produce json
// @Param modelName path string true "Model name"
// @Param id path string true "Record id"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{modelName}/{id} [get]
func (h *RecordHandler) GetRecord(c *fiber.Ctx) error {
	modelName := c.Params("modelName")
	id := c.Params("id")
	model := h.Registry.Get(modelName)
	if model == nil {
		return types.ModelNotFound(modelName)
	}

	ident := middleware.Identity(c)
	if ident == nil {
		return types.Unauthenticated("Authentication required")
	}

	if d := authz.Decide(ident.Role, ident.ID, model, schema.OpRead, nil); !d.Allowed {
		return types.Forbidden("%s", d.Reason)
	}

	rec, err := h.Service.FindByID(c.Context(), modelName, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return types.RecordNotFound(modelName, id)
	}

	return utils.DataResponse(c, fiber.StatusOK, rec)
}

// UpdateRecord handles PUT /api/:modelName/:id
// @Summary Update a record
// @Description Shallow-merge the payload into the stored record
// @Tags Records
// @Accept json
// @Produce json
// @Param modelName path string true "Model name"
// @Param id path string true "Record id"
// @Param record body map[string]interface{} true "Partial record payload"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{modelName}/{id} [put]
func (h *RecordHandler) UpdateRecord(c *fiber.Ctx) error {
	modelName := c.Params("modelName")
	id := c.Params("id")
	model := h.Registry.Get(modelName)
	if model == nil {
		return types.ModelNotFound(modelName)
	}

	ident := middleware.Identity(c)
	if ident == nil {
		return types.Unauthenticated("Authentication required")
	}

	target, err := h.ownedTarget(c, model, modelName, id, ident.Role)
	if err != nil {
		return err
	}

	if d := authz.Decide(ident.Role, ident.ID, model, schema.OpUpdate, target); !d.Allowed {
		return types.Forbidden("%s", d.Reason)
	}

	var payload records.Record
	if err := c.BodyParser(&payload); err != nil {
		return types.InvalidSchema("Invalid JSON body: %v", err)
	}

	rec, err := h.Service.Update(c.Context(), modelName, id, payload, model)
	if err != nil {
		return err
	}

	return utils.DataResponse(c, fiber.StatusOK, rec)
}

// DeleteRecord handles DELETE /api/:modelName/:id
// @Summary Delete a record
// @Description Delete one record of the named model by id
// @Tags Records
// @Produce json
// @Param modelName path string true "Model name"
// @Param id path string true "Record id"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{modelName}/{id} [delete]
func (h *RecordHandler) DeleteRecord(c *fiber.Ctx) error {
	modelName := c.Params("modelName")
	id := c.Params("id")
	model := h.Registry.Get(modelName)
	if model == nil {
		return types.ModelNotFound(modelName)
	}

	ident := middleware.Identity(c)
	if ident == nil {
		return types.Unauthenticated("Authentication required")
	}

	target, err := h.ownedTarget(c, model, modelName, id, ident.Role)
	if err != nil {
		return err
	}

	if d := authz.Decide(ident.Role, ident.ID, model, schema.OpDelete, target); !d.Allowed {
		return types.Forbidden("%s", d.Reason)
	}

	if err := h.Service.Delete(c.Context(), modelName, id); err != nil {
		return err
	}

	return utils.MessageResponse(c, "Record deleted successfully")
}

// ownedTarget fetches the mutation target when the model is owner-gated so
// the decision engine can compare the owner field. Admins and models
// without an ownerField skip the fetch; an absent record is left for the
// service call to report as not found.
func (h *RecordHandler) ownedTarget(c *fiber.Ctx, model *schema.ModelDescriptor, modelName, id, role string) (map[string]interface{}, error) {
	if model.OwnerField == "" || role == schema.AdminRole || id == "" {
		return nil, nil
	}
	rec, err := h.Service.FindByID(c.Context(), modelName, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// auth.go
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
	"github.com/localnerve/fabrica/internal/auth"
	"github.com/localnerve/fabrica/internal/middleware"
	"github.com/localnerve/fabrica/internal/types"
	"github.com/localnerve/fabrica/internal/utils"
)

// AuthHandler serves registration, login, and profile for the JWT mode.
type AuthHandler struct {
	Accounts *auth.Service
	Tokens   *auth.JWTProvider
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
// @Summary Register a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body registerRequest true "Registration payload"
// @Success 201 {object} utils.DataResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return types.InvalidSchema("Invalid JSON body: %v", err)
	}

	user, err := h.Accounts.Register(c.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		return err
	}

	token, err := h.Tokens.IssueToken(auth.IdentityFor(user))
	if err != nil {
		return err
	}

	return utils.DataResponse(c, fiber.StatusCreated, fiber.Map{"user": user, "token": token})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login payload"
// @Success 200 {object} utils.DataResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return types.InvalidSchema("Invalid JSON body: %v", err)
	}

	user, err := h.Accounts.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.Tokens.IssueToken(auth.IdentityFor(user))
	if err != nil {
		return err
	}

	return utils.DataResponse(c, fiber.StatusOK, fiber.Map{"user": user, "token": token})
}

// Profile handles GET /api/auth/profile
// @Summary Get the authenticated caller's identity
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.DataResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	ident := middleware.Identity(c)
	if ident == nil {
		return types.Unauthenticated("Authentication required")
	}
	return utils.DataResponse(c, fiber.StatusOK, ident)
}

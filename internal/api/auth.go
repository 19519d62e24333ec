package api

import (
	"net/http"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register creates a credential and profile
func (h *Handler) register(c echo.Context) error {
	var payload service.RegisterInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to parse request", err.Error())
	}
	user, err := h.svc.Users.Register(c.Request().Context(), payload)
	if err != nil {
		return err
	}
	return created(c, "User registered successfully", user)
}

// login exchanges credentials for a bearer token
func (h *Handler) login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to parse request", err.Error())
	}
	result, err := h.svc.Users.Authenticate(c.Request().Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}
	return ok(c, "Login successful", result)
}

func (h *Handler) getUser(c echo.Context) error {
	user, err := h.svc.Users.Get(c.Request().Context(), webserver.PrincipalID(c))
	if err != nil {
		return err
	}
	return ok(c, "User details retrieved successfully", user)
}

func (h *Handler) updateUser(c echo.Context) error {
	fields, err := bindMap(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Users.Update(c.Request().Context(), webserver.PrincipalID(c), fields)
	if err != nil {
		return err
	}
	return ok(c, "User details updated successfully", user)
}

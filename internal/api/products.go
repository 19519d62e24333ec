package api

import (
	"net/http"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
)

type productPayload struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

func productID(c echo.Context) (int64, error) {
	return parseIDParam(c, apperr.CodeProductNotFound, "Product not found")
}

// listProducts returns the caller's catalog
func (h *Handler) listProducts(c echo.Context) error {
	products, err := h.svc.Catalog.List(c.Request().Context(), webserver.PrincipalID(c))
	if err != nil {
		return err
	}
	return listed(c, "Products retrieved successfully", "products", products, len(products))
}

func (h *Handler) getProduct(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Catalog.Get(c.Request().Context(), webserver.PrincipalID(c), id)
	if err != nil {
		return err
	}
	return ok(c, "Product retrieved successfully", p)
}

func (h *Handler) createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to parse product", err.Error())
	}
	p, err := h.svc.Catalog.Create(c.Request().Context(), webserver.PrincipalID(c), service.ProductInput{
		Name:  payload.Name,
		Price: payload.Price,
	})
	if err != nil {
		return err
	}
	return created(c, "Product created successfully", p)
}

func (h *Handler) updateProduct(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	fields, err := bindMap(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Catalog.Update(c.Request().Context(), webserver.PrincipalID(c), id, fields)
	if err != nil {
		return err
	}
	return ok(c, "Product updated successfully", p)
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Catalog.Delete(c.Request().Context(), webserver.PrincipalID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package api

import (
	"strings"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

func (h *Handler) topProducts(c echo.Context) error {
	top, err := h.svc.Analytics.TopProducts(c.Request().Context(), webserver.PrincipalID(c), service.DefaultTopProducts)
	if err != nil {
		return err
	}
	return ok(c, "Top products retrieved successfully", top)
}

// revenuePrediction extrapolates daily revenue
func (h *Handler) revenuePrediction(c echo.Context) error {
	days := 0
	if v := strings.TrimSpace(c.QueryParam("days")); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n < 1 {
			return apperr.Validation(apperr.CodeInvalidRequest, "days must be a positive integer")
		}
		days = n
	}
	pred, err := h.svc.Analytics.RevenuePrediction(c.Request().Context(), webserver.PrincipalID(c), days)
	if err != nil {
		return err
	}
	return ok(c, "Revenue prediction generated successfully", pred)
}

func (h *Handler) salesSummary(c echo.Context) error {
	sum, err := h.svc.Analytics.Summary(c.Request().Context(), webserver.PrincipalID(c))
	if err != nil {
		return err
	}
	return ok(c, "Sales summary retrieved successfully", sum)
}

package api

import (
	"strings"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

func (h *Handler) listAudit(c echo.Context) error {
	limit := defaultAuditLimit
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n < 1 {
			return apperr.Validation(apperr.CodeInvalidRequest, "limit must be a positive integer")
		}
		if n > maxAuditLimit {
			n = maxAuditLimit
		}
		limit = n
	}
	logs, err := h.audit.ListByUser(c.Request().Context(), webserver.PrincipalID(c), limit)
	if err != nil {
		return apperr.Upstream(apperr.CodeDatabase, "Failed to fetch audit log", err)
	}
	return listed(c, "Audit log retrieved successfully", "entries", logs, len(logs))
}

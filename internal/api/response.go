package api

import (
	"net/http"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/idgen"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
)

// ListMeta accompanies list responses
type ListMeta struct {
	Total int `json:"total"`
}

func ok(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, webserver.Response{Status: "success", Message: message, Data: data})
}

func created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, webserver.Response{Status: "success", Message: message, Data: data})
}

// listed wraps items as {<key>: items, meta: {total}}
func listed(c echo.Context, message, key string, items interface{}, total int) error {
	return ok(c, message, map[string]interface{}{
		key:    items,
		"meta": ListMeta{Total: total},
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return webserver.WriteError(c, status, code, message, detail)
}

// bindMap decodes a JSON object body without touching path or query params
func bindMap(c echo.Context) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if err := (&echo.DefaultBinder{}).BindBody(c, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// parseIDParam reads :id. Ids that cannot exist are reported as not found.
func parseIDParam(c echo.Context, code, message string) (int64, error) {
	id, valid := idgen.Parse(c.Param("id"))
	if !valid {
		return 0, apperr.NotFound(code, message)
	}
	return id, nil
}

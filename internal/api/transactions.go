package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// flexID accepts a product id sent either as a JSON string or a JSON number
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return errors.Wrap(err, "product_id")
		}
		*f = flexID(unquoted)
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return errors.Errorf("product_id: unexpected value %s", s)
		}
		*f = flexID(s)
	}
	return nil
}

type itemPayload struct {
	ProductID flexID  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type transactionPayload struct {
	Items []itemPayload `json:"items"`
}

func (p transactionPayload) inputs() []service.ItemInput {
	items := make([]service.ItemInput, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, service.ItemInput{ProductID: string(it.ProductID), Quantity: it.Quantity})
	}
	return items
}

func transactionID(c echo.Context) (int64, error) {
	return parseIDParam(c, apperr.CodeTxNotFound, "Transaction not found")
}

// parseRange reads the optional from/to query parameters. A bare date in
// "to" covers the whole day.
func parseRange(c echo.Context) (repository.TransactionFilter, error) {
	var filter repository.TransactionFilter
	if v := strings.TrimSpace(c.QueryParam("from")); v != "" {
		t, err := dateparse.ParseIn(v, time.Local)
		if err != nil {
			return filter, apperr.Validation(apperr.CodeInvalidRequest, "Invalid from date")
		}
		filter.From = t
	}
	if v := strings.TrimSpace(c.QueryParam("to")); v != "" {
		t, err := dateparse.ParseIn(v, time.Local)
		if err != nil {
			return filter, apperr.Validation(apperr.CodeInvalidRequest, "Invalid to date")
		}
		if len(v) <= len("2006-01-02") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.To = t
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, apperr.Validation(apperr.CodeInvalidRequest, "from must not be after to")
	}
	return filter, nil
}

// listTransactions returns the caller's transactions, oldest first
func (h *Handler) listTransactions(c echo.Context) error {
	filter, err := parseRange(c)
	if err != nil {
		return err
	}
	txs, err := h.svc.Ledger.List(c.Request().Context(), webserver.PrincipalID(c), filter)
	if err != nil {
		return err
	}
	return listed(c, "Transactions retrieved successfully", "transactions", txs, len(txs))
}

func (h *Handler) getTransaction(c echo.Context) error {
	id, err := transactionID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Ledger.Get(c.Request().Context(), webserver.PrincipalID(c), id)
	if err != nil {
		return err
	}
	return ok(c, "Transaction retrieved successfully", t)
}

func (h *Handler) createTransaction(c echo.Context) error {
	var payload transactionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to parse transaction", err.Error())
	}
	t, err := h.svc.Ledger.Create(c.Request().Context(), webserver.PrincipalID(c), payload.inputs())
	if err != nil {
		return err
	}
	return created(c, "Transaction created successfully", t)
}

func (h *Handler) updateTransaction(c echo.Context) error {
	id, err := transactionID(c)
	if err != nil {
		return err
	}
	var payload transactionPayload
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to parse transaction", err.Error())
	}
	t, err := h.svc.Ledger.Update(c.Request().Context(), webserver.PrincipalID(c), id, payload.inputs())
	if err != nil {
		return err
	}
	return ok(c, "Transaction updated successfully", t)
}

func (h *Handler) deleteTransaction(c echo.Context) error {
	id, err := transactionID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Ledger.Delete(c.Request().Context(), webserver.PrincipalID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package api

import (
	"io"
	"net/http"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
)

// scanReceipt relays an uploaded receipt image to the OCR service
func (h *Handler) scanReceipt(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "No image uploaded", err.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to read image", err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, service.MaxReceiptSize+1))
	if err != nil {
		return fail(c, http.StatusBadRequest, apperr.CodeInvalidRequest, "Unable to read image", err.Error())
	}

	res, err := h.svc.Receipts.OCR(c.Request().Context(), webserver.PrincipalID(c), service.ReceiptUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Data:        data,
	})
	if err != nil {
		return err
	}
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}

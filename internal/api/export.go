package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/webserver"
	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportRow is one line item flattened with its transaction
type exportRow struct {
	TransactionID    string `csv:"transaction_id"`
	Timestamp        string `csv:"timestamp"`
	ProductID        string `csv:"product_id"`
	ProductName      string `csv:"product_name"`
	Quantity         int    `csv:"quantity"`
	PricePerUnit     int64  `csv:"price_per_unit"`
	LineTotal        int64  `csv:"line_total"`
	TransactionTotal int64  `csv:"transaction_total"`
}

var exportHeader = []string{
	"transaction_id", "timestamp", "product_id", "product_name",
	"quantity", "price_per_unit", "line_total", "transaction_total",
}

func exportRows(txs []*domain.Transaction) []*exportRow {
	rows := make([]*exportRow, 0)
	for _, t := range txs {
		for _, item := range t.Items {
			rows = append(rows, &exportRow{
				TransactionID:    strconv.FormatInt(t.ID, 10),
				Timestamp:        t.Timestamp.Format(time.RFC3339),
				ProductID:        strconv.FormatInt(item.ProductID, 10),
				ProductName:      item.ProductName,
				Quantity:         item.Quantity,
				PricePerUnit:     item.PricePerUnit,
				LineTotal:        item.TotalPrice,
				TransactionTotal: t.TotalPrice,
			})
		}
	}
	return rows
}

// exportTransactions streams the caller's line items as CSV or XLSX
func (h *Handler) exportTransactions(c echo.Context) error {
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return apperr.Validation(apperr.CodeInvalidRequest, "format must be csv or xlsx")
	}
	filter, err := parseRange(c)
	if err != nil {
		return err
	}
	txs, err := h.svc.Ledger.List(c.Request().Context(), webserver.PrincipalID(c), filter)
	if err != nil {
		return err
	}
	rows := exportRows(txs)
	filename := fmt.Sprintf("transactions-%s.%s", time.Now().Format("20060102"), format)

	res := c.Response()
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	if format == "csv" {
		res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		res.WriteHeader(http.StatusOK)
		return gocsv.Marshal(rows, res)
	}

	book := writeWorkbook(rows)
	res.Header().Set(echo.HeaderContentType, xlsxMIME)
	res.WriteHeader(http.StatusOK)
	return book.Write(res)
}

func cellName(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}

func writeWorkbook(rows []*exportRow) *excelize.File {
	const sheet = "Transactions"
	book := excelize.NewFile()
	book.SetSheetName("Sheet1", sheet)
	for i, title := range exportHeader {
		book.SetCellValue(sheet, cellName(i, 1), title)
	}
	for r, row := range rows {
		values := []interface{}{
			row.TransactionID, row.Timestamp, row.ProductID, row.ProductName,
			row.Quantity, row.PricePerUnit, row.LineTotal, row.TransactionTotal,
		}
		for i, v := range values {
			book.SetCellValue(sheet, cellName(i, r+2), v)
		}
	}
	return book
}

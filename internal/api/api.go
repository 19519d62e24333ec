// Package api wires the HTTP handlers of the point-of-sale API onto the web server.
package api

import (
	"net/http"

	"github.com/kasirpos/kasir/internal/repository"
	"github.com/kasirpos/kasir/internal/service"
	"github.com/kasirpos/kasir/internal/webserver"
)

type Handler struct {
	svc   *service.Services
	audit repository.AuditRepository
}

// Register mounts every route under /api/v1
func Register(s *webserver.Server, svc *service.Services, audit repository.AuditRepository) *Handler {
	h := &Handler{svc: svc, audit: audit}
	h.registerAuthRoutes(s)
	h.registerProductRoutes(s)
	h.registerTransactionRoutes(s)
	h.registerDashboardRoutes(s)
	h.registerAuditRoutes(s)
	return h
}

func (h *Handler) registerAuthRoutes(s *webserver.Server) {
	s.Public(http.MethodPost, "/auth/register", h.register)
	s.Public(http.MethodPost, "/auth/login", h.login)
	s.ApiGET("/auth/user", h.getUser)
	s.ApiPUT("/auth/user", h.updateUser)
}

func (h *Handler) registerProductRoutes(s *webserver.Server) {
	s.ApiGET("/products", h.listProducts)
	s.ApiGET("/products/:id", h.getProduct)
	s.ApiPOST("/products", h.createProduct)
	s.ApiPUT("/products/:id", h.updateProduct)
	s.ApiDELETE("/products/:id", h.deleteProduct)
}

func (h *Handler) registerTransactionRoutes(s *webserver.Server) {
	s.ApiGET("/transactions", h.listTransactions)
	s.ApiGET("/transactions/export", h.exportTransactions)
	s.ApiUpload("/transactions/ocr", h.scanReceipt)
	s.ApiGET("/transactions/:id", h.getTransaction)
	s.ApiPOST("/transactions", h.createTransaction)
	s.ApiPUT("/transactions/:id", h.updateTransaction)
	s.ApiDELETE("/transactions/:id", h.deleteTransaction)
}

func (h *Handler) registerDashboardRoutes(s *webserver.Server) {
	s.ApiGET("/transactions/dashboard/top-5-products", h.topProducts)
	s.ApiGET("/transactions/dashboard/revenue-prediction", h.revenuePrediction)
	s.ApiGET("/transactions/dashboard/summary", h.salesSummary)
}

func (h *Handler) registerAuditRoutes(s *webserver.Server) {
	s.ApiGET("/audit", h.listAudit)
}

// Package service holds the business rules of the point-of-sale backend.
// Handlers call into it with the verified owner id; everything below is
// scoped by that id.
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/idgen"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/kasirpos/kasir/internal/inference"
	"github.com/kasirpos/kasir/internal/repository"
)

// TopicAudit is the bus topic carrying domain.AuditEvent values
const TopicAudit = "kasir:audit"

// Publisher is satisfied by EventBus.Bus
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Embedder produces product name embeddings
type Embedder interface {
	EmbeddingsEnabled() bool
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OCRClient forwards receipt images
type OCRClient interface {
	OCR(ctx context.Context, filename, contentType string, image []byte) (*inference.OCRResult, error)
}

type Deps struct {
	Store    repository.Store
	IDs      idgen.Generator
	Identity identity.Provider
	Embedder Embedder
	OCR      OCRClient
	Bus      Publisher
}

type Services struct {
	Users     *UserService
	Catalog   *CatalogService
	Ledger    *LedgerService
	Analytics *AnalyticsService
	Receipts  *ReceiptService
}

func New(d Deps) *Services {
	v := validator.New()
	audit := auditor{bus: d.Bus}
	return &Services{
		Users: &UserService{
			users:    d.Store.Users(),
			idp:      d.Identity,
			validate: v,
			now:      time.Now,
		},
		Catalog: &CatalogService{
			products: d.Store.Products(),
			ids:      d.IDs,
			embedder: d.Embedder,
			audit:    audit,
			now:      time.Now,
		},
		Ledger: &LedgerService{
			products:     d.Store.Products(),
			transactions: d.Store.Transactions(),
			ids:          d.IDs,
			audit:        audit,
			now:          time.Now,
			fanout:       8,
		},
		Analytics: &AnalyticsService{
			transactions: d.Store.Transactions(),
			loc:          time.Local,
		},
		Receipts: &ReceiptService{
			users: d.Store.Users(),
			ocr:   d.OCR,
		},
	}
}

type auditor struct {
	bus Publisher
}

func (a auditor) record(owner, action, target, targetID, detail string) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(TopicAudit, domain.AuditEvent{
		UserID:   owner,
		Action:   action,
		Target:   target,
		TargetID: targetID,
		Detail:   detail,
	})
}

func storeError(err error, message string) error {
	return apperr.Upstream(apperr.CodeDatabase, message, err)
}

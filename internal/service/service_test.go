package service

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/kasirpos/kasir/internal/inference"
	"github.com/kasirpos/kasir/internal/repository/boltrepo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterIDs struct{ n int64 }

func (c *counterIDs) NextID() int64 { return atomic.AddInt64(&c.n, 1) + 1000 }

type recordingBus struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (b *recordingBus) Publish(topic string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic != TopicAudit {
		return
	}
	for _, a := range args {
		if ev, ok := a.(domain.AuditEvent); ok {
			b.events = append(b.events, ev)
		}
	}
}

type fakeEmbedder struct {
	enabled bool
	err     error
}

func (f fakeEmbedder) EmbeddingsEnabled() bool { return f.enabled }

func (f fakeEmbedder) Embed(context.Context, string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{0.5, 0.25}, nil
}

type fakeOCR struct {
	result *inference.OCRResult
	err    error
	calls  int
	ctype  string
}

func (f *fakeOCR) OCR(_ context.Context, _ string, contentType string, _ []byte) (*inference.OCRResult, error) {
	f.calls++
	f.ctype = contentType
	return f.result, f.err
}

type fixture struct {
	svc   *Services
	store *boltrepo.Store
	bus   *recordingBus
	ocr   *fakeOCR
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "kasir.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	idp, err := identity.NewLocal(store.Credentials(), config.AuthConfig{JwtSecret: "test", TokenTTL: 60})
	require.NoError(t, err)

	f := &fixture{
		store: store,
		bus:   &recordingBus{},
		ocr:   &fakeOCR{result: &inference.OCRResult{StatusCode: 200, Status: "success", Message: "ok"}},
	}
	f.svc = New(Deps{
		Store:    store,
		IDs:      &counterIDs{},
		Identity: idp,
		Embedder: fakeEmbedder{},
		OCR:      f.ocr,
		Bus:      f.bus,
	})
	f.svc.Analytics.loc = time.UTC
	return f
}

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	e, ok := apperr.From(err)
	require.True(t, ok, "not an app error: %v", err)
	assert.Equal(t, code, e.Code)
}

func (f *fixture) product(t *testing.T, owner, name string, price float64) *domain.Product {
	t.Helper()
	p, err := f.svc.Catalog.Create(context.Background(), owner, ProductInput{Name: strPtr(name), Price: floatPtr(price)})
	require.NoError(t, err)
	return p
}

// Package inference talks to the external OCR and embeddings service.
package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/kasirpos/kasir/config"
	"github.com/pkg/errors"
)

// OCRResult is the service reply, relayed to the caller unchanged.
type OCRResult struct {
	StatusCode int             `json:"-"`
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type embeddingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type Client struct {
	ocrURL        string
	embeddingsURL string
	timeout       time.Duration
	client        *http.Client
}

func NewClient(cfg config.InferenceConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		ocrURL:  base + cfg.OCRPath,
		timeout: timeout,
		client:  &http.Client{},
	}
	if cfg.EmbeddingsPath != "" {
		c.embeddingsURL = base + cfg.EmbeddingsPath
	}
	return c
}

// OCR forwards image as multipart field "image". A reply with a non-2xx
// status is not an error, it is returned for relaying.
func (c *Client) OCR(ctx context.Context, filename, contentType string, image []byte) (*OCRResult, error) {
	var result OCRResult
	var code int
	err := gout.New(c.client).
		POST(c.ocrURL).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetForm(gout.H{
			"image": gout.FormType{
				FileName:    filename,
				ContentType: contentType,
				File:        gout.FormMem(image),
			},
		}).
		BindJSON(&result).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "ocr request")
	}
	result.StatusCode = code
	return &result, nil
}

// EmbeddingsEnabled reports whether an embeddings endpoint is configured.
func (c *Client) EmbeddingsEnabled() bool {
	return c.embeddingsURL != ""
}

// Embed returns the embedding vector of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if !c.EmbeddingsEnabled() {
		return nil, errors.New("embeddings endpoint not configured")
	}
	var resp embeddingResponse
	var code int
	err := gout.New(c.client).
		POST(c.embeddingsURL).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(gout.H{"text": text}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "embeddings request")
	}
	if code != http.StatusOK {
		return nil, errors.Errorf("embeddings request: status %d %s", code, resp.Message)
	}
	return resp.Data.Embedding, nil
}

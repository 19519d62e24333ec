package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/inference"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxReceiptSize is the upload limit for receipt images
const MaxReceiptSize = 5 << 20

var receiptTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

type ReceiptUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type ReceiptService struct {
	users repository.UserRepository
	ocr   OCRClient
}

func allowedReceiptType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	for _, t := range receiptTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// OCR validates the upload and forwards it to the OCR service. The service
// reply is returned as is, whatever its status.
func (s *ReceiptService) OCR(ctx context.Context, owner string, up ReceiptUpload) (*inference.OCRResult, error) {
	_, err := s.users.GetByID(ctx, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, storeError(err, "Failed to fetch user")
	}

	if !allowedReceiptType(up.ContentType) {
		return nil, apperr.Validation(apperr.CodeInvalidRequest,
			"Invalid file type. Only JPEG, JPG, PNG and WEBP images are allowed.")
	}
	if up.Size > MaxReceiptSize || int64(len(up.Data)) > MaxReceiptSize {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "File size exceeds the 5MB limit.")
	}
	detected := mimetype.Detect(up.Data)
	sniffed := false
	for _, t := range receiptTypes {
		if detected.Is(t) {
			sniffed = true
			break
		}
	}
	if !sniffed {
		return nil, apperr.Validation(apperr.CodeInvalidRequest,
			fmt.Sprintf("File content is %s, not an allowed image.", detected.String()))
	}

	res, err := s.ocr.OCR(ctx, up.Filename, detected.String(), up.Data)
	if err != nil {
		zap.L().Error("ocr service failed", zap.String("namespace", "receipts"), zap.Error(err))
		return nil, apperr.Upstream(apperr.CodeOCRService, "Failed to process image", err)
	}
	return res, nil
}

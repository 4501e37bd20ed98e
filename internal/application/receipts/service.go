package receipts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared"
	"github.com/tesoreria/backend/internal/infrastructure/rendering"
)

// Service handles receipt lifecycle operations: capture, reprint lookup,
// cancellation and document generation.
type Service struct {
	repo        receipt.Repository
	cache       receipt.SessionReceiptStore
	docRenderer *rendering.DocumentRenderer
	pdfRenderer rendering.PDFRenderer
	logger      *zap.Logger
}

// NewService creates a new receipt Service
func NewService(
	repo receipt.Repository,
	cache receipt.SessionReceiptStore,
	docRenderer *rendering.DocumentRenderer,
	pdfRenderer rendering.PDFRenderer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		cache:       cache,
		docRenderer: docRenderer,
		pdfRenderer: pdfRenderer,
		logger:      logger,
	}
}

// CreateFromPayment normalizes a captured payment into a printable receipt,
// persists it and primes the session cache for reprint.
func (s *Service) CreateFromPayment(ctx context.Context, sessionID, branchID string, req CreatePaymentRequest) (*ReceiptResponse, error) {
	if strings.TrimSpace(req.Folio) == "" {
		return nil, shared.NewValidationError("Folio is required")
	}
	if strings.TrimSpace(req.PaymentType) == "" {
		return nil, shared.NewValidationError("Payment type is required")
	}

	paidAt, err := time.Parse(time.RFC3339, req.PaidAt)
	if err != nil {
		return nil, shared.NewValidationError("paid_at must be RFC 3339")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, shared.NewValidationError("amount must be a decimal number")
	}

	printable := receipt.FromPaymentEntry(receipt.RawPaymentEntry{
		Folio:       req.Folio,
		PaidAt:      paidAt,
		Concept:     req.Concept,
		Amount:      amount,
		Currency:    req.Currency,
		StudentName: req.StudentName,
		StudentID:   req.StudentID,
		ProgramName: req.ProgramName,
		QRPayload:   req.QRPayload,
	})

	if err := s.repo.Save(ctx, branchID, printable, req.PaymentType); err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}

	// Cache write failure never fails the capture; the receipt is durable
	// already and a later reprint just falls through to the repository.
	if err := s.cache.Put(ctx, sessionID, printable); err != nil {
		s.logger.Warn("failed to cache receipt",
			zap.String("folio", printable.Folio),
			zap.Error(err))
	}

	s.logger.Info("receipt issued",
		zap.String("folio", printable.Folio),
		zap.String("branch_id", branchID),
		zap.String("payment_type", req.PaymentType))

	return toReceiptResponse(printable), nil
}

// GetPrintable returns the printable receipt for a folio, trying the
// session cache before the repository. Repository hits are re-cached.
func (s *Service) GetPrintable(ctx context.Context, sessionID, branchID, folio string) (*ReceiptResponse, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, shared.NewValidationError("Folio is required")
	}

	if cached, ok := s.cache.Get(ctx, sessionID, folio); ok {
		return toReceiptResponse(cached), nil
	}

	printable, err := s.repo.FindByFolio(ctx, branchID, folio)
	if err != nil {
		if errors.Is(err, receipt.ErrFolioNotFound) {
			return nil, receipt.ErrFolioNotFound
		}
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	if err := s.cache.Put(ctx, sessionID, printable); err != nil {
		s.logger.Warn("failed to re-cache receipt",
			zap.String("folio", folio),
			zap.Error(err))
	}

	return toReceiptResponse(printable), nil
}

// Cancel voids a receipt and refreshes the cached copy so a subsequent
// reprint shows the cancelled state.
func (s *Service) Cancel(ctx context.Context, sessionID, branchID, folio string, req CancelReceiptRequest) (*ReceiptResponse, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, shared.NewValidationError("Folio is required")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, shared.NewValidationError("Cancellation reason is required")
	}

	if err := s.repo.Cancel(ctx, branchID, folio, reason); err != nil {
		if errors.Is(err, receipt.ErrFolioNotFound) {
			return nil, receipt.ErrFolioNotFound
		}
		return nil, fmt.Errorf("failed to cancel receipt: %w", err)
	}

	printable, err := s.repo.FindByFolio(ctx, branchID, folio)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cancelled receipt: %w", err)
	}

	if err := s.cache.Put(ctx, sessionID, printable); err != nil {
		s.logger.Warn("failed to refresh cached receipt after cancel",
			zap.String("folio", folio),
			zap.Error(err))
	}

	s.logger.Info("receipt cancelled",
		zap.String("folio", folio),
		zap.String("branch_id", branchID))

	return toReceiptResponse(printable), nil
}

// List returns historical receipts for a branch
func (s *Service) List(ctx context.Context, branchID string, req ListReceiptsRequest) ([]*ReceiptResponse, error) {
	filter := receipt.ListFilter{
		Query:    req.Query,
		BranchID: branchID,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	if req.DateFrom != "" {
		from, err := time.Parse(time.DateOnly, req.DateFrom)
		if err != nil {
			return nil, shared.NewValidationError("date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse(time.DateOnly, req.DateTo)
		if err != nil {
			return nil, shared.NewValidationError("date_to must be YYYY-MM-DD")
		}
		// inclusive through end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}

	receipts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return toReceiptResponses(receipts), nil
}

// Document renders the receipt as a downloadable PDF. Equal receipts render
// to equal bytes and the same filename.
func (s *Service) Document(ctx context.Context, sessionID, branchID, folio string) (*DocumentResponse, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, shared.NewValidationError("Folio is required")
	}

	var printable *receipt.PrintableReceipt
	if cached, ok := s.cache.Get(ctx, sessionID, folio); ok {
		printable = cached
	} else {
		found, err := s.repo.FindByFolio(ctx, branchID, folio)
		if err != nil {
			if errors.Is(err, receipt.ErrFolioNotFound) {
				return nil, receipt.ErrFolioNotFound
			}
			return nil, fmt.Errorf("failed to load receipt: %w", err)
		}
		printable = found
	}

	doc, err := s.docRenderer.RenderReceipt(printable)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt document: %w", err)
	}

	result, err := s.pdfRenderer.Render(ctx, &rendering.RenderRequest{
		HTML:      string(doc.HTML),
		PaperSize: rendering.PaperSizeLetter,
		Title:     doc.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return &DocumentResponse{
		Filename: doc.Filename,
		PDFData:  result.PDFData,
	}, nil
}

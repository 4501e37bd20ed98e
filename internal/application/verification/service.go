package verification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared"
)

// Service relays QR verification requests to the remote authority. Outcomes
// are never cached locally; a receipt can be cancelled at any moment and a
// stale answer is worse than a slow one.
type Service struct {
	authority receipt.Authority
	logger    *zap.Logger
}

// NewService creates a new verification Service
func NewService(authority receipt.Authority, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{authority: authority, logger: logger}
}

// Verify resolves a scanned QR payload against the authority and relays its
// classification verbatim.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	payload := strings.TrimSpace(req.Payload)
	if payload == "" {
		return nil, shared.NewValidationError("QR payload is required")
	}

	result, err := s.authority.Resolve(ctx, payload)
	if err != nil {
		s.logger.Warn("verification authority unreachable", zap.Error(err))
		return nil, fmt.Errorf("failed to resolve QR payload: %w", err)
	}

	s.logger.Info("qr payload verified",
		zap.String("status", result.Status.String()))

	return toVerifyResponse(result), nil
}

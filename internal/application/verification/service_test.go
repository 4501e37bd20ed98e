package verification

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared"
)

type fakeAuthority struct {
	result *receipt.VerificationResult
	err    error
	calls  int
}

func (f *fakeAuthority) Resolve(_ context.Context, _ string) (*receipt.VerificationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestService_Verify(t *testing.T) {
	t.Run("relays a valid outcome with receipt detail", func(t *testing.T) {
		authority := &fakeAuthority{
			result: &receipt.VerificationResult{
				Status:  receipt.VerificationValid,
				Message: "Recibo vigente",
				Receipt: receipt.FromPaymentEntry(receipt.RawPaymentEntry{
					Folio:       "F-2025-0001",
					PaidAt:      time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
					Concept:     "Colegiatura Marzo",
					Amount:      decimal.RequireFromString("1501.05"),
					StudentName: "Ana Torres",
				}),
			},
		}
		svc := NewService(authority, zap.NewNop())

		resp, err := svc.Verify(context.Background(), VerifyRequest{Payload: "qr-payload-123"})

		require.NoError(t, err)
		assert.Equal(t, "VALID", resp.Status)
		assert.Equal(t, "Recibo vigente", resp.Message)
		require.NotNil(t, resp.Receipt)
		assert.Equal(t, "F-2025-0001", resp.Receipt.Folio)
		assert.Equal(t, "1501.05", resp.Receipt.Amount)
		assert.Equal(t, "VIGENTE", resp.Receipt.StatusLabel)
	})

	t.Run("relays not found without receipt detail", func(t *testing.T) {
		authority := &fakeAuthority{
			result: &receipt.VerificationResult{
				Status:  receipt.VerificationNotFound,
				Message: "Folio desconocido",
			},
		}
		svc := NewService(authority, zap.NewNop())

		resp, err := svc.Verify(context.Background(), VerifyRequest{Payload: "qr-unknown"})

		require.NoError(t, err)
		assert.Equal(t, "NOT_FOUND", resp.Status)
		assert.Nil(t, resp.Receipt)
	})

	t.Run("relays tampered verbatim", func(t *testing.T) {
		authority := &fakeAuthority{
			result: &receipt.VerificationResult{
				Status:  receipt.VerificationTampered,
				Message: "Firma invalida",
			},
		}
		svc := NewService(authority, zap.NewNop())

		resp, err := svc.Verify(context.Background(), VerifyRequest{Payload: "qr-forged"})

		require.NoError(t, err)
		assert.Equal(t, "TAMPERED", resp.Status)
	})

	t.Run("rejects empty payload before any remote call", func(t *testing.T) {
		authority := &fakeAuthority{}
		svc := NewService(authority, zap.NewNop())

		_, err := svc.Verify(context.Background(), VerifyRequest{Payload: "   "})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		assert.Zero(t, authority.calls)
	})

	t.Run("propagates transport failures", func(t *testing.T) {
		authority := &fakeAuthority{err: shared.NewTransportError("authority unreachable")}
		svc := NewService(authority, zap.NewNop())

		_, err := svc.Verify(context.Background(), VerifyRequest{Payload: "qr-payload"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeTransport, domainErr.Code)
	})
}

package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared"
)

// Estado values the authority may answer with
const (
	estadoValido       = "VALIDO"
	estadoCancelado    = "CANCELADO"
	estadoNoEncontrado = "NO_ENCONTRADO"
	estadoAlterado     = "ALTERADO"
)

// Config holds the verification authority endpoint configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("verifier: base URL is required")
	}
	return nil
}

// HTTPAuthority implements receipt.Authority against the school's remote
// verification endpoint.
type HTTPAuthority struct {
	config     *Config
	httpClient *http.Client
}

// NewHTTPAuthority creates a new HTTP verification authority client
func NewHTTPAuthority(config *Config) (*HTTPAuthority, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAuthority{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// verifyRequest is the wire request to the authority
type verifyRequest struct {
	Payload string `json:"payload"`
}

// verifyResponse is the authority's wire response
type verifyResponse struct {
	Estado  string        `json:"estado"`
	Mensaje string        `json:"mensaje"`
	Recibo  *reciboRecord `json:"recibo,omitempty"`
}

// reciboRecord is the receipt snapshot the authority attaches to VALIDO and
// CANCELADO answers.
type reciboRecord struct {
	Folio         string          `json:"folio"`
	FechaPago     time.Time       `json:"fechaPago"`
	Concepto      string          `json:"concepto"`
	Monto         decimal.Decimal `json:"monto"`
	Moneda        string          `json:"moneda"`
	Cancelado     bool            `json:"cancelado"`
	MotivoCancel  string          `json:"motivoCancelacion"`
	AlumnoNombre  string          `json:"alumnoNombre"`
	Matricula     string          `json:"matricula"`
	CarreraNombre string          `json:"carreraNombre"`
	QRPayload     string          `json:"qrPayload"`
}

// Resolve asks the authority to classify the payload. Transport and
// decoding failures come back as TRANSPORT_ERROR domain errors so the
// caller can offer a retry. An unrecognized estado is a decoding failure,
// not a guess.
func (a *HTTPAuthority) Resolve(ctx context.Context, payload string) (*receipt.VerificationResult, error) {
	body, err := json.Marshal(verifyRequest{Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("verifier: failed to marshal request: %w", err)
	}

	url := strings.TrimRight(a.config.BaseURL, "/") + "/recibos/verificar"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("verifier: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("X-Api-Key", a.config.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, shared.NewTransportError(fmt.Sprintf("Verification authority unreachable: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.NewTransportError(fmt.Sprintf("Failed reading authority response: %v", err))
	}

	if resp.StatusCode >= 400 {
		return nil, shared.NewTransportError(fmt.Sprintf("Verification authority returned HTTP %d", resp.StatusCode))
	}

	var wire verifyResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, shared.NewTransportError("Verification authority returned an unreadable response")
	}

	return mapResponse(&wire)
}

// mapResponse maps the authority's estado 1:1 onto the verification outcome
// union. The snapshot rides along only for VALIDO and CANCELADO.
func mapResponse(wire *verifyResponse) (*receipt.VerificationResult, error) {
	var snapshot *receipt.PrintableReceipt
	if wire.Recibo != nil {
		snapshot = receipt.FromRaw(receipt.RawReceipt{
			Folio:        wire.Recibo.Folio,
			PaymentDate:  wire.Recibo.FechaPago,
			Concept:      wire.Recibo.Concepto,
			Amount:       wire.Recibo.Monto,
			Currency:     wire.Recibo.Moneda,
			Cancelled:    wire.Recibo.Cancelado,
			CancelReason: wire.Recibo.MotivoCancel,
			StudentName:  wire.Recibo.AlumnoNombre,
			StudentID:    wire.Recibo.Matricula,
			ProgramName:  wire.Recibo.CarreraNombre,
			QRPayload:    wire.Recibo.QRPayload,
		})
	}

	switch wire.Estado {
	case estadoValido:
		return &receipt.VerificationResult{
			Status:  receipt.VerificationValid,
			Message: wire.Mensaje,
			Receipt: snapshot,
		}, nil
	case estadoCancelado:
		return &receipt.VerificationResult{
			Status:  receipt.VerificationCancelled,
			Message: wire.Mensaje,
			Receipt: snapshot,
		}, nil
	case estadoNoEncontrado:
		return &receipt.VerificationResult{
			Status:  receipt.VerificationNotFound,
			Message: wire.Mensaje,
		}, nil
	case estadoAlterado:
		return &receipt.VerificationResult{
			Status:  receipt.VerificationTampered,
			Message: wire.Mensaje,
		}, nil
	default:
		return nil, shared.NewTransportError(fmt.Sprintf("Verification authority returned unknown estado %q", wire.Estado))
	}
}

// Ensure HTTPAuthority implements Authority
var _ receipt.Authority = (*HTTPAuthority)(nil)

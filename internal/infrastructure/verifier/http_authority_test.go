package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared"
)

func newTestAuthority(t *testing.T, handler http.HandlerFunc) (*HTTPAuthority, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	authority, err := NewHTTPAuthority(&Config{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return authority, server
}

func TestNewHTTPAuthority_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPAuthority(&Config{})
	assert.Error(t, err)
}

func TestHTTPAuthority_Resolve_Valido(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/recibos/verificar", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qr-token", req["payload"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"estado": "VALIDO",
			"mensaje": "Recibo vigente",
			"recibo": {
				"folio": "F-77",
				"fechaPago": "2025-03-14T00:00:00Z",
				"concepto": "Colegiatura",
				"monto": "1500.50",
				"moneda": "MXN",
				"alumnoNombre": "Ana López",
				"matricula": "A01234",
				"carreraNombre": "Primaria"
			}
		}`))
	})

	result, err := authority.Resolve(context.Background(), "qr-token")
	require.NoError(t, err)

	assert.Equal(t, receipt.VerificationValid, result.Status)
	assert.Equal(t, "Recibo vigente", result.Message)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, "F-77", result.Receipt.Folio)
	assert.Equal(t, receipt.StatusValid, result.Receipt.Status)
}

func TestHTTPAuthority_Resolve_Cancelado(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"estado": "CANCELADO",
			"mensaje": "Recibo cancelado",
			"recibo": {
				"folio": "F-78",
				"fechaPago": "2025-03-10T00:00:00Z",
				"monto": "200",
				"cancelado": true,
				"motivoCancelacion": "Pago duplicado"
			}
		}`))
	})

	result, err := authority.Resolve(context.Background(), "qr-token")
	require.NoError(t, err)

	assert.Equal(t, receipt.VerificationCancelled, result.Status)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, receipt.StatusCancelled, result.Receipt.Status)
	assert.Equal(t, "Pago duplicado", result.Receipt.CancelReason)
}

func TestHTTPAuthority_Resolve_NoEncontradoHasNoSnapshot(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"estado": "NO_ENCONTRADO", "mensaje": "Sin coincidencias"}`))
	})

	result, err := authority.Resolve(context.Background(), "qr-token")
	require.NoError(t, err)

	assert.Equal(t, receipt.VerificationNotFound, result.Status)
	assert.Nil(t, result.Receipt)
}

func TestHTTPAuthority_Resolve_Alterado(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"estado": "ALTERADO", "mensaje": "El contenido no coincide"}`))
	})

	result, err := authority.Resolve(context.Background(), "qr-token")
	require.NoError(t, err)

	assert.Equal(t, receipt.VerificationTampered, result.Status)
	assert.Nil(t, result.Receipt)
	assert.Equal(t, "El contenido no coincide", result.Message)
}

func TestHTTPAuthority_Resolve_HTTPErrorIsTransport(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := authority.Resolve(context.Background(), "qr-token")
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeTransport, de.Code)
	assert.True(t, de.IsRetryable())
}

func TestHTTPAuthority_Resolve_MalformedBodyIsTransport(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	})

	_, err := authority.Resolve(context.Background(), "qr-token")
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeTransport, de.Code)
}

func TestHTTPAuthority_Resolve_UnknownEstadoIsTransport(t *testing.T) {
	authority, _ := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"estado": "QUIEN_SABE", "mensaje": "?"}`))
	})

	_, err := authority.Resolve(context.Background(), "qr-token")
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeTransport, de.Code)
}

func TestHTTPAuthority_Resolve_ConnectionRefusedIsTransport(t *testing.T) {
	authority, server := newTestAuthority(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := authority.Resolve(context.Background(), "qr-token")
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeTransport, de.Code)
}

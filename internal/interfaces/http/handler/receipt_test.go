package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	receiptapp "github.com/tesoreria/backend/internal/application/receipts"
	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/infrastructure/auth"
	"github.com/tesoreria/backend/internal/infrastructure/rendering"
	"github.com/tesoreria/backend/internal/interfaces/http/dto"
	"github.com/tesoreria/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Test Doubles
// =============================================================================

type fakeReceiptRepo struct {
	saved map[string]*receipt.PrintableReceipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{saved: make(map[string]*receipt.PrintableReceipt)}
}

func repoKey(branchID, folio string) string { return branchID + "/" + folio }

func (f *fakeReceiptRepo) Save(_ context.Context, branchID string, r *receipt.PrintableReceipt, _ string) error {
	f.saved[repoKey(branchID, r.Folio)] = r
	return nil
}

func (f *fakeReceiptRepo) FindByFolio(_ context.Context, branchID, folio string) (*receipt.PrintableReceipt, error) {
	if r, ok := f.saved[repoKey(branchID, folio)]; ok {
		return r, nil
	}
	return nil, receipt.ErrFolioNotFound
}

func (f *fakeReceiptRepo) List(_ context.Context, _ receipt.ListFilter) ([]*receipt.PrintableReceipt, error) {
	out := make([]*receipt.PrintableReceipt, 0, len(f.saved))
	for _, r := range f.saved {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReceiptRepo) Cancel(_ context.Context, branchID, folio, reason string) error {
	r, ok := f.saved[repoKey(branchID, folio)]
	if !ok {
		return receipt.ErrFolioNotFound
	}
	cancelled := *r
	cancelled.Status = receipt.StatusCancelled
	cancelled.CancelReason = reason
	f.saved[repoKey(branchID, folio)] = &cancelled
	return nil
}

type fakeSessionStore struct {
	entries map[string]*receipt.PrintableReceipt
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{entries: make(map[string]*receipt.PrintableReceipt)}
}

func (f *fakeSessionStore) Put(_ context.Context, sessionID string, r *receipt.PrintableReceipt) error {
	f.entries[repoKey(sessionID, r.Folio)] = r
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID, folio string) (*receipt.PrintableReceipt, bool) {
	r, ok := f.entries[repoKey(sessionID, folio)]
	return r, ok
}

func (f *fakeSessionStore) Clear(_ context.Context, _ string) error { return nil }
func (f *fakeSessionStore) Close() error                            { return nil }

type stubPDFRenderer struct{}

func (s *stubPDFRenderer) Render(_ context.Context, req *rendering.RenderRequest) (*rendering.RenderResult, error) {
	return &rendering.RenderResult{PDFData: []byte("%PDF-1.4 " + req.Title), PageCount: 1}, nil
}

func (s *stubPDFRenderer) Close() error { return nil }

// withTestClaims injects cashier claims the way the JWT middleware would
func withTestClaims(branchID, sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "jti-test"},
			UserID:           "user-1",
			Username:         "cajero1",
			Role:             "CAJERO",
			BranchID:         branchID,
			SessionID:        sessionID,
		}
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTBranchIDKey, claims.BranchID)
		c.Set(middleware.JWTUsernameKey, claims.Username)
		c.Set(middleware.JWTSessionIDKey, claims.EffectiveSessionID())
		c.Next()
	}
}

func newReceiptTestRouter(t *testing.T) (*gin.Engine, *fakeReceiptRepo, *fakeSessionStore) {
	t.Helper()
	docRenderer, err := rendering.NewDocumentRenderer()
	require.NoError(t, err)

	repo := newFakeReceiptRepo()
	cache := newFakeSessionStore()
	svc := receiptapp.NewService(repo, cache, docRenderer, &stubPDFRenderer{}, zap.NewNop())
	h := NewReceiptHandler(svc)

	router := gin.New()
	router.Use(withTestClaims("norte", "sess-1"))
	rg := router.Group("/api/v1")
	receipts := rg.Group("/receipts")
	{
		receipts.POST("", h.Create)
		receipts.GET("", h.List)
		receipts.GET("/:folio", h.Get)
		receipts.POST("/:folio/cancel", h.Cancel)
		receipts.GET("/:folio/document", h.Document)
	}
	return router, repo, cache
}

func createReceiptBody() []byte {
	body, _ := json.Marshal(map[string]string{
		"folio":        "F-2025-0001",
		"paid_at":      "2025-03-10T09:30:00Z",
		"concept":      "Colegiatura Marzo",
		"amount":       "1501.05",
		"student_name": "Ana Torres",
		"payment_type": "EFECTIVO",
	})
	return body
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// Endpoints
// =============================================================================

func TestReceiptHandler_Create(t *testing.T) {
	t.Run("issues a receipt", func(t *testing.T) {
		router, repo, _ := newReceiptTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", bytes.NewReader(createReceiptBody()))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Contains(t, repo.saved, "norte/F-2025-0001")

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "F-2025-0001", data["folio"])
		assert.Equal(t, "VALID", data["status"])
	})

	t.Run("rejects a body missing required fields", func(t *testing.T) {
		router, _, _ := newReceiptTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", bytes.NewReader([]byte(`{"concept":"x"}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps validation failures to 400", func(t *testing.T) {
		router, _, _ := newReceiptTestRouter(t)

		body, _ := json.Marshal(map[string]string{
			"folio":        "F-2025-0002",
			"paid_at":      "not-a-date",
			"amount":       "100.00",
			"payment_type": "EFECTIVO",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})
}

func TestReceiptHandler_Get(t *testing.T) {
	t.Run("returns the receipt", func(t *testing.T) {
		router, repo, _ := newReceiptTestRouter(t)
		repo.saved["norte/F-2025-0005"] = receipt.FromPaymentEntry(receipt.RawPaymentEntry{
			Folio:  "F-2025-0005",
			PaidAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			Amount: decimal.NewFromInt(250),
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/F-2025-0005", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "F-2025-0005", data["folio"])
	})

	t.Run("unknown folio is 404", func(t *testing.T) {
		router, _, _ := newReceiptTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/NO-EXISTE", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})
}

func TestReceiptHandler_Cancel(t *testing.T) {
	router, repo, _ := newReceiptTestRouter(t)
	repo.saved["norte/F-2025-0006"] = receipt.FromPaymentEntry(receipt.RawPaymentEntry{
		Folio:  "F-2025-0006",
		PaidAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Amount: decimal.NewFromInt(250),
	})

	body, _ := json.Marshal(map[string]string{"reason": "Pago duplicado"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/F-2025-0006/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "CANCELLED", data["status"])
	assert.Equal(t, "Pago duplicado", data["cancel_reason"])
}

func TestReceiptHandler_Document(t *testing.T) {
	router, repo, _ := newReceiptTestRouter(t)
	repo.saved["norte/F-2025-0007"] = receipt.FromPaymentEntry(receipt.RawPaymentEntry{
		Folio:  "F-2025-0007",
		PaidAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Amount: decimal.NewFromInt(250),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/F-2025-0007/document", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `recibo_F-2025-0007.pdf`)
	assert.NotEmpty(t, w.Body.Bytes())
}

package handler

import (
	"github.com/gin-gonic/gin"

	verificationapp "github.com/tesoreria/backend/internal/application/verification"
)

// VerificationHandler handles QR verification API endpoints
type VerificationHandler struct {
	BaseHandler
	service *verificationapp.Service
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(service *verificationapp.Service) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// Verify resolves a scanned QR payload against the verification authority
func (h *VerificationHandler) Verify(c *gin.Context) {
	var req verificationapp.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	cashcutapp "github.com/tesoreria/backend/internal/application/cashcuts"
	"github.com/tesoreria/backend/internal/domain/cashcut"
	"github.com/tesoreria/backend/internal/interfaces/http/middleware"
)

// CashCutHandler handles cash-cut report API endpoints
type CashCutHandler struct {
	BaseHandler
	service *cashcutapp.Service
}

// NewCashCutHandler creates a new CashCutHandler
func NewCashCutHandler(service *cashcutapp.Service) *CashCutHandler {
	return &CashCutHandler{service: service}
}

// roleContext maps the request's JWT claims to the report scoping role.
// A request with no claims scopes as an unassigned cashier and is
// rejected downstream.
func roleContext(c *gin.Context) cashcut.RoleContext {
	if claims := middleware.GetJWTClaims(c); claims != nil {
		return claims.RoleContext()
	}
	return cashcut.RoleContext{Role: cashcut.RoleCashier}
}

// Generate builds a cash-cut report for the requested date range
func (h *CashCutHandler) Generate(c *gin.Context) {
	var req cashcutapp.GenerateReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.service.GenerateReport(c.Request.Context(), getSessionID(c), roleContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Document streams the cash-cut report as a PDF download
func (h *CashCutHandler) Document(c *gin.Context) {
	var req cashcutapp.GenerateReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	doc, err := h.service.Document(c.Request.Context(), getSessionID(c), roleContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.PDFData)
}

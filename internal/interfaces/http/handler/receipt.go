package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	receiptapp "github.com/tesoreria/backend/internal/application/receipts"
)

// ReceiptHandler handles receipt lifecycle API endpoints
type ReceiptHandler struct {
	BaseHandler
	service *receiptapp.Service
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(service *receiptapp.Service) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// Create captures a payment and issues its printable receipt
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req receiptapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CreateFromPayment(c.Request.Context(), getSessionID(c), getBranchID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns historical receipts for the operator's branch
func (h *ReceiptHandler) List(c *gin.Context) {
	var req receiptapp.ListReceiptsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.service.List(c.Request.Context(), getBranchID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Get returns the printable receipt for a folio, serving reprints from
// the session cache when possible
func (h *ReceiptHandler) Get(c *gin.Context) {
	folio := c.Param("folio")

	resp, err := h.service.GetPrintable(c.Request.Context(), getSessionID(c), getBranchID(c), folio)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel voids an issued receipt
func (h *ReceiptHandler) Cancel(c *gin.Context) {
	folio := c.Param("folio")

	var req receiptapp.CancelReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), getSessionID(c), getBranchID(c), folio, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Document streams the receipt as a PDF download
func (h *ReceiptHandler) Document(c *gin.Context) {
	folio := c.Param("folio")

	doc, err := h.service.Document(c.Request.Context(), getSessionID(c), getBranchID(c), folio)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.PDFData)
}

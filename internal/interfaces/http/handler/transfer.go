package handler

import (
	"strings"

	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TransferHandler serves the stock transfer endpoints
type TransferHandler struct {
	BaseHandler
	service *apptransfer.Service
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(service *apptransfer.Service) *TransferHandler {
	return &TransferHandler{service: service}
}

// TransferView is a transfer with its display status
type TransferView struct {
	*apptransfer.TransferResponse
	StatusLabel string `json:"status_label" example:"In Transit"`
}

// TransferListItemView is a list row with its display status
type TransferListItemView struct {
	apptransfer.TransferListItemResponse
	StatusLabel string `json:"status_label" example:"Pending"`
}

// statusLabel renders in_transit as "In Transit". A Caser is not safe for
// concurrent use, so one is built per call.
func statusLabel(s transfer.Status) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

func newTransferView(resp *apptransfer.TransferResponse) TransferView {
	return TransferView{TransferResponse: resp, StatusLabel: statusLabel(resp.Status)}
}

// Create godoc
// @ID           createStockTransfer
// @Summary      Create a stock transfer
// @Description  Create a sell/purchase transfer pair between two locations
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay guard key"
// @Param        request body apptransfer.TransferRequest true "Transfer"
// @Success      201 {object} dto.Response{data=TransferView}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}

	var req apptransfer.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.CreateTransfer(c.Request.Context(), biz, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, newTransferView(resp))
}

// List godoc
// @ID           listStockTransfers
// @Summary      List stock transfers
// @Tags         transfers
// @Produce      json
// @Param        status query string false "pending, in_transit or completed"
// @Param        location_id query string false "Origin or destination location" format(uuid)
// @Param        search query string false "Reference number search"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]TransferListItemView}
// @Security     BearerAuth
// @Router       /inventory/transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}

	var filter apptransfer.TransferListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if filter.LocationID, ok = h.queryUUID(c, "location_id"); !ok {
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	items, total, err := h.service.ListTransfers(c.Request.Context(), biz, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	views := make([]TransferListItemView, 0, len(items))
	for _, item := range items {
		views = append(views, TransferListItemView{TransferListItemResponse: item, StatusLabel: statusLabel(item.Status)})
	}
	h.SuccessWithMeta(c, views, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getStockTransfer
// @Summary      Get a stock transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Sell transfer ID" format(uuid)
// @Success      200 {object} dto.Response{data=TransferView}
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetTransfer(c.Request.Context(), biz, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, newTransferView(resp))
}

// Update godoc
// @ID           updateStockTransfer
// @Summary      Replace a stock transfer
// @Description  Replace header and lines of a transfer that is not completed
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Sell transfer ID" format(uuid)
// @Param        request body apptransfer.TransferRequest true "Transfer"
// @Success      200 {object} dto.Response{data=TransferView}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/transfers/{id} [put]
func (h *TransferHandler) Update(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req apptransfer.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.UpdateTransfer(c.Request.Context(), biz, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, newTransferView(resp))
}

// ChangeStatus godoc
// @ID           changeStockTransferStatus
// @Summary      Change the status of a stock transfer
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Sell transfer ID" format(uuid)
// @Param        request body apptransfer.ChangeStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=TransferView}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/status [patch]
func (h *TransferHandler) ChangeStatus(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req apptransfer.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), biz, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, newTransferView(resp))
}

// Delete godoc
// @ID           deleteStockTransfer
// @Summary      Delete a stock transfer
// @Description  Delete both sides of a transfer and reverse its stock effects
// @Tags         transfers
// @Param        id path string true "Sell transfer ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/transfers/{id} [delete]
func (h *TransferHandler) Delete(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTransfer(c.Request.Context(), biz, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// RequestShippingDocumentUpload godoc
// @ID           requestShippingDocumentUpload
// @Summary      Request an upload URL for a shipping document
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Sell transfer ID" format(uuid)
// @Param        request body apptransfer.ShippingDocumentRequest true "Document metadata"
// @Success      201 {object} dto.Response{data=apptransfer.ShippingDocumentResponse}
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/shipping-documents [post]
func (h *TransferHandler) RequestShippingDocumentUpload(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req apptransfer.ShippingDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.RequestShippingDocumentUpload(c.Request.Context(), biz, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListShippingDocuments godoc
// @ID           listShippingDocuments
// @Summary      List shipping documents of a transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Sell transfer ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]apptransfer.ShippingDocumentResponse}
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/shipping-documents [get]
func (h *TransferHandler) ListShippingDocuments(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	docs, err := h.service.ListShippingDocuments(c.Request.Context(), biz, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, docs)
}

package handler

import (
	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/gin-gonic/gin"
)

// StockHandler serves stock receipts and on-hand queries
type StockHandler struct {
	BaseHandler
	service *apptransfer.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *apptransfer.Service) *StockHandler {
	return &StockHandler{service: service}
}

// ReceiveStock godoc
// @ID           receiveStock
// @Summary      Receive stock at a location
// @Description  Record a purchase with lot lines. Earlier oversold sell lines at the location are linked to the new supply.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body apptransfer.ReceiveStockRequest true "Receipt"
// @Success      201 {object} dto.Response{data=apptransfer.ReceiptResponse}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /inventory/receipts [post]
func (h *StockHandler) ReceiveStock(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}

	var req apptransfer.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ReceiveStock(c.Request.Context(), biz, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListStock godoc
// @ID           listStock
// @Summary      Query on-hand quantities
// @Tags         stock
// @Produce      json
// @Param        location_id query string false "Location" format(uuid)
// @Param        product_id query string false "Product" format(uuid)
// @Param        variation_id query string false "Variation" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50)
// @Success      200 {object} dto.Response{data=[]apptransfer.StockResponse}
// @Security     BearerAuth
// @Router       /inventory/stock [get]
func (h *StockHandler) ListStock(c *gin.Context) {
	biz, ok := h.businessContext(c)
	if !ok {
		return
	}

	var filter apptransfer.StockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if filter.LocationID, ok = h.queryUUID(c, "location_id"); !ok {
		return
	}
	if filter.ProductID, ok = h.queryUUID(c, "product_id"); !ok {
		return
	}
	if filter.VariationID, ok = h.queryUUID(c, "variation_id"); !ok {
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 50
	}

	rows, total, err := h.service.ListStock(c.Request.Context(), biz, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

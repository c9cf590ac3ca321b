// Package handler contains the gin handlers of the transfer API.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/infrastructure/logger"
	"github.com/erp/stocktransfer/internal/interfaces/http/dto"
	"github.com/erp/stocktransfer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindingError answers a failed ShouldBind call. Validator failures list
// each offending field; anything else is a malformed body.
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		h.BadRequest(c, "Malformed request: "+err.Error())
		return
	}

	details := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.FieldError{
			Field:   fe.Namespace(),
			Message: fieldMessage(fe),
		})
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", middleware.GetRequestID(c), details))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "max":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

// HandleDomainError converts domain errors to HTTP responses. Errors that
// carry no DomainError are logged and reported as internal errors.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, shared.CodeInternal, shared.ErrInternal.Message)
}

// businessContext returns the caller's BusinessContext or answers 401
func (h *BaseHandler) businessContext(c *gin.Context) (shared.BusinessContext, bool) {
	biz, ok := middleware.GetBusinessContext(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, shared.CodeUnauthorized, "Authentication required")
		return shared.BusinessContext{}, false
	}
	return biz, true
}

// pathID parses the :id path parameter or answers 400
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional uuid query parameter. It answers 400 and
// reports false when the value is present but malformed.
func (h *BaseHandler) queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}

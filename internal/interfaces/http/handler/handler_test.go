package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/erp/stocktransfer/internal/infrastructure/persistence"
	"github.com/erp/stocktransfer/internal/infrastructure/persistence/models"
	"github.com/erp/stocktransfer/internal/infrastructure/storage"
	infrastrategy "github.com/erp/stocktransfer/internal/infrastructure/strategy"
	"github.com/erp/stocktransfer/internal/interfaces/http/dto"
	"github.com/erp/stocktransfer/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	router    *gin.Engine
	biz       shared.BusinessContext
	product   uuid.UUID
	variation uuid.UUID
	a, b      uuid.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.TransactionModel{},
		&models.SellLineModel{},
		&models.PurchaseLineModel{},
		&models.SellPurchaseLinkModel{},
		&models.ActivityModel{},
		&models.ShippingDocumentModel{},
		&models.VariationLocationQuantityModel{},
		&models.StockMovementModel{},
	))

	registry, err := infrastrategy.NewRegistryWithDefaults()
	require.NoError(t, err)
	svc := apptransfer.NewService(persistence.NewGormTransferScope(db), persistence.NewGormTransferRepositories(db), registry, zap.NewNop())
	svc.SetObjectStorage(storage.NewStubObjectStorage("https://docs.test"), time.Minute)

	f := &apiFixture{
		biz: shared.BusinessContext{
			TenantID:         uuid.New(),
			UserID:           uuid.New(),
			AccountingMethod: "fifo",
			Permissions:      []string{"*"},
		},
		product:   uuid.New(),
		variation: uuid.New(),
		a:         uuid.New(),
		b:         uuid.New(),
	}

	transfers := NewTransferHandler(svc)
	stock := NewStockHandler(svc)

	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		if c.GetHeader("X-Anonymous") == "" {
			c.Set(middleware.BusinessContextKey, f.biz)
		}
		c.Next()
	})
	g := r.Group("/api/v1/inventory")
	g.POST("/transfers", transfers.Create)
	g.GET("/transfers", transfers.List)
	g.GET("/transfers/:id", transfers.Get)
	g.PUT("/transfers/:id", transfers.Update)
	g.PATCH("/transfers/:id/status", transfers.ChangeStatus)
	g.DELETE("/transfers/:id", transfers.Delete)
	g.POST("/transfers/:id/shipping-documents", transfers.RequestShippingDocumentUpload)
	g.GET("/transfers/:id/shipping-documents", transfers.ListShippingDocuments)
	g.POST("/receipts", stock.ReceiveStock)
	g.GET("/stock", stock.ListStock)
	f.router = r
	return f
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (f *apiFixture) receive(t *testing.T, location uuid.UUID, qty int) {
	t.Helper()
	code, env := f.do(t, http.MethodPost, "/api/v1/inventory/receipts", map[string]any{
		"location_id": location,
		"lines": []map[string]any{{
			"product_id":     f.product,
			"variation_id":   f.variation,
			"quantity":       qty,
			"purchase_price": 5,
		}},
	})
	require.Equal(t, http.StatusCreated, code, "receipt failed: %+v", env.Error)
}

func (f *apiFixture) transferBody(qty int, status string) map[string]any {
	return map[string]any{
		"origin_location_id":      f.a,
		"destination_location_id": f.b,
		"status":                  status,
		"lines": []map[string]any{{
			"product_id":   f.product,
			"variation_id": f.variation,
			"quantity":     qty,
			"unit_price":   5,
		}},
	}
}

type transferBody struct {
	ID          uuid.UUID       `json:"id"`
	RefNo       string          `json:"ref_no"`
	Status      transfer.Status `json:"status"`
	StatusLabel string          `json:"status_label"`
	FinalTotal  string          `json:"final_total"`
	Lines       []struct {
		Quantity string `json:"quantity"`
	} `json:"lines"`
}

func decodeTransfer(t *testing.T, env envelope) transferBody {
	t.Helper()
	var out transferBody
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestTransferAPI_Lifecycle(t *testing.T) {
	f := newAPIFixture(t)
	f.receive(t, f.a, 20)

	code, env := f.do(t, http.MethodPost, "/api/v1/inventory/transfers", f.transferBody(4, "pending"))
	require.Equal(t, http.StatusCreated, code, "%+v", env.Error)
	created := decodeTransfer(t, env)
	assert.Equal(t, transfer.StatusPending, created.Status)
	assert.Equal(t, "Pending", created.StatusLabel)
	assert.NotEmpty(t, created.RefNo)
	require.Len(t, created.Lines, 1)
	assert.Equal(t, "4", created.Lines[0].Quantity)

	base := "/api/v1/inventory/transfers/" + created.ID.String()

	code, env = f.do(t, http.MethodPatch, base+"/status", map[string]string{"status": "in_transit"})
	require.Equal(t, http.StatusOK, code, "%+v", env.Error)
	assert.Equal(t, "In Transit", decodeTransfer(t, env).StatusLabel)

	code, env = f.do(t, http.MethodPatch, base+"/status", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, code, "%+v", env.Error)
	assert.Equal(t, transfer.StatusCompleted, decodeTransfer(t, env).Status)

	code, env = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created.RefNo, decodeTransfer(t, env).RefNo)

	t.Run("completed transfers cannot be replaced", func(t *testing.T) {
		code, env := f.do(t, http.MethodPut, base, f.transferBody(2, "pending"))
		assert.Equal(t, http.StatusConflict, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, transfer.CodeTransferLocked, env.Error.Code)
	})

	t.Run("list filters by location", func(t *testing.T) {
		code, env := f.do(t, http.MethodGet, "/api/v1/inventory/transfers?location_id="+f.b.String(), nil)
		require.Equal(t, http.StatusOK, code)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)

		code, env = f.do(t, http.MethodGet, "/api/v1/inventory/transfers?location_id="+uuid.NewString(), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(0), env.Meta.Total)
	})

	t.Run("stock moved to destination", func(t *testing.T) {
		code, env := f.do(t, http.MethodGet, "/api/v1/inventory/stock?location_id="+f.b.String(), nil)
		require.Equal(t, http.StatusOK, code)
		var rows []apptransfer.StockResponse
		require.NoError(t, json.Unmarshal(env.Data, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "4", rows[0].Quantity.String())
	})

	t.Run("delete reverses and removes", func(t *testing.T) {
		code, _ := f.do(t, http.MethodDelete, base, nil)
		require.Equal(t, http.StatusNoContent, code)

		code, env := f.do(t, http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, shared.CodeNotFound, env.Error.Code)
	})
}

func TestTransferAPI_ShippingDocuments(t *testing.T) {
	f := newAPIFixture(t)
	f.receive(t, f.a, 5)
	_, env := f.do(t, http.MethodPost, "/api/v1/inventory/transfers", f.transferBody(1, "pending"))
	created := decodeTransfer(t, env)
	path := "/api/v1/inventory/transfers/" + created.ID.String() + "/shipping-documents"

	code, env := f.do(t, http.MethodPost, path, map[string]any{
		"file_name":    "waybill.pdf",
		"content_type": "application/pdf",
		"file_size":    2048,
	})
	require.Equal(t, http.StatusCreated, code, "%+v", env.Error)
	var doc apptransfer.ShippingDocumentResponse
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Contains(t, doc.UploadURL, "https://docs.test/upload/")

	code, env = f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	var docs []apptransfer.ShippingDocumentResponse
	require.NoError(t, json.Unmarshal(env.Data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "waybill.pdf", docs[0].FileName)
	assert.Contains(t, docs[0].DownloadURL, "https://docs.test/download/")
}

func TestTransferAPI_RequestErrors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		headers []string
		status  int
		code    string
	}{
		{
			name:   "missing lines",
			method: http.MethodPost,
			path:   "/api/v1/inventory/transfers",
			body:   map[string]any{"origin_location_id": f.a, "destination_location_id": f.b, "status": "pending"},
			status: http.StatusBadRequest,
			code:   shared.CodeValidation,
		},
		{
			name:   "malformed json",
			method: http.MethodPost,
			path:   "/api/v1/inventory/transfers",
			body:   "not an object",
			status: http.StatusBadRequest,
			code:   dto.ErrCodeBadRequest,
		},
		{
			name:   "bad id",
			method: http.MethodGet,
			path:   "/api/v1/inventory/transfers/nope",
			status: http.StatusBadRequest,
			code:   dto.ErrCodeBadRequest,
		},
		{
			name:   "unknown id",
			method: http.MethodGet,
			path:   "/api/v1/inventory/transfers/" + uuid.NewString(),
			status: http.StatusNotFound,
			code:   shared.CodeNotFound,
		},
		{
			name:   "bad status filter",
			method: http.MethodGet,
			path:   "/api/v1/inventory/transfers?status=shipped",
			status: http.StatusBadRequest,
			code:   shared.CodeValidation,
		},
		{
			name:   "bad location filter",
			method: http.MethodGet,
			path:   "/api/v1/inventory/stock?location_id=42",
			status: http.StatusBadRequest,
			code:   dto.ErrCodeBadRequest,
		},
		{
			name:   "same origin and destination",
			method: http.MethodPost,
			path:   "/api/v1/inventory/transfers",
			body: map[string]any{
				"origin_location_id": f.a, "destination_location_id": f.a, "status": "pending",
				"lines": []map[string]any{{"product_id": f.product, "variation_id": f.variation, "quantity": 1}},
			},
			status: http.StatusBadRequest,
			code:   shared.CodeValidation,
		},
		{
			name:    "anonymous",
			method:  http.MethodGet,
			path:    "/api/v1/inventory/transfers",
			headers: []string{"X-Anonymous", "1"},
			status:  http.StatusUnauthorized,
			code:    shared.CodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := f.do(t, tt.method, tt.path, tt.body, tt.headers...)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
		})
	}
}

func TestHandleDomainError_UnknownErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleDomainError(c, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), shared.CodeInternal)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Len(t, c.Errors, 1)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending", statusLabel(transfer.StatusPending))
	assert.Equal(t, "In Transit", statusLabel(transfer.StatusInTransit))
	assert.Equal(t, "Completed", statusLabel(transfer.StatusCompleted))
}

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	r := gin.New()
	r.GET("/health", NewHealthHandler(db).Health)

	mock.ExpectPing()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeServiceDegraded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

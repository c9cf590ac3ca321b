package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(Config{Level: "error", Format: "json", Output: "stderr"}, core)

	l.Info("forwarded")
	assert.Equal(t, 1, logs.FilterMessage("forwarded").Len())
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	t.Run("no logger falls back to nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
		assert.Empty(t, GetRequestID(context.Background()))
	})

	t.Run("request id is stored and tagged", func(t *testing.T) {
		ctx, _ := WithRequestID(context.Background(), base, "req-1")
		assert.Equal(t, "req-1", GetRequestID(ctx))

		L(ctx).Info("hello")
		entry := logs.FilterMessage("hello").All()
		require.Len(t, entry, 1)
		assert.Equal(t, "req-1", entry[0].ContextMap()["request_id"])
	})

	t.Run("trace ids are attached from the active span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()
		ctx, span := tp.Tracer("test").Start(WithContext(context.Background(), base), "op")
		defer span.End()

		L(ctx).Info("traced")
		entry := logs.FilterMessage("traced").All()
		require.Len(t, entry, 1)
		assert.Equal(t, span.SpanContext().TraceID().String(), entry[0].ContextMap()["trace_id"])
	})
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-9")
		c.Next()
	})
	r.Use(GinMiddleware(base))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(GinTenantIDKey, "tenant-1")
		FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?page=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, "req-9", inside[0].ContextMap()["request_id"])

	reqs := logs.FilterMessage("HTTP Request").All()
	require.Len(t, reqs, 1)
	assert.Equal(t, zapcore.InfoLevel, reqs[0].Level)
	assert.Equal(t, "tenant-1", reqs[0].ContextMap()["tenant_id"])
	assert.Equal(t, "page=2", reqs[0].ContextMap()["query"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	reqs = logs.FilterMessage("HTTP Request").All()
	require.Len(t, reqs, 2)
	assert.Equal(t, zapcore.WarnLevel, reqs[1].Level)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	gl.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is ignored")

	gl.Trace(ctx, time.Now(), sql, gorm.ErrDuplicatedKey)
	assert.Equal(t, 1, logs.FilterMessage("SQL constraint conflict").Len())

	gl.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
	assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())

	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessageSnippet("SLOW SQL").Len())

	gl.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 0, logs.FilterMessage("SQL Query").Len(), "info queries are below warn")

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

package telemetry

import (
	"context"
	"testing"
	"time"

	apptransfer "github.com/erp/stocktransfer/internal/application/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ apptransfer.Metrics       = (*TransferMetrics)(nil)
	_ apptransfer.RetryObserver = (*TransferMetrics)(nil)
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestTransferMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := NewTransferMetrics(provider.Meter(transferMeterName))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	m.RecordCompletion(ctx, tenantID, 3)
	m.RecordCompletion(ctx, tenantID, 2)
	m.RecordShortfall(ctx, tenantID)
	m.RecordRetry(ctx, 1)
	m.RecordRetry(ctx, 2)
	m.RecordConflict(ctx)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["transfer.completions"])
	assert.Equal(t, int64(5), sums["transfer.completed_lines"])
	assert.Equal(t, int64(1), sums["transfer.mapping_shortfalls"])
	assert.Equal(t, int64(2), sums["transfer.uow_retries"])
	assert.Equal(t, int64(1), sums["transfer.uow_conflicts"])
}

func TestProviders_Disabled(t *testing.T) {
	p, err := NewProviders(context.Background(), Config{Enabled: false, ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.False(t, p.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	p.EnableSpanProfiles()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.0).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "x"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")
}

func TestProfileTypes(t *testing.T) {
	base := profileTypes(ProfilerConfig{})
	withContention := profileTypes(ProfilerConfig{ProfileContention: true})
	assert.Len(t, base, 6)
	assert.Len(t, withContention, 10)
}

func TestProfileTags(t *testing.T) {
	t.Setenv("HOSTNAME", "node-1")
	t.Setenv("POD_NAME", "")

	tags := profileTags(map[string]string{"env": "staging"})
	assert.Equal(t, map[string]string{"hostname": "node-1", "env": "staging"}, tags)
}

func TestDBTracingPlugin_Register(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:before_query"))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:after_query"))

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
}

func TestDBTracingPlugin_AnnotatesSlowQueries(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))

	tx := db.Session(&gorm.Session{NewDB: true})
	tx.Statement.Context = ctx
	tx.Statement.Table = "transactions"
	tx.Statement.RowsAffected = 2
	plugin.annotate(tx)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[string]any{}
	for _, attr := range ended[0].Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, true, attrs["db.slow_query"])
	assert.Equal(t, "transactions", attrs["db.sql.table"])
	assert.Equal(t, int64(2), attrs["db.rows_affected"])
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "slow_query_warning", ended[0].Events()[0].Name)
}

func TestDBTracingPlugin_DisabledIsNoop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	plugin := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}

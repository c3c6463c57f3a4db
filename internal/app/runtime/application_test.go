package runtime

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/light_api/internal/app/domain/paymaster"
	"github.com/R3E-Network/light_api/internal/app/storage"
	"github.com/R3E-Network/light_api/internal/config"
	"github.com/R3E-Network/light_api/internal/gas"
	"github.com/R3E-Network/light_api/internal/logging"
)

type noGas struct{}

func (noGas) Estimate(_ context.Context, chainID uint64) (*gas.GasEstimation, error) {
	return nil, &gas.UnsupportedChainError{ChainID: chainID}
}

func testConfig(burst int) *config.Config {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.RateLimit.Burst = burst
	cfg.RateLimit.TrustProxy = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	store := storage.NewMemory()
	_, err := store.CreatePaymaster(context.Background(), paymaster.Paymaster{ID: "pm-1", Address: "0xabc", ChainID: 1})
	require.NoError(t, err)

	app, err := NewApplication(context.Background(), cfg, logging.NewNop(),
		WithMemoryStore(store), WithGasEstimator(noGas{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func get(h http.Handler, target, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = ip + ":40000"
	req.Header.Set("Origin", "https://app.light.so")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_PaymasterLookup(t *testing.T) {
	h := newTestApp(t, testConfig(100)).Handler()

	rec := get(h, "/paymaster/get?id=pm-1", "10.1.0.1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pm-1", body["id"])
	assert.Equal(t, "100", rec.Header().Get("X-Ratelimit-Limit"))
	assert.Equal(t, "99", rec.Header().Get("X-Ratelimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = get(h, "/paymaster/get?id=missing", "10.1.0.1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAYMASTER_NOT_FOUND", body["code"])
	assert.Equal(t, rec.Header().Get("X-Trace-ID"), body["trace_id"])
}

func TestHandler_BurstPerClient(t *testing.T) {
	h := newTestApp(t, testConfig(5)).Handler()

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, get(h, "/check", "10.2.0.1").Code, "request %d", i)
	}

	rec := get(h, "/check", "10.2.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("X-Ratelimit-After"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusOK, get(h, "/check", "10.2.0.2").Code)

	// scrapes bypass the limiter
	assert.Equal(t, http.StatusOK, get(h, "/metrics", "10.2.0.1").Code)
}

func TestHandler_ConcurrentBurst(t *testing.T) {
	const burst, clients = 5, 50
	h := newTestApp(t, testConfig(burst)).Handler()

	var (
		wg        sync.WaitGroup
		ok        atomic.Int32
		throttled atomic.Int32
		noCORS    atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rec := get(h, "/paymaster/get?id=pm-1", "10.4.0.1")
			switch rec.Code {
			case http.StatusOK:
				ok.Add(1)
			case http.StatusTooManyRequests:
				throttled.Add(1)
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				noCORS.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(burst), ok.Load())
	assert.Equal(t, int32(clients-burst), throttled.Load())
	assert.Zero(t, noCORS.Load())
}

func TestHandler_CORSOnEveryResponse(t *testing.T) {
	h := newTestApp(t, testConfig(100)).Handler()

	for _, target := range []string{"/", "/nope", "/paymaster/get", "/gas/estimation?chain_id=10", "/api-docs/openapi.json"} {
		rec := get(h, target, "10.3.0.1")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), target)
	}
}

func TestNewApplication_RejectsBadSchedule(t *testing.T) {
	cfg := testConfig(10)
	cfg.RateLimit.CleanupSchedule = "every now and then"

	_, err := NewApplication(context.Background(), cfg, logging.NewNop(), WithMemoryStore(storage.NewMemory()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule rate limiter cleanup")
}

func TestNewApplication_UnreachableDatabase(t *testing.T) {
	cfg := testConfig(10)
	cfg.Database.DSN = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"

	_, err := NewApplication(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configure stores")
}

func TestRunAndShutdown(t *testing.T) {
	app := newTestApp(t, testConfig(10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return app.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + app.Addr().String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "api.light.so", string(body))

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, app.Shutdown(context.Background()))
}

func TestRun_BindFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(10)
	cfg.Server.Addr = busy.Addr().String()
	app := newTestApp(t, cfg)

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind")
}

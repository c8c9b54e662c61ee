package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler gin.HandlerFunc) (int, statusResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func TestLiveHandlerPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, GoroutineCountCheck(1_000_000))
	h.liveness[0].run(context.Background())

	code, body := serve(t, h.LiveHandler)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestFailureThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failing("connection refused"))
	ctx := context.Background()

	h.liveness[0].run(ctx)
	h.liveness[0].run(ctx)
	code, _ := serve(t, h.LiveHandler)
	assert.Equal(t, http.StatusOK, code)

	h.liveness[0].run(ctx)
	code, body := serve(t, h.LiveHandler)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestReadyHandlerRequiresSetReady(t *testing.T) {
	h := New()

	code, body := serve(t, h.ReadyHandler)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")
	assert.False(t, h.IsReady())

	h.SetReady(true)
	code, _ = serve(t, h.ReadyHandler)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, h.IsReady())
}

func TestReadinessRecovers(t *testing.T) {
	h := New()
	h.SetReady(true)

	fail := true
	h.AddReadinessCheck("database", time.Second, func(context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		h.readiness[0].run(ctx)
	}
	assert.False(t, h.IsReady())

	fail = false
	h.readiness[0].run(ctx)
	assert.True(t, h.IsReady())
}

func TestStartRunsChecks(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("database", time.Second, failing("down"))

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	assert.Eventually(t, func() bool { return !h.IsReady() }, time.Second, 5*time.Millisecond)
	h.Stop()
	h.Stop()
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, GoroutineCountCheck(0)(ctx))
	assert.Error(t, DatabaseCheck(nil)(ctx))
	assert.NoError(t, PingCheck("redis", stubPinger{})(ctx))

	err := PingCheck("redis", stubPinger{err: errors.New("refused")})(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

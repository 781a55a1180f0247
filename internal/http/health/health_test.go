package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestLiveness(t *testing.T) {
	h := New(nil, stubPinger{}, "mongo", time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "superpool", got["service"])
	assert.Equal(t, "ok", got["status"])
}

func TestReadiness(t *testing.T) {
	h := New(nil, stubPinger{}, "mongo", time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, 200, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ready", got["status"])
	assert.Equal(t, "mongo", got["store"])
}

func TestReadinessStoreDown(t *testing.T) {
	h := New(nil, stubPinger{err: errors.New("no reachable servers")}, "dynamodb", time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, 503, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "not ready", got["status"])
	assert.Equal(t, "dynamodb", got["store"])
}

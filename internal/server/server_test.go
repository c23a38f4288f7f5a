package server

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadgen/internal/result"
)

func TestServerHealthzAndSnapshot(t *testing.T) {
	provider := func() result.Snapshot {
		return result.Snapshot{Name: "x", TotalRequests: 42, SuccessCount: 40}
	}
	s := New("127.0.0.1:18099", provider, nil)
	s.Start()
	defer s.Stop()
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Get("http://127.0.0.1:18099/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get("http://127.0.0.1:18099/snapshot")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body), `"TotalRequests":42`)

	resp3, err := http.Get("http://127.0.0.1:18099/metrics")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

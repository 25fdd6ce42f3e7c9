package callback

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brizzai/swagger-token/internal/auth/constants"
	"github.com/brizzai/swagger-token/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startListener(t *testing.T, path string) *Listener {
	t.Helper()
	l := NewListener(&config.CallbackConfig{Host: "127.0.0.1", Port: 0, Path: path})
	require.NoError(t, l.Start())
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func waitResult(t *testing.T, l *Listener) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := l.Wait(ctx)
	require.NoError(t, err)
	return res
}

func TestListener_CapturesCode(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		request  string
		wantCode string
	}{
		{name: "single code", path: "/", request: "/?code=TESTCODE", wantCode: "TESTCODE"},
		{name: "first of repeated codes", path: "/", request: "/?code=first&code=second", wantCode: "first"},
		{name: "unrelated parameters", path: "/", request: "/?foo=bar&code=abc&state=xyz&lang=ko", wantCode: "abc"},
		{name: "configured callback path", path: "/oauth/callback", request: "/oauth/callback?code=cb", wantCode: "cb"},
		{name: "root still accepted with callback path", path: "/oauth/callback", request: "/?code=root", wantCode: "root"},
		{name: "missing code", path: "/", request: "/?error=access_denied", wantCode: ""},
		{name: "no query", path: "/", request: "/", wantCode: ""},
		{name: "other path", path: "/", request: "/favicon.ico?code=nope", wantCode: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := startListener(t, tt.path)

			resp, err := http.Get("http://" + l.Addr() + tt.request)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.Equal(t, constants.AcknowledgePage, string(body))

			res := waitResult(t, l)
			assert.Equal(t, tt.wantCode, res.Code)
		})
	}
}

func TestListener_ReportsProviderError(t *testing.T) {
	l := startListener(t, "/")

	resp, err := http.Get("http://" + l.Addr() + "/?error=access_denied&error_description=User+denied&state=s1")
	require.NoError(t, err)
	_ = resp.Body.Close()

	res := waitResult(t, l)
	assert.Empty(t, res.Code)
	assert.Equal(t, "access_denied", res.Error)
	assert.Equal(t, "User denied", res.ErrorDescription)
	assert.Equal(t, "s1", res.State)
}

func TestListener_SingleShot(t *testing.T) {
	l := startListener(t, "/")
	addr := l.Addr()

	resp, err := http.Get("http://" + addr + "/?code=once")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "once", waitResult(t, l).Code)

	// The listener shuts itself down after the first request
	assert.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return true
		}
		_ = conn.Close()
		return false
	}, 5*time.Second, 20*time.Millisecond)
}

func TestListener_ConcurrentRequests(t *testing.T) {
	l := startListener(t, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	const n = 5
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get("http://" + l.Addr() + "/?code=c" + strconv.Itoa(i))
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, status := range statuses {
		if status == http.StatusOK {
			require.Equal(t, -1, winner, "more than one request was served: %v", statuses)
			winner = i
		}
	}
	require.NotEqual(t, -1, winner, "no request was served: %v", statuses)
	assert.Equal(t, "c"+strconv.Itoa(winner), waitResult(t, l).Code)
}

func TestListener_NonGetCountsAsTheRequest(t *testing.T) {
	l := startListener(t, "/")

	resp, err := http.Post("http://"+l.Addr()+"/?code=posted", "text/plain", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Empty(t, waitResult(t, l).Code)
}

func TestListener_BindError(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	port := occupied.Addr().(*net.TCPAddr).Port
	l := NewListener(&config.CallbackConfig{Host: "127.0.0.1", Port: port})

	err = l.Start()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBind))
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}

func TestListener_WaitTimeout(t *testing.T) {
	l := startListener(t, "/")
	addr := l.Addr()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// The port is released so the next run can bind it again
	again, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	_ = again.Close()
}

func TestListener_CloseIsIdempotent(t *testing.T) {
	l := startListener(t, "/")
	require.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestNewFactory_IndependentListeners(t *testing.T) {
	factory := NewFactory(&config.CallbackConfig{Host: "127.0.0.1", Port: 0})

	first := factory()
	second := factory()
	assert.NotSame(t, first, second)
}

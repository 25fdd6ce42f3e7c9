package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(&config.BackendConfig{LoginURL: url}, requester.NewHTTPRequester(nil))
}

func TestClient_SocialLogin(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantErr     error
		checkResult func(t *testing.T, result *LoginResult)
	}{
		{
			name:       "success",
			status:     http.StatusOK,
			body:       `{"data":{"accessToken":"svc-xyz"}}`,
			wantStatus: http.StatusOK,
			checkResult: func(t *testing.T, result *LoginResult) {
				require.NotNil(t, result.Data)
				assert.Equal(t, "svc-xyz", result.Data.AccessToken)
				assert.Equal(t, "svc-xyz", result.GetAccessToken())
			},
		},
		{
			name:       "success with full envelope",
			status:     http.StatusOK,
			body:       `{"status":200,"code":"SUCCESS","message":"ok","data":{"accessToken":"a","refreshToken":"r","newUser":false}}`,
			wantStatus: http.StatusOK,
			checkResult: func(t *testing.T, result *LoginResult) {
				assert.Equal(t, float64(200), result.Status)
				assert.Equal(t, "SUCCESS", result.Code)
				assert.Equal(t, "r", result.GetRefreshToken())
				require.NotNil(t, result.GetNewUser())
				assert.False(t, *result.GetNewUser())
			},
		},
		{
			name:       "structured error",
			status:     http.StatusUnauthorized,
			body:       `{"message":"invalid token"}`,
			wantStatus: http.StatusUnauthorized,
			checkResult: func(t *testing.T, result *LoginResult) {
				assert.Equal(t, "invalid token", result.Message)
				assert.Empty(t, result.GetAccessToken())
			},
		},
		{
			name:       "plain text error",
			status:     http.StatusInternalServerError,
			body:       `internal error`,
			wantStatus: http.StatusInternalServerError,
			checkResult: func(t *testing.T, result *LoginResult) {
				assert.Equal(t, "internal error", result.Message)
				assert.Equal(t, http.StatusInternalServerError, result.Status)
			},
		},
		{
			name:       "empty error body",
			status:     http.StatusBadGateway,
			body:       ``,
			wantStatus: http.StatusBadGateway,
			checkResult: func(t *testing.T, result *LoginResult) {
				assert.Empty(t, result.Message)
				assert.Equal(t, http.StatusBadGateway, result.Status)
			},
		},
		{
			name:    "unreadable success",
			status:  http.StatusOK,
			body:    `<html>maintenance</html>`,
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req LoginRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "KAKAO", req.Provider)
				assert.Equal(t, "provider-token", req.AccessToken)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := newTestClient(server.URL).SocialLogin(context.Background(), "KAKAO", "provider-token")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantStatus >= 200 && tt.wantStatus < 300, resp.Success())
			require.NotNil(t, resp.Result)
			tt.checkResult(t, resp.Result)
		})
	}
}

func TestClient_SocialLogin_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	resp, err := newTestClient(url).SocialLogin(context.Background(), "KAKAO", "provider-token")
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestLoginResult_TokenFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantAccess  string
		wantRefresh string
	}{
		{name: "camel case in data", body: `{"data":{"accessToken":"a1","refreshToken":"r1"}}`, wantAccess: "a1", wantRefresh: "r1"},
		{name: "snake case in data", body: `{"data":{"access_token":"a2","refresh_token":"r2"}}`, wantAccess: "a2", wantRefresh: "r2"},
		{name: "camel case at top level", body: `{"accessToken":"a3"}`, wantAccess: "a3"},
		{name: "snake case at top level", body: `{"access_token":"a4"}`, wantAccess: "a4"},
		{name: "data wins over top level", body: `{"accessToken":"top","data":{"accessToken":"nested"}}`, wantAccess: "nested"},
		{name: "null data", body: `{"data":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result LoginResult
			require.NoError(t, json.Unmarshal([]byte(tt.body), &result))
			assert.Equal(t, tt.wantAccess, result.GetAccessToken())
			assert.Equal(t, tt.wantRefresh, result.GetRefreshToken())
		})
	}

	var nilResult *LoginResult
	assert.Empty(t, nilResult.GetAccessToken())
	assert.Nil(t, nilResult.GetNewUser())
}

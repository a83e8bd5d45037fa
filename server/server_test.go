package server_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foxcpp/go-mockdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimail/verimail"
	"github.com/verimail/verimail/server"
)

func testHandler() http.Handler {
	zones := map[string]mockdns.Zone{
		"example.com.": {
			A:  []string{"192.0.2.1"},
			MX: []net.MX{{Host: "mx.example.com.", Pref: 10}},
		},
	}
	dial := func(network, address string, timeout time.Duration) (net.Conn, error) {
		client, srv := net.Pipe()
		go func() {
			defer srv.Close()
			fmt.Fprintf(srv, "220 mx ready\r\n")
			r := bufio.NewReader(srv)
			for {
				line, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "QUIT") {
					fmt.Fprintf(srv, "221 bye\r\n")
					return
				}
				fmt.Fprintf(srv, "250 ok\r\n")
			}
		}()
		return client, nil
	}

	v := verimail.New().
		WithResolver(&mockdns.Resolver{Zones: zones}).
		WithDialer(dial)
	return server.New(v, nil, server.Config{}).Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateEndpoint(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h, "/api/v1/validate", map[string]any{"email": "user@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool                      `json:"success"`
		Data      verimail.ValidationResult `json:"data"`
		Timestamp string                    `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "user@example.com", resp.Data.Email)
	assert.True(t, resp.Data.SyntaxValid)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestValidateEndpointMissingEmail(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h, "/api/v1/validate", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":"Email address is required","code":"MISSING_EMAIL"}`,
		rec.Body.String())
}

func TestValidateEndpointMalformedBody(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkEndpoint(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h, "/api/v1/validate/bulk", map[string]any{
		"emails": []string{"user@example.com", "USER@EXAMPLE.COM", "bad"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    verimail.BatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Processed)
	assert.Equal(t, 1, resp.Data.DuplicatesRemoved)
}

func TestBulkEndpointTooMany(t *testing.T) {
	h := testHandler()

	emails := make([]string, server.DefaultMaxBulk+1)
	for i := range emails {
		emails[i] = fmt.Sprintf("user%d@example.com", i)
	}
	rec := postJSON(t, h, "/api/v1/validate/bulk", map[string]any{"emails": emails})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":"Maximum 1000 emails allowed per bulk request","code":"TOO_MANY_EMAILS"}`,
		rec.Body.String())
}

func TestBulkEndpointMissingEmails(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h, "/api/v1/validate/bulk", map[string]any{"emails": []string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "MISSING_EMAILS", apiErr.Code)
}

func TestHealthz(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "verimail_validation_duration_seconds")
}

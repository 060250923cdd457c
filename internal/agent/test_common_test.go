package agent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/fjacquet/veeam_agent/internal/models"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "test-token-0001"
	testUsername = "DOMAIN\\monitor"
	testPassword = "secret123"
)

// newTestServer starts a TLS test server and returns a client configured
// against it. The handler receives every request, including the token
// exchange.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, models.Config) {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	var cfg models.Config
	cfg.Server.Host = u.Hostname()
	cfg.Server.Port = port
	cfg.Server.Username = testUsername
	cfg.Server.Password = testPassword
	cfg.Server.InsecureSkipVerify = true
	cfg.NoCache = true
	cfg.SetDefaults()

	return NewClient(cfg), cfg
}

// serveToken answers the OAuth2 token exchange with a fixed bearer token.
func serveToken(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()

	require.Equal(t, http.MethodPost, r.Method)
	require.NoError(t, r.ParseForm())
	require.Equal(t, "password", r.PostFormValue("grant_type"))
	require.Equal(t, testUsername, r.PostFormValue("username"))
	require.Equal(t, testPassword, r.PostFormValue("password"))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.TokenResponse{
		AccessToken: testToken,
		TokenType:   "Bearer",
		ExpiresIn:   900,
	})
}

// servePaged answers one page of a paginated endpoint, slicing items by the
// limit/skip query parameters. With withTotal false the pagination metadata
// omits the total, forcing clients onto the empty-page stop condition.
func servePaged[T any](w http.ResponseWriter, r *http.Request, items []T, withTotal bool) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if limit <= 0 {
		limit = models.DefaultPageLimit
	}

	start := skip
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := items[start:end]

	resp := map[string]interface{}{"data": page}
	if withTotal {
		resp["pagination"] = models.Pagination{
			Total: len(items),
			Count: len(page),
			Skip:  skip,
			Limit: limit,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

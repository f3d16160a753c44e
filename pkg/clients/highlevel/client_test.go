package highlevel

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sendahug/hug-api/pkg/config"
)

func TestRequestMissingAPIKeyFailsBeforeNetwork(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer server.Close()

	client := NewClient(&config.Config{
		HighLevelRestBase: server.URL,
		HighLevelAPIBase:  server.URL,
	})

	_, err := client.SearchContactByEmail("a@x.com")
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.False(t, hit, "a missing API key must not produce a network call")
}

func TestRequestUnauthorizedYieldsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "Invalid JWT"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.SearchContactByEmail("a@x.com")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "Invalid JWT")
}

func TestRequestNonJSONErrorBodyFallsBackToRawText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.SearchContactByEmail("a@x.com")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestRequestSendsAuthAndVersionHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, apiVersion, r.Header.Get("Version"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"contacts": []interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.SearchContactByEmail("a@x.com")
	require.NoError(t, err)
}

func TestRequestNormalizesEmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	// DeleteContact only cares that the normalized body parses as success.
	require.NoError(t, client.DeleteContact("42"))
}

func TestUpstreamMessageExtraction(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"bad id"}`, want: "bad id"},
		{name: "msg field", body: `{"msg":"nope"}`, want: "nope"},
		{name: "error field", body: `{"error":"denied"}`, want: "denied"},
		{name: "raw text", body: "plain failure", want: "plain failure"},
		{name: "empty", body: "", want: "upstream returned no error detail"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, upstreamMessage([]byte(tc.body)))
		})
	}
}

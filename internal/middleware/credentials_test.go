package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credentialContext(method, target, body string, header map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestCredentialPrecedence(t *testing.T) {
	c := credentialContext(http.MethodPost, "/x?x-api-key=from-query", `{"x-api-key":"from-body"}`, map[string]string{"x-api-key": "from-header"})
	assert.Equal(t, "from-header", Credential(c, "x-api-key"))

	c = credentialContext(http.MethodPost, "/x?x-api-key=from-query", `{"x-api-key":"from-body"}`, nil)
	assert.Equal(t, "from-query", Credential(c, "x-api-key"))

	c = credentialContext(http.MethodPost, "/x", `{"x-api-key":"from-body"}`, nil)
	assert.Equal(t, "from-body", Credential(c, "x-api-key"))

	c = credentialContext(http.MethodGet, "/x", "", nil)
	assert.Empty(t, Credential(c, "x-api-key"))
}

func TestCredentialStripsBearer(t *testing.T) {
	c := credentialContext(http.MethodGet, "/x", "", map[string]string{"x-access-token": "Bearer abc.def"})
	assert.Equal(t, "abc.def", Credential(c, "x-access-token"))
}

func TestCredentialBodyIsRestored(t *testing.T) {
	payload := `{"x-access-token":"tok","title":"Annual Report"}`
	c := credentialContext(http.MethodPost, "/x", payload, nil)

	assert.Equal(t, "tok", Credential(c, "x-access-token"))
	assert.Empty(t, Credential(c, "x-api-key"))

	rest, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, string(rest))
}

func TestCredentialIgnoresNonStringAndNonJSON(t *testing.T) {
	c := credentialContext(http.MethodPost, "/x", `{"x-api-key":42}`, nil)
	assert.Empty(t, Credential(c, "x-api-key"))

	c = credentialContext(http.MethodPost, "/x", `not json`, nil)
	assert.Empty(t, Credential(c, "x-api-key"))
}

func TestCredentialOversizedBodyIsLeftIntact(t *testing.T) {
	payload := `{"x-api-key":"k1","body":"` + strings.Repeat("a", 2<<20) + `"}`
	c := credentialContext(http.MethodPost, "/x", payload, map[string]string{"x-access-token": "tok"})

	assert.Equal(t, "tok", Credential(c, "x-access-token"))
	assert.Empty(t, Credential(c, "x-api-key"))
	_, cached := c.Get(gin.BodyBytesKey)
	assert.False(t, cached)

	rest, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.Len(t, rest, len(payload))
	assert.Equal(t, payload, string(rest))
	require.NoError(t, c.Request.Body.Close())
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxCredentialBody caps how much of a JSON body is read when looking for
// credential fields.
const maxCredentialBody = 1 << 20

// CredentialConfig names the request fields carrying credentials. Each name
// is used as a header, a query parameter and a JSON body field.
type CredentialConfig struct {
	KeyField   string
	TokenField string
}

func (c CredentialConfig) withDefaults() CredentialConfig {
	if c.KeyField == "" {
		c.KeyField = "x-api-key"
	}
	if c.TokenField == "" {
		c.TokenField = "x-access-token"
	}
	return c
}

// Credential returns the value of field from the header, then the query
// string, then a top-level JSON body field. A leading "Bearer " is removed.
func Credential(c *gin.Context, field string) string {
	if v := strings.TrimSpace(c.GetHeader(field)); v != "" {
		return stripBearer(v)
	}
	if v := strings.TrimSpace(c.Query(field)); v != "" {
		return stripBearer(v)
	}
	return stripBearer(bodyField(c, field))
}

func stripBearer(v string) string {
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return v
}

// replayBody serves already-read bytes followed by the unread remainder of
// the original body.
type replayBody struct {
	io.Reader
	io.Closer
}

// bodyField peeks into a JSON body without consuming it. The raw bytes are
// cached under gin.BodyBytesKey and the request body is restored, so later
// binding still sees the full payload. Bodies over maxCredentialBody are not
// searched; they are handed back intact and left uncached.
func bodyField(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	if !strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return ""
	}

	var raw []byte
	if cached, ok := c.Get(gin.BodyBytesKey); ok {
		raw, _ = cached.([]byte)
	} else {
		body := c.Request.Body
		data, err := io.ReadAll(io.LimitReader(body, maxCredentialBody+1))
		if err != nil || len(data) > maxCredentialBody {
			c.Request.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(data), body), Closer: body}
			return ""
		}
		_ = body.Close()
		raw = data
		c.Set(gin.BodyBytesKey, raw)
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(fields[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/center-cms-api/internal/models"
	"github.com/noah-isme/center-cms-api/internal/service"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
)

type stubKeys map[string]*models.APIKey

func (s stubKeys) FindByKey(ctx context.Context, key string) (*models.APIKey, error) {
	if k, ok := s[key]; ok {
		return k, nil
	}
	return nil, sql.ErrNoRows
}

type stubUsers struct {
	users   map[string]*models.User
	lookups int
}

func (s *stubUsers) FindByIDWithRoles(ctx context.Context, id string, roles []models.UserRole) (*models.User, error) {
	s.lookups++
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, r := range roles {
		if r == u.Role {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

type countingRecorder struct {
	codes []string
}

func (r *countingRecorder) RecordAuthRejection(code string) {
	r.codes = append(r.codes, code)
}

type pipelineFixture struct {
	auth    *Authorizer
	users   *stubUsers
	codec   *service.TokenCodec
	metrics *countingRecorder
}

func newPipelineFixture() *pipelineFixture {
	keys := stubKeys{
		"internal": {ID: "k1", Class: models.KeyClassInternal, Status: models.KeyStatusActive},
		"external": {ID: "k2", Class: models.KeyClassExternal, Status: models.KeyStatusActive},
		"revoked":  {ID: "k3", Class: models.KeyClassInternal, Status: models.KeyStatusRevoked},
	}
	users := &stubUsers{users: map[string]*models.User{
		"admin":   {ID: "admin", CenterID: "T1", Role: models.RoleAdministrator, Access: models.AccessGranted, Status: models.StatusActive},
		"staff":   {ID: "staff", CenterID: "T2", Role: models.RoleStaff, Access: models.AccessGranted, Status: models.StatusActive},
		"student": {ID: "student", CenterID: "T1", Role: models.RoleStudent, Access: models.AccessGranted, Status: models.StatusActive},
	}}
	codec := service.NewTokenCodec(service.TokenConfig{Secret: "secret", Expiration: time.Hour})
	resolver := service.NewIdentityResolver(keys, users, codec, nil)
	metrics := &countingRecorder{}
	auth := NewAuthorizer(resolver, CredentialConfig{}, metrics, nil)
	return &pipelineFixture{auth: auth, users: users, codec: codec, metrics: metrics}
}

func (f *pipelineFixture) token(t *testing.T, userID, centerID string) string {
	t.Helper()
	raw, _, err := f.codec.Sign(userID, centerID)
	require.NoError(t, err)
	return raw
}

func (f *pipelineFixture) staffRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	guard := f.auth.Authorize(
		f.auth.RequireKey(),
		f.auth.RequireKeyClass(models.KeyClassInternal),
		f.auth.RequireToken(),
		f.auth.RequireRole(models.RoleAdministrator, models.RoleStaff),
	)
	handler := func(c *gin.Context) {
		var body struct {
			CenterID string `json:"center_id"`
		}
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{
			"center":        CenterFrom(c),
			"client_center": body.CenterID,
			"kind":          PrincipalFrom(c).Kind,
		})
	}
	r.POST("/admin/posts", guard, handler)
	return r
}

func doRequest(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestPipelineRejections(t *testing.T) {
	f := newPipelineFixture()
	r := f.staffRouter()
	admin := f.token(t, "admin", "T1")

	cases := []struct {
		name    string
		headers map[string]string
		status  int
		code    string
	}{
		{"no key", map[string]string{"x-access-token": admin}, http.StatusUnauthorized, appErrors.ErrMissingKey.Code},
		{"unknown key", map[string]string{"x-api-key": "nope", "x-access-token": admin}, http.StatusForbidden, appErrors.ErrWrongKeyClass.Code},
		{"external key", map[string]string{"x-api-key": "external", "x-access-token": admin}, http.StatusForbidden, appErrors.ErrWrongKeyClass.Code},
		{"revoked key", map[string]string{"x-api-key": "revoked", "x-access-token": admin}, http.StatusForbidden, appErrors.ErrKeyUnavailable.Code},
		{"no token", map[string]string{"x-api-key": "internal"}, http.StatusUnauthorized, appErrors.ErrMissingToken.Code},
		{"bad token", map[string]string{"x-api-key": "internal", "x-access-token": "garbage"}, http.StatusUnauthorized, appErrors.ErrUnauthorized.Code},
		{"student", map[string]string{"x-api-key": "internal", "x-access-token": f.token(t, "student", "T1")}, http.StatusForbidden, appErrors.ErrRoleMismatch.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodPost, "/admin/posts", "", tc.headers)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
	assert.Len(t, f.metrics.codes, len(cases))
}

func TestPipelineBadTokenNeverReachesRoleLookup(t *testing.T) {
	f := newPipelineFixture()
	r := f.staffRouter()

	forged := service.NewTokenCodec(service.TokenConfig{Secret: "not-the-secret", Expiration: time.Hour})
	raw, _, err := forged.Sign("admin", "T1")
	require.NoError(t, err)

	rec := doRequest(r, http.MethodPost, "/admin/posts", "", map[string]string{"x-api-key": "internal", "x-access-token": raw})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, f.users.lookups)
}

func TestPipelineOverridesClientCenter(t *testing.T) {
	f := newPipelineFixture()
	r := f.staffRouter()

	for user, want := range map[string]string{"admin": "T1", "staff": "T2"} {
		rec := doRequest(r, http.MethodPost, "/admin/posts", `{"center_id":"T9"}`, map[string]string{
			"x-api-key":      "internal",
			"x-access-token": "Bearer " + f.token(t, user, "T9"),
		})
		require.Equal(t, http.StatusOK, rec.Code, user)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, want, body["center"], user)
		assert.Equal(t, "T9", body["client_center"], "handler still sees the original body")
		assert.Equal(t, string(models.PrincipalUser), body["kind"])
	}
}

func TestPipelineCredentialsFromQueryAndBody(t *testing.T) {
	f := newPipelineFixture()
	r := f.staffRouter()
	token := f.token(t, "staff", "T2")

	rec := doRequest(r, http.MethodPost, "/admin/posts?x-api-key=internal", `{"x-access-token":"`+token+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPipelineOrdering(t *testing.T) {
	f := newPipelineFixture()

	_, err := NewPipeline(f.auth.RequireToken(), f.auth.RequireKey())
	assert.Error(t, err)

	_, err = NewPipeline(f.auth.RequireKey(), f.auth.RequireRole(models.RoleStaff))
	assert.Error(t, err, "role gate without a token gate")

	_, err = NewPipeline(f.auth.RequireKeyClass(models.KeyClassRoot))
	assert.Error(t, err, "class gate without a key gate")

	assert.Panics(t, func() { f.auth.Authorize(f.auth.RequireRole(models.RoleStaff), f.auth.RequireToken()) })

	_, err = NewPipeline(f.auth.RequireKey(), f.auth.RequireKeyClass(models.KeyClassRoot), f.auth.RequireToken(), f.auth.RequireRole(models.RoleStaff))
	assert.NoError(t, err)
}

func TestPipelineRunShortCircuits(t *testing.T) {
	calls := 0
	fail := Gate{Name: "fail", Check: func(ctx context.Context, ac AuthContext) (AuthContext, error) {
		calls++
		return ac, appErrors.Clone(appErrors.ErrMissingKey, "")
	}}
	never := Gate{Name: "never", Check: func(ctx context.Context, ac AuthContext) (AuthContext, error) {
		calls++
		return ac, nil
	}}

	_, err := MustPipeline(fail, never).Run(context.Background(), NewAuthContext(nil))
	assert.ErrorIs(t, err, appErrors.ErrMissingKey)
	assert.Equal(t, 1, calls)
}

func TestAuthContextPrincipal(t *testing.T) {
	ac := NewAuthContext(nil)
	assert.Equal(t, models.Anonymous(), ac.Principal())

	ac.Key = &models.KeyPrincipal{Class: models.KeyClassRoot}
	assert.Equal(t, models.PrincipalAPIKey, ac.Principal().Kind)
	assert.Empty(t, ac.CenterID())

	ac.Token = &models.TokenIdentity{SubjectUserID: "u", CenterID: "T9"}
	assert.Equal(t, "T9", ac.CenterID())

	ac.User = &models.UserPrincipal{UserID: "u", CenterID: "T1"}
	assert.Equal(t, models.PrincipalUser, ac.Principal().Kind)
	assert.Equal(t, "T1", ac.CenterID())
}

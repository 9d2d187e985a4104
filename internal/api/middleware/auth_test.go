package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/pkg/jwthelper"
)

const signingKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOperators map[uint]domain.Operator

func (f fakeOperators) GetOperator(_ context.Context, id uint) (domain.Operator, error) {
	op, ok := f[id]
	if !ok {
		return domain.Operator{}, errors.New("not found")
	}
	return op, nil
}

func token(t *testing.T, id uint, role, userAgent string) string {
	t.Helper()

	signed, err := jwthelper.GenerateToken([]byte(signingKey), id, role, userAgent, time.Hour)
	require.NoError(t, err)
	return signed
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"id": UserID(ctx), "role": Role(ctx), "actor": ActorFrom(ctx).Type})
	})
	r.GET("/events/:eventID", handlers...)
	return r
}

func serve(r *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestVerifyJWT(t *testing.T) {
	auth := NewAuthenticator(signingKey)
	r := newRouter(auth.VerifyJWT())

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{
			name: "missing token",
			path: "/events/1",
			want: http.StatusUnauthorized,
		},
		{
			name:   "bearer header",
			path:   "/events/1",
			header: map[string]string{"Authorization": "Bearer " + token(t, 7, domain.RoleAdmin, "")},
			want:   http.StatusOK,
		},
		{
			name: "query parameter",
			path: "/events/1?token=" + token(t, 7, domain.RoleAdmin, ""),
			want: http.StatusOK,
		},
		{
			name:   "other signing key",
			path:   "/events/1",
			header: map[string]string{"Authorization": "Bearer " + mustToken(t, "other-key")},
			want:   http.StatusUnauthorized,
		},
		{
			name: "user agent mismatch",
			path: "/events/1",
			header: map[string]string{
				"Authorization": "Bearer " + token(t, 7, domain.RoleAdmin, "browser"),
				"User-Agent":    "curl",
			},
			want: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.path, tt.header)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func mustToken(t *testing.T, key string) string {
	t.Helper()

	signed, err := jwthelper.GenerateToken([]byte(key), 7, domain.RoleAdmin, "", time.Hour)
	require.NoError(t, err)
	return signed
}

func TestVerifyJWTSetsActor(t *testing.T) {
	auth := NewAuthenticator(signingKey)
	r := newRouter(auth.VerifyJWT())

	rec := serve(r, "/events/1", map[string]string{"Authorization": "Bearer " + token(t, 3, domain.RoleOperator, "")})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"role":"operator","actor":"operator"}`, rec.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	auth := NewAuthenticator(signingKey)
	r := newRouter(auth.OptionalJWT())

	rec := serve(r, "/events/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":0,"role":"","actor":"user"}`, rec.Body.String())

	rec = serve(r, "/events/1", map[string]string{"Authorization": "Bearer broken"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	auth := NewAuthenticator(signingKey)
	r := newRouter(auth.VerifyJWT(), RequireRoles(domain.RoleAdmin, domain.RoleCoordinator))

	rec := serve(r, "/events/1", map[string]string{"Authorization": "Bearer " + token(t, 1, domain.RoleCoordinator, "")})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, "/events/1", map[string]string{"Authorization": "Bearer " + token(t, 1, domain.RoleOperator, "")})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireEventAccess(t *testing.T) {
	auth := NewAuthenticator(signingKey)
	operators := fakeOperators{
		5: {ID: 5, Name: "Portaria", EventIDs: []uint{1, 2}},
	}
	r := newRouter(auth.VerifyJWT(), RequireEventAccess(operators, "eventID"))

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{name: "dashboard user", path: "/events/9", token: token(t, 1, domain.RoleAdmin, ""), want: http.StatusOK},
		{name: "assigned operator", path: "/events/2", token: token(t, 5, domain.RoleOperator, ""), want: http.StatusOK},
		{name: "unassigned event", path: "/events/3", token: token(t, 5, domain.RoleOperator, ""), want: http.StatusForbidden},
		{name: "deleted operator", path: "/events/1", token: token(t, 6, domain.RoleOperator, ""), want: http.StatusUnauthorized},
		{name: "invalid event id", path: "/events/abc", token: token(t, 5, domain.RoleOperator, ""), want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.path, map[string]string{"Authorization": "Bearer " + tt.token})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := newRouter(limiter.Limit())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, "/events/1", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "/events/1", nil).Code)
}

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academia/internal/apperr"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "academia-test"
)

var faculty = Principal{ID: "fac-1", Role: RoleFaculty, UniversityID: "uni-1", ProgramID: "prog-1", Name: "Asha"}

func TestIssueParseRoundTrip(t *testing.T) {
	tok, err := Issue(faculty, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)

	claims, err := Parse(tok.Value, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, faculty, claims.Principal())
	assert.Equal(t, tok.ID, claims.ID)
}

func TestParseRejects(t *testing.T) {
	good, err := Issue(faculty, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	expired, err := Issue(faculty, testIssuer, testKey, -time.Minute)
	require.NoError(t, err)
	noRole, err := Issue(Principal{ID: "x", Role: "janitor"}, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{"wrong key", good.Value, "other", testIssuer},
		{"wrong issuer", good.Value, testKey, "someone-else"},
		{"expired", expired.Value, testKey, testIssuer},
		{"unknown role", noRole.Value, testKey, testIssuer},
		{"garbage", "not-a-jwt", testKey, testIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.token, tt.key, tt.issuer)
			assert.Error(t, err)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordLength))
	assert.NoError(t, err)
	_, err = HashPassword(strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, _ := r.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = r.IsRevoked(ctx, "stale")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = r.IsRevoked(ctx, "a")
	assert.False(t, revoked)
}

func newRouter(m *Middleware, roles ...Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", m.Required(), RequireRoles(roles...), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, p)
	})
	return r
}

func TestMiddleware(t *testing.T) {
	revoker := NewMemoryRevoker()
	m := NewMiddleware(testKey, testIssuer, "session", revoker)
	r := newRouter(m, RoleFaculty, RoleSPOC)

	tok, err := Issue(faculty, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	studentTok, err := Issue(Principal{ID: "s", Role: RoleStudent, UniversityID: "uni-1"}, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	gone, err := Issue(faculty, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	require.NoError(t, revoker.Revoke(context.Background(), gone.ID, gone.ExpiresAt))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok.Value) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: tok.Value}) }, http.StatusOK},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"wrong role", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+studentTok.Value) }, http.StatusForbidden},
		{"revoked", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+gone.Value) }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

type fakeAccounts map[string]*Account

func (f fakeAccounts) FindAccount(_ context.Context, role Role, email string) (*Account, error) {
	a, ok := f[string(role)+":"+email]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func TestServiceLogin(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	accounts := fakeAccounts{
		"faculty:asha@uni.edu": {ID: "fac-1", Role: RoleFaculty, UniversityID: "uni-1", ProgramID: "prog-1", Name: "Asha", PasswordHash: hash, Active: true},
		"student:off@uni.edu":  {ID: "stu-1", Role: RoleStudent, UniversityID: "uni-2", PasswordHash: hash, Active: false},
	}
	revoker := NewMemoryRevoker()
	svc := NewService(accounts, revoker, testIssuer, testKey, time.Hour)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "faculty", "  Asha@Uni.edu ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "fac-1", sess.Principal.ID)

	claims, err := Parse(sess.Token, testKey, testIssuer)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))
	revoked, _ := revoker.IsRevoked(ctx, claims.ID)
	assert.True(t, revoked)

	_, err = svc.Login(ctx, "faculty", "asha@uni.edu", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "faculty", "nobody@uni.edu", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "student", "off@uni.edu", "s3cret-pass")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Login(ctx, "janitor", "a@b.c", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

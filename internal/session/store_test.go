package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, b Backend) *Store {
	t.Helper()
	return NewStore(b, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestRestore_PersistedPair(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Set(map[string]string{
		KeyToken: "mock-token",
		KeyUser:  `{"email":"test@example.com","id":"123"}`,
	}))

	s := newTestStore(t, b)
	sess := s.Restore()

	assert.True(t, sess.IsAuthenticated())
	require.NotNil(t, sess.Principal)
	assert.Equal(t, "test@example.com", sess.Principal.Email)
	assert.Equal(t, "123", sess.Principal.ID)
	assert.Equal(t, "mock-token", s.Token())
}

func TestRestore_Empty(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())
	sess := s.Restore()

	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, sess.Principal)
	assert.False(t, s.IsAuthenticated())
}

func TestRestore_IncompleteOrCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
	}{
		{"token only", map[string]string{KeyToken: "tok"}},
		{"user only", map[string]string{KeyUser: `{"id":"1","email":"a@b.c"}`}},
		{"user not json", map[string]string{KeyToken: "tok", KeyUser: "{not json"}},
		{"user empty object", map[string]string{KeyToken: "tok", KeyUser: "{}"}},
		{"empty token", map[string]string{KeyToken: "", KeyUser: `{"id":"1"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMemoryBackend()
			require.NoError(t, b.Set(tt.entries))

			sess := newTestStore(t, b).Restore()
			assert.False(t, sess.IsAuthenticated())
			assert.Nil(t, sess.Principal)
		})
	}
}

func TestSetThenClear_ReturnsToEmpty(t *testing.T) {
	b := NewMemoryBackend()
	s := newTestStore(t, b)
	s.Restore()
	before := s.Snapshot()

	require.NoError(t, s.Set("new-token", Principal{ID: "123", Email: "test@example.com"}))
	tok, ok, _ := b.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "new-token", tok)
	assert.True(t, s.IsAuthenticated())

	require.NoError(t, s.Clear())
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 0, b.Len())

	// a fresh process sees nothing either
	assert.False(t, newTestStore(t, b).Restore().IsAuthenticated())
}

func TestSet_RejectsEmptyToken(t *testing.T) {
	b := NewMemoryBackend()
	s := newTestStore(t, b)
	require.Error(t, s.Set("", Principal{ID: "1"}))
	assert.Equal(t, 0, b.Len())
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())
	require.NoError(t, s.Set("tok", Principal{ID: "1", Email: "a@example.com"}))

	snap := s.Snapshot()
	snap.Principal.Email = "changed@example.com"

	assert.Equal(t, "a@example.com", s.Snapshot().Principal.Email)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())

	var seen []bool
	unsubscribe := s.Subscribe(func(sess Session) {
		seen = append(seen, sess.IsAuthenticated())
	})

	require.NoError(t, s.Set("tok", Principal{ID: "1"}))
	require.NoError(t, s.Clear())
	unsubscribe()
	require.NoError(t, s.Set("tok", Principal{ID: "1"}))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestFileBackend_SurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	first := newTestStore(t, NewFileBackend(path))
	first.Restore()
	require.NoError(t, first.Set("file-token", Principal{ID: "9", Email: "ops@example.com", Role: RoleAdmin}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := newTestStore(t, NewFileBackend(path))
	sess := second.Restore()
	require.True(t, sess.IsAuthenticated())
	assert.Equal(t, "ops@example.com", sess.Principal.Email)
	assert.Equal(t, RoleAdmin, sess.Principal.Role)

	require.NoError(t, second.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "session file should be removed on clear")
}

func TestFileBackend_CorruptFileRestoresEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o600))

	s := newTestStore(t, NewFileBackend(path))
	assert.False(t, s.Restore().IsAuthenticated())

	// login still works and replaces the corrupt file
	require.NoError(t, s.Set("tok", Principal{ID: "1"}))
	assert.True(t, newTestStore(t, NewFileBackend(path)).Restore().IsAuthenticated())
}

func TestSession_Expiry(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "123",
		"exp":     exp.Unix(),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	got, ok := Session{Token: signed}.Expiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "got %v want %v", got, exp)

	_, ok = Session{Token: "opaque-token"}.Expiry()
	assert.False(t, ok)
}

func TestPrincipal_Helpers(t *testing.T) {
	p := Principal{Email: "a@example.com", Roles: []string{"manager"}, Permissions: []string{"vehicles.create"}}
	assert.Equal(t, RoleManager, p.PrimaryRole())
	assert.True(t, p.HasPermission("vehicles.create"))
	assert.False(t, p.HasPermission("vehicles.delete"))
	assert.Equal(t, "a@example.com", p.DisplayName())

	p.FirstName, p.LastName = "Ada", "Lovelace"
	assert.Equal(t, "Ada Lovelace", p.DisplayName())
}

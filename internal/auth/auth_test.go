package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestIssueAndValidateToken(t *testing.T) {
	token, exp, err := IssueToken("admin-1", "admin", testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ValidateToken(token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, err = ValidateToken(token, testKey+"x")
	assert.Error(t, err)
}

func TestIssueToken_WeakKey(t *testing.T) {
	_, _, err := IssueToken("a", "admin", "short", time.Hour)
	assert.Error(t, err)
}

func TestExpiresAt(t *testing.T) {
	token, exp, err := IssueToken("a", "admin", testKey, time.Minute)
	require.NoError(t, err)

	got, ok := ExpiresAt(token)
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())

	_, ok = ExpiresAt("opaque-api-key")
	assert.False(t, ok)
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken(" abc ").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = StaticToken("").Token(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

func TestFileToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")

	_, err := FileToken{Path: path}.Token(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredentials, "missing file")

	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	token, err := FileToken{Path: path}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-file", token)

	require.NoError(t, os.WriteFile(path, []byte("rotated"), 0o600))
	token, err = FileToken{Path: path}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", token, "file is re-read on each call")
}

func TestChain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("file"), 0o600))

	token, err := Chain{StaticToken(""), FileToken{Path: path}}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "file", token)

	token, err = Chain{StaticToken("inline"), FileToken{Path: path}}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inline", token)

	_, err = Chain{}.Token(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

type failing struct{}

func (failing) Token(context.Context) (string, error) { return "", errors.New("keyring locked") }

func TestChain_StopsOnRealError(t *testing.T) {
	_, err := Chain{failing{}, StaticToken("never")}.Token(context.Background())
	assert.EqualError(t, err, "keyring locked")
}

func TestExpiryGuard(t *testing.T) {
	valid, _, err := IssueToken("a", "admin", testKey, time.Hour)
	require.NoError(t, err)
	soon, _, err := IssueToken("a", "admin", testKey, 10*time.Second)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"Valid JWT", valid, nil},
		{"Within skew", soon, ErrTokenExpired},
		{"Opaque token", "opaque", nil},
		{"No token", "", ports.ErrNoCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := ExpiryGuard{Next: StaticToken(tt.token), Skew: 30 * time.Second}
			token, err := guard.Token(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestNewProvider(t *testing.T) {
	token, err := NewProvider("inline", "", time.Minute).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inline", token)

	_, err = NewProvider("", "", time.Minute).Token(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoCredentials)
}

package sharecode

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/validation"
)

func newTestService(t *testing.T, mem *cloud.Memory, secret string) *Service {
	t.Helper()

	s, err := NewService(mem, []byte(secret), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestNewService_EmptySecret(t *testing.T) {
	_, err := NewService(cloud.NewMemory(), nil, slog.Default())
	assert.Error(t, err)
}

func TestIssueResolve(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	s := newTestService(t, mem, "band-secret")

	sc, err := s.Issue(ctx, "g1", "f1", time.Hour)
	require.NoError(t, err)
	require.NoError(t, validation.ValidateShareCode(sc.Code))
	assert.Equal(t, "bandsync://join?code="+sc.Code, sc.DeepLink)
	assert.Positive(t, sc.ExpiresAt)

	inputs := []string{
		sc.Code,
		sc.DeepLink,
		sc.Code[:4] + "-" + sc.Code[4:],
		"  " + sc.Code + " ",
	}
	for _, in := range inputs {
		got, err := s.Resolve(ctx, in)
		require.NoError(t, err, in)
		assert.Equal(t, "g1", got.GroupID)
		assert.Equal(t, "f1", got.FolderID)
		assert.Equal(t, sc.Code, got.Code)
		assert.Equal(t, sc.ExpiresAt, got.ExpiresAt)
	}
}

func TestResolve_NoExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, cloud.NewMemory(), "band-secret")

	sc, err := s.Issue(ctx, "g1", "f1", 0)
	require.NoError(t, err)
	assert.Zero(t, sc.ExpiresAt)

	got, err := s.Resolve(ctx, sc.Code)
	require.NoError(t, err)
	assert.Zero(t, got.ExpiresAt)
}

func TestResolve_Expired(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, cloud.NewMemory(), "band-secret")

	sc, err := s.Issue(ctx, "g1", "f1", time.Minute)
	require.NoError(t, err)

	s.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err = s.Resolve(ctx, sc.Code)
	assert.ErrorIs(t, err, ErrShareCodeExpired)
}

func TestResolve_Invalid(t *testing.T) {
	ctx := context.Background()
	mem := cloud.NewMemory()
	s := newTestService(t, mem, "band-secret")

	_, err := s.Resolve(ctx, "ABCD2345")
	assert.ErrorIs(t, err, ErrShareCodeInvalid, "not registered")

	_, err = s.Resolve(ctx, "abc")
	assert.ErrorIs(t, err, ErrShareCodeInvalid, "bad format")

	// подпись другим секретом
	other := newTestService(t, mem, "other-secret")
	sc, err := other.Issue(ctx, "g1", "f1", time.Hour)
	require.NoError(t, err)
	_, err = s.Resolve(ctx, sc.Code)
	assert.ErrorIs(t, err, ErrShareCodeInvalid)

	// токен выписан на другой код
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		GroupID:          "g1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "ZZZZZZZZ"},
	}).SignedString([]byte("band-secret"))
	require.NoError(t, err)
	data, err := json.Marshal(registryEntry{Token: token})
	require.NoError(t, err)
	_, err = mem.Put(ctx, manifest.ShareCodePath("WXYZ2345"), data, cloud.PutOptions{})
	require.NoError(t, err)
	_, err = s.Resolve(ctx, "WXYZ2345")
	assert.ErrorIs(t, err, ErrShareCodeInvalid)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, cloud.NewMemory(), "band-secret")

	sc, err := s.Issue(ctx, "g1", "f1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, sc.Code))
	_, err = s.Resolve(ctx, sc.Code)
	assert.ErrorIs(t, err, ErrShareCodeInvalid)
	assert.ErrorIs(t, s.Revoke(ctx, sc.Code), ErrShareCodeInvalid)
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "code", input: "ABCD2345", want: "ABCD2345"},
		{name: "lowercase with dash", input: "abcd-2345", want: "ABCD2345"},
		{name: "deep link", input: "bandsync://join?code=abcd2345", want: "ABCD2345"},
		{name: "wrong deep link target", input: "bandsync://open?code=ABCD2345", wantErr: true},
		{name: "ambiguous characters", input: "ABCD0O1I", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrShareCodeInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.NoError(t, validation.ValidateShareCode(code))
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 90)
}

// Package sharecode issues and resolves group invitations.
//
// An invitation is a short human-typable code. The code is the key of a
// registry object in the shared bucket holding a signed token with the
// group and folder ids; the token signature and expiry are checked on join.
package sharecode

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/bandsync/internal/cloud"
	"github.com/iudanet/bandsync/internal/manifest"
	"github.com/iudanet/bandsync/internal/models"
	"github.com/iudanet/bandsync/internal/validation"
)

const (
	// DeepLinkScheme схема deep link приглашения
	DeepLinkScheme = "bandsync"
	// DeepLinkPrefix префикс deep link, за которым следует код
	DeepLinkPrefix = "bandsync://join?code="

	issuer       = "bandsync"
	issueRetries = 5
)

var (
	// ErrShareCodeInvalid код не существует, поврежден или подпись не сходится
	ErrShareCodeInvalid = errors.New("share code invalid")
	// ErrShareCodeExpired срок действия кода истек
	ErrShareCodeExpired = errors.New("share code expired")
)

// Claims содержимое подписанного токена приглашения
type Claims struct {
	GroupID  string `json:"gid"`
	FolderID string `json:"fid"`
	jwt.RegisteredClaims
}

type registryEntry struct {
	Token string `json:"token"`
}

// Service provides share code generation and resolution
type Service struct {
	transport cloud.Transport
	logger    *slog.Logger
	now       func() time.Time
	secret    []byte
}

// NewService creates a share code service.
// secret must be the same on every device of the group.
func NewService(transport cloud.Transport, secret []byte, logger *slog.Logger) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("share code secret cannot be empty")
	}
	return &Service{
		transport: transport,
		secret:    secret,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// SetClock overrides the time source (for tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Issue creates a new code for the group. ttl <= 0 means the code never expires.
func (s *Service) Issue(ctx context.Context, groupID, folderID string, ttl time.Duration) (*models.ShareCode, error) {
	now := s.now()

	for range issueRetries {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}

		claims := Claims{
			GroupID:  groupID,
			FolderID: folderID,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:   issuer,
				Subject:  code,
				IssuedAt: jwt.NewNumericDate(now),
			},
		}
		var expiresAt int64
		if ttl > 0 {
			claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
			expiresAt = claims.ExpiresAt.UnixMilli()
		}

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
		if err != nil {
			return nil, fmt.Errorf("failed to sign share code: %w", err)
		}
		data, err := json.Marshal(registryEntry{Token: token})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal share code: %w", err)
		}

		_, err = s.transport.Put(ctx, manifest.ShareCodePath(code), data, cloud.PutOptions{IfNoneMatch: true})
		if errors.Is(err, cloud.ErrPreconditionFailed) {
			s.logger.Debug("share code collision, generating another")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to register share code: %w", err)
		}

		s.logger.Info("share code issued", "group_id", groupID, "code", code)
		return &models.ShareCode{
			Code:      code,
			DeepLink:  DeepLink(code),
			GroupID:   groupID,
			FolderID:  folderID,
			ExpiresAt: expiresAt,
		}, nil
	}

	return nil, fmt.Errorf("failed to allocate a free share code after %d attempts", issueRetries)
}

// Resolve looks up a code or deep link and verifies its token
func (s *Service) Resolve(ctx context.Context, input string) (*models.ShareCode, error) {
	code, err := ParseInput(input)
	if err != nil {
		return nil, err
	}

	data, _, err := s.transport.Get(ctx, manifest.ShareCodePath(code))
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return nil, fmt.Errorf("%w: code %s is not registered", ErrShareCodeInvalid, code)
		}
		return nil, fmt.Errorf("failed to fetch share code: %w", err)
	}

	var entry registryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShareCodeInvalid, err)
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(entry.Token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(code),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: code %s", ErrShareCodeExpired, code)
		}
		return nil, fmt.Errorf("%w: %w", ErrShareCodeInvalid, err)
	}

	sc := &models.ShareCode{
		Code:     code,
		DeepLink: DeepLink(code),
		GroupID:  claims.GroupID,
		FolderID: claims.FolderID,
	}
	if claims.ExpiresAt != nil {
		sc.ExpiresAt = claims.ExpiresAt.UnixMilli()
	}
	return sc, nil
}

// Revoke removes a code from the registry
func (s *Service) Revoke(ctx context.Context, code string) error {
	if err := s.transport.Delete(ctx, manifest.ShareCodePath(validation.NormalizeShareCode(code))); err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			return fmt.Errorf("%w: code %s is not registered", ErrShareCodeInvalid, code)
		}
		return fmt.Errorf("failed to revoke share code: %w", err)
	}
	return nil
}

// DeepLink формирует ссылку приглашения
func DeepLink(code string) string {
	return DeepLinkPrefix + code
}

// ParseInput accepts a bare code (any case, spaces and dashes allowed)
// or a bandsync://join deep link and returns the canonical code.
func ParseInput(input string) (string, error) {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(strings.ToLower(input), DeepLinkScheme+"://") {
		u, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrShareCodeInvalid, err)
		}
		if u.Host != "join" {
			return "", fmt.Errorf("%w: unexpected deep link target %q", ErrShareCodeInvalid, u.Host)
		}
		input = u.Query().Get("code")
	}

	code := validation.NormalizeShareCode(input)
	if err := validation.ValidateShareCode(code); err != nil {
		return "", fmt.Errorf("%w: %w", ErrShareCodeInvalid, err)
	}
	return code, nil
}

// GenerateCode returns a random code from the share code alphabet
func GenerateCode() (string, error) {
	alphabet := validation.ShareCodeAlphabet
	limit := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	for range validation.ShareCodeLen {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

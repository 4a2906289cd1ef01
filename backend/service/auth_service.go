package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mediafeed/backend/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer    = "mediafeed"
	accessAudience = "mediafeed:auth"
	resetAudience  = "mediafeed:reset"
	verifyAudience = "mediafeed:verify"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = fmt.Errorf("%w: token has been revoked", ErrInvalidToken)
	ErrInactiveUser = errors.New("user is inactive")
	ErrEmptySecret  = errors.New("token secret is empty")
)

// AuthConfig is the token configuration. One secret signs access, reset and
// verification tokens; the audience keeps them apart.
type AuthConfig struct {
	Secret         string
	AccessLifetime time.Duration
	ResetLifetime  time.Duration
	VerifyLifetime time.Duration
}

type AccessClaims struct {
	jwt.RegisteredClaims
}

type ResetClaims struct {
	PasswordFingerprint string `json:"password_fgpt"`
	jwt.RegisteredClaims
}

type VerifyClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService issues and checks bearer tokens.
type AuthService struct {
	cfg     AuthConfig
	revoker TokenRevoker
	now     func() time.Time
}

// NewAuthService returns an AuthService. revoker may be nil, in which case
// logout does not invalidate tokens.
func NewAuthService(cfg AuthConfig, revoker TokenRevoker) (*AuthService, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	if cfg.AccessLifetime <= 0 {
		cfg.AccessLifetime = time.Hour
	}
	if cfg.ResetLifetime <= 0 {
		cfg.ResetLifetime = time.Hour
	}
	if cfg.VerifyLifetime <= 0 {
		cfg.VerifyLifetime = time.Hour
	}
	return &AuthService{
		cfg:     cfg,
		revoker: revoker,
		now:     time.Now,
	}, nil
}

func (s *AuthService) AccessLifetime() time.Duration {
	return s.cfg.AccessLifetime
}

func (s *AuthService) registered(user *model.User, audience string, lifetime time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(user.ID, 10),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

func subjectID(claims jwt.RegisteredClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// IssueAccessToken signs a bearer token for user.
func (s *AuthService) IssueAccessToken(user *model.User) (string, error) {
	return s.sign(AccessClaims{RegisteredClaims: s.registered(user, accessAudience, s.cfg.AccessLifetime)})
}

// ParseAccessToken checks signature, audience and expiry of an access token.
func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, accessAudience); err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate resolves a bearer token to its user. It fails with
// ErrInvalidToken for bad, expired, revoked or orphaned tokens and with
// ErrInactiveUser when the account is disabled.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, tokenString)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	id, err := subjectID(claims.RegisteredClaims)
	if err != nil {
		return nil, err
	}
	user, err := model.GetUserById(id, "en")
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return user, ErrInactiveUser
	}
	return user, nil
}

// Logout revokes tokenString for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.revoker == nil {
		return nil
	}
	claims, err := s.ParseAccessToken(tokenString)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	return s.revoker.Revoke(ctx, tokenString, ttl)
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:])
}

// IssueResetToken signs a password reset token bound to the current password
// hash, so it stops working once the password changes.
func (s *AuthService) IssueResetToken(user *model.User) (string, error) {
	return s.sign(ResetClaims{
		PasswordFingerprint: passwordFingerprint(user.Password),
		RegisteredClaims:    s.registered(user, resetAudience, s.cfg.ResetLifetime),
	})
}

func (s *AuthService) ParseResetToken(tokenString string) (int64, string, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims, resetAudience); err != nil {
		return 0, "", err
	}
	id, err := subjectID(claims.RegisteredClaims)
	if err != nil {
		return 0, "", err
	}
	return id, claims.PasswordFingerprint, nil
}

func (s *AuthService) IssueVerifyToken(user *model.User) (string, error) {
	return s.sign(VerifyClaims{
		Email:            user.Email,
		RegisteredClaims: s.registered(user, verifyAudience, s.cfg.VerifyLifetime),
	})
}

func (s *AuthService) ParseVerifyToken(tokenString string) (int64, string, error) {
	claims := &VerifyClaims{}
	if err := s.parse(tokenString, claims, verifyAudience); err != nil {
		return 0, "", err
	}
	id, err := subjectID(claims.RegisteredClaims)
	if err != nil {
		return 0, "", err
	}
	return id, claims.Email, nil
}

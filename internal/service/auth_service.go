package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultUsername = "finance"
	DefaultPassword = "1234"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid username or password")
	ErrNotLoggedIn        = apperr.Unauthorized("not logged in, run `inventory login` first")
	ErrSessionExpired     = apperr.Unauthorized("session expired, please log in again")
)

// Verifier checks a single username/password pair.
type Verifier interface {
	Verify(user, pass string) bool
}

type BcryptVerifier struct {
	username string
	hash     []byte
}

// NewBcryptVerifier accepts username with the bcrypt passwordHash. An empty
// hash falls back to DefaultPassword, hashed here.
func NewBcryptVerifier(username, passwordHash string) (*BcryptVerifier, error) {
	if passwordHash == "" {
		h, err := HashPassword(DefaultPassword)
		if err != nil {
			return nil, err
		}
		passwordHash = h
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("auth.password_hash is not a bcrypt hash: %w", err)
	}
	return &BcryptVerifier{username: username, hash: []byte(passwordHash)}, nil
}

func (v *BcryptVerifier) Verify(user, pass string) bool {
	if strings.TrimSpace(user) != v.username {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(pass)) == nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Session is the operator currently logged in to this data directory.
type Session struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService interface {
	Login(user, pass string) (*Session, error)
	Logout() error
	Current() (*Session, error)
}

type authService struct {
	verifier  Verifier
	secret    []byte
	ttl       time.Duration
	tokenPath string
	log       *zap.Logger
	now       func() time.Time
}

func NewAuthService(verifier Verifier, secret []byte, ttl time.Duration, tokenPath string, log *zap.Logger) AuthService {
	return &authService{
		verifier:  verifier,
		secret:    secret,
		ttl:       ttl,
		tokenPath: tokenPath,
		log:       log,
		now:       time.Now,
	}
}

func (s *authService) Login(user, pass string) (*Session, error) {
	user = strings.TrimSpace(user)

	// 1. Verify credentials
	if !s.verifier.Verify(user, pass) {
		s.log.Warn("login rejected", zap.String("user", user))
		return nil, ErrInvalidCredentials
	}

	// 2. Sign session token
	now := s.now()
	token, err := jwt.GenerateToken(s.secret, user, s.ttl, now)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	// 3. Persist for later commands
	if err := os.WriteFile(s.tokenPath, []byte(token), 0o600); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info("login", zap.String("user", user))
	return &Session{Username: user, IssuedAt: now, ExpiresAt: now.Add(s.ttl)}, nil
}

func (s *authService) Logout() error {
	err := os.Remove(s.tokenPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *authService) Current() (*Session, error) {
	raw, err := os.ReadFile(s.tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	claims, err := jwt.ValidateToken(s.secret, strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, ErrSessionExpired
	}

	sess := &Session{Username: claims.Subject}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// LoadOrCreateSecret reads the session signing key at path, generating and
// saving a random one on first use.
func LoadOrCreateSecret(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		if key := strings.TrimSpace(string(raw)); key != "" {
			return []byte(key), nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read session key: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	key := hex.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(key), 0o600); err != nil {
		return nil, fmt.Errorf("save session key: %w", err)
	}
	return []byte(key), nil
}

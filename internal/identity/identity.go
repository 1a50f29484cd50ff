// MediaMatrix - Personal Media Discovery and Recommendation Aggregation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamatrix

// Package identity manages accounts and session tokens.
//
// The owner key is the lower-cased account email. It is an explicit argument
// to every store and aggregator call; nothing in the pipeline reads an
// ambient "current user". Accounts live in the same Badger instance as the
// event logs, under their own key prefix.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/mediamatrix/internal/config"
	"github.com/tomtom215/mediamatrix/internal/logging"
	"github.com/tomtom215/mediamatrix/internal/store"
)

// Sentinel errors for identity operations.
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password too short")
)

// minPasswordLength guards against obviously unusable credentials; real
// password policy is the operator's problem.
const minPasswordLength = 8

// accountKeyPrefix namespaces account records inside the shared Badger
// instance, away from the "log/" event documents.
const accountKeyPrefix = "account/"

// NormalizeKey lower-cases an email into the canonical owner key. Must stay
// aligned with the store's owner key normalization.
func NormalizeKey(email string) string {
	return store.NormalizeOwnerKey(email)
}

// Claims is the JWT payload for a session token.
type Claims struct {
	OwnerKey string `json:"ownerKey"`
	jwt.RegisteredClaims
}

type accountRecord struct {
	PasswordHash []byte `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// AuthListener receives auth-state transitions: ownerKey with
// authenticated=true on login/registration, authenticated=false on logout.
type AuthListener func(ownerKey string, authenticated bool)

// Service implements account registration, login and token verification.
type Service struct {
	db     *badger.DB
	logs   store.EventStore
	secret []byte
	ttl    time.Duration

	mu           sync.Mutex
	listeners    map[int]AuthListener
	nextListener int
}

// New creates the identity service. The Badger instance is shared with the
// event log store; logs is used to provision the category logs at
// registration time.
func New(db *badger.DB, logs store.EventStore, cfg *config.SecurityConfig) *Service {
	ttl := cfg.SessionTimeout
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		db:        db,
		logs:      logs,
		secret:    []byte(cfg.JWTSecret),
		ttl:       ttl,
		listeners: make(map[int]AuthListener),
	}
}

// Register creates an account and provisions the per-category event logs.
// Returns ErrAccountExists for a duplicate email.
func (s *Service) Register(ctx context.Context, email, password string) error {
	ownerKey := NormalizeKey(email)
	if ownerKey == "" || !strings.Contains(ownerKey, "@") {
		return fmt.Errorf("%w: malformed email", ErrInvalidCredentials)
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	record := accountRecord{
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}

	key := []byte(accountKeyPrefix + ownerKey)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAccountExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check account: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if err := s.logs.Provision(ctx, ownerKey); err != nil {
		// The account exists; logs will be created lazily on first append.
		logging.Error().Err(err).Str("owner", ownerKey).Msg("provisioning category logs failed")
	}

	logging.Info().Str("owner", ownerKey).Msg("account registered")
	s.notify(ownerKey, true)
	return nil
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ownerKey := NormalizeKey(email)
	if ownerKey == "" {
		return "", ErrInvalidCredentials
	}

	var record accountRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(accountKeyPrefix + ownerKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrInvalidCredentials
			}
			return fmt.Errorf("read account: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword(record.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ownerKey)
	if err != nil {
		return "", err
	}

	logging.Info().Str("owner", ownerKey).Msg("login succeeded")
	s.notify(ownerKey, true)
	return token, nil
}

// VerifyToken validates a session token and returns its owner key.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.OwnerKey == "" {
		return "", ErrInvalidToken
	}
	return claims.OwnerKey, nil
}

// OnAuthChange registers a listener for auth-state transitions. The returned
// CancelFunc removes the listener; it is safe to call more than once.
func (s *Service) OnAuthChange(fn AuthListener) store.CancelFunc {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Logout notifies listeners that the owner's session ended. Tokens are
// stateless; nothing is revoked server-side before expiry.
func (s *Service) Logout(ownerKey string) {
	s.notify(NormalizeKey(ownerKey), false)
}

func (s *Service) issueToken(ownerKey string) (string, error) {
	now := time.Now()
	claims := Claims{
		OwnerKey: ownerKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "mediamatrix",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) notify(ownerKey string, authenticated bool) {
	s.mu.Lock()
	listeners := make([]AuthListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ownerKey, authenticated)
	}
}

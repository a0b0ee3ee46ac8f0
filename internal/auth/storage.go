// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"inkwell/cli/internal/gateway"
	"inkwell/cli/internal/keychain"
)

// Store is the session backed by the OS keychain. It implements
// gateway.Session, so the gateway reads the credential through it on every
// request and clears it on 401.
type Store struct {
	km  *keychain.Manager
	log *zap.Logger
}

var _ gateway.Session = (*Store)(nil)

// NewStore creates a Store over km.
func NewStore(km *keychain.Manager, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{km: km, log: log}
}

// AccessToken implements gateway.Session. Read failures are logged and
// treated as signed out so the request goes out unauthenticated.
func (s *Store) AccessToken() string {
	tok, err := s.km.LoadAuthToken()
	if err != nil {
		if !errors.Is(err, keychain.ErrNotFound) {
			s.log.Warn("could not read stored credential", zap.Error(err))
		}
		return ""
	}
	return tok
}

// Expire implements gateway.Session by removing the identity and credential.
func (s *Store) Expire() error {
	return s.km.ClearSession()
}

// Save persists a freshly issued credential together with its identity.
func (s *Store) Save(token string, user User) error {
	if token == "" {
		return errors.New("empty access token")
	}
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.km.SaveSession(token, b)
}

// User returns the stored identity. ok is false when nobody is signed in.
func (s *Store) User() (User, bool, error) {
	var u User
	data, err := s.km.LoadAdminUser()
	if errors.Is(err, keychain.ErrNotFound) {
		return u, false, nil
	}
	if err != nil {
		return u, false, err
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return u, false, fmt.Errorf("decode stored identity: %w", err)
	}
	return u, true, nil
}

// SignedIn reports whether a credential is stored.
func (s *Store) SignedIn() bool {
	return s.AccessToken() != ""
}

// Clear removes the local session without contacting the API.
func (s *Store) Clear() error {
	return s.km.ClearSession()
}

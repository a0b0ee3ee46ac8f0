// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"inkwell/cli/internal/config"
	"inkwell/cli/internal/gateway"
)

// ErrNotSignedIn is returned by calls that need a stored session.
var ErrNotSignedIn = errors.New("not signed in")

// Service centralizes authentication operations against the CMS API and the
// local session store.
type Service struct {
	// public sends credential-free calls such as login
	public *gateway.Client
	// api carries the stored session
	api       *gateway.Client
	store     *Store
	endpoints config.Endpoints
	log       *zap.Logger
}

// NewService constructs an auth Service. public must not carry a session.
func NewService(public, api *gateway.Client, store *Store, endpoints config.Endpoints, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{public: public, api: api, store: store, endpoints: endpoints, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a credential and stores it with
// the returned identity.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, errors.New("email and password are required")
	}

	resp, err := s.public.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   s.endpoints.Login,
		Body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return User{}, err
	}
	var raw map[string]json.RawMessage
	if err := resp.Decode(&raw); err != nil {
		return User{}, err
	}

	token := extractAccessToken(raw)
	if token == "" {
		token = bearerFromHeader(resp.Header)
	}
	if token == "" {
		return User{}, errors.New("no access token in login response")
	}
	user := extractUser(raw)
	if user.Email == "" {
		user.Email = email
	}

	if err := s.store.Save(token, user); err != nil {
		return User{}, fmt.Errorf("store session: %w", err)
	}
	s.log.Debug("signed in", zap.String("email", user.Email))
	return user, nil
}

// Me asks the API for the current identity. When the API cannot be reached
// the stored identity is returned instead; a 401 has already cleared it.
func (s *Service) Me(ctx context.Context) (User, error) {
	if !s.store.SignedIn() {
		return User{}, ErrNotSignedIn
	}

	var raw map[string]json.RawMessage
	err := s.api.Get(ctx, s.endpoints.Me, nil, &raw)
	if err == nil {
		u := extractUser(raw)
		if stored, ok, _ := s.store.User(); ok && u.Email == "" {
			u = stored
		}
		return u, nil
	}
	if gateway.IsNetwork(err) {
		if u, ok, serr := s.store.User(); serr == nil && ok {
			s.log.Debug("API unreachable, using stored identity", zap.Error(err))
			return u, nil
		}
	}
	return User{}, err
}

// Logout invalidates the credential remotely (best effort) and clears the
// local session regardless of the remote outcome.
func (s *Service) Logout(ctx context.Context) error {
	if s.store.SignedIn() && s.endpoints.Logout != "" {
		if err := s.api.Post(ctx, s.endpoints.Logout, nil, nil); err != nil && !gateway.IsUnauthorized(err) {
			s.log.Debug("remote logout failed", zap.Error(err))
		}
	}
	return s.store.Clear()
}

// extractAccessToken accepts the token under the field names the API has
// used: token, access_token, accessToken, or nested under session.
func extractAccessToken(raw map[string]json.RawMessage) string {
	for _, key := range []string{"token", "access_token", "accessToken"} {
		var s string
		if v, ok := raw[key]; ok && json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	if v, ok := raw["session"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(v, &nested) == nil {
			return extractAccessToken(nested)
		}
	}
	return ""
}

// extractUser reads the identity from a "user" object, or from the top
// level when the response is the user itself.
func extractUser(raw map[string]json.RawMessage) User {
	var u User
	if v, ok := raw["user"]; ok && json.Unmarshal(v, &u) == nil {
		return u
	}
	if v, ok := raw["admin"]; ok && json.Unmarshal(v, &u) == nil {
		return u
	}
	for key, dst := range map[string]*string{"id": &u.ID, "email": &u.Email, "name": &u.Name, "role": &u.Role} {
		if v, ok := raw[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	return u
}

// bearerFromHeader reads a token the API returned as "Authorization: Bearer <token>".
func bearerFromHeader(h http.Header) string {
	v := strings.TrimSpace(h.Get("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:6], "bearer") {
		return ""
	}
	return strings.TrimSpace(v[6:])
}

// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import "context"

// Session supplies the bearer credential for outgoing requests and is torn
// down when the API rejects it. Implementations are passed to the Client
// explicitly; the Client never reads credential storage on its own.
type Session interface {
	// AccessToken returns the stored credential, or "" when signed out.
	AccessToken() string
	// Expire removes the stored credential and session identity.
	Expire() error
}

// SessionExpired is delivered after a 401 once the session has been torn
// down. RedirectTo is the login location the application should route to.
type SessionExpired struct {
	RedirectTo string
	Method     string
	Path       string
	StatusCode int
	// ClearErr is set when the session could not be fully cleared.
	ClearErr error
}

// SessionExpiredHandler reacts to an expired session, typically by routing
// the user to RedirectTo. It runs synchronously before the failing call returns.
type SessionExpiredHandler func(ctx context.Context, ev SessionExpired)

// StaticSession is a fixed credential such as a service key. Expire is a no-op
// because there is nothing stored to clear.
type StaticSession string

// AccessToken implements Session.
func (s StaticSession) AccessToken() string { return string(s) }

// Expire implements Session.
func (s StaticSession) Expire() error { return nil }

// Anonymous is a session without a credential.
var Anonymous Session = StaticSession("")

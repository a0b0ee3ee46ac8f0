// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"path/filepath"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"inkwell/cli/internal/auth"
	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/gateway"
	"inkwell/cli/internal/keychain"
	"inkwell/cli/internal/xdg"
)

// openKeychain opens the credential store selected by the keyring config.
func openKeychain() (*keychain.Manager, error) {
	dir := cfg.Keyring.FileDir
	if dir == "" {
		state, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(state, "keyring")
	}
	km, err := keychain.Open(keychain.Options{
		Backend:      cfg.Keyring.Backend,
		FileDir:      dir,
		FilePassword: cfg.Keyring.Password,
	})
	if err != nil {
		pterm.Println("❌ Secure storage is not available on this system.")
		pterm.Println("   Set INKWELL_KEYRING_BACKEND=file and INKWELL_KEYRING_PASSWORD to use an encrypted file instead.")
		return nil, err
	}
	return km, nil
}

func openSessionStore() (*auth.Store, error) {
	km, err := openKeychain()
	if err != nil {
		return nil, err
	}
	return auth.NewStore(km, logger.Named("session")), nil
}

// onSessionExpired turns the gateway's expiry event into a sign-in notice.
func onSessionExpired(_ context.Context, ev gateway.SessionExpired) {
	logger.Debug("session expired",
		zap.String("redirect", ev.RedirectTo),
		zap.String("method", ev.Method),
		zap.String("path", ev.Path))
	if ev.ClearErr != nil {
		logger.Warn("stored session could not be fully removed", zap.Error(ev.ClearErr))
	}
	pterm.Warning.Println("Your session has expired and was signed out.")
	pterm.Println("   Please run: inkwell login")
}

func gatewayOptions() []gateway.Option {
	return []gateway.Option{
		gateway.WithLogger(logger.Named("gateway")),
		gateway.WithUserAgent("inkwell-cli/" + Version),
		gateway.WithLoginPath(cfg.LoginPath),
	}
}

// newAPIClient returns the gateway that carries the admin session.
func newAPIClient(store *auth.Store) *gateway.Client {
	opts := append(gatewayOptions(), gateway.WithSessionExpiredHandler(onSessionExpired))
	return gateway.New(cfg.APIBaseURL, store, opts...)
}

func newAuthService(store *auth.Store) *auth.Service {
	public := gateway.New(cfg.APIBaseURL, gateway.Anonymous, gatewayOptions()...)
	return auth.NewService(public, newAPIClient(store), store, cfg.Endpoints, logger.Named("auth"))
}

// requireSession opens the store and fails with a sign-in hint when empty.
func requireSession() (*auth.Store, error) {
	store, err := openSessionStore()
	if err != nil {
		return nil, err
	}
	if !store.SignedIn() {
		printNotLoggedIn()
		return nil, inkerrors.New(inkerrors.NotSignedIn, "not signed in")
	}
	return store, nil
}

func printNotLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'inkwell login' to get started.")
}

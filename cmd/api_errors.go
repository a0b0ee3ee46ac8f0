// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"

	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/gateway"
	"inkwell/cli/internal/httperrors"
)

// apiError maps a gateway failure to what the command returns. A 401 was
// already announced by the expiry handler, so only its kind is kept.
func apiError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case gateway.IsUnauthorized(err):
		return inkerrors.Wrap(inkerrors.SessionExpired, "session expired", err)
	case errors.Is(err, context.Canceled):
		return err
	case gateway.IsNetwork(err) || gateway.StatusCode(err) != 0 || errors.Is(err, context.DeadlineExceeded):
		return httperrors.Present(err, action, cfg.APIBaseURL)
	default:
		return err
	}
}

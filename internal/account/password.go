package account

import (
	"context"
	"errors"
)

// ErrPasswordMismatch is returned before any request goes out when the two
// typed passwords differ. The text is shown to the user as-is.
var ErrPasswordMismatch = errors.New("Passwords do not match.")

// RequestPasswordReset asks the backend to mail a reset link.
func (s *ProfileService) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.client.Post(ctx, "/auth/password-reset/", body, nil)
}

// ConfirmPasswordReset completes a reset with the uid and token from the
// mailed link. The two passwords are compared locally first; a mismatch
// issues no network call.
func (s *ProfileService) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	body := map[string]string{
		"uid":          uid,
		"token":        token,
		"new_password": newPassword,
	}
	return s.client.Post(ctx, "/auth/password-reset-confirm/", body, nil)
}

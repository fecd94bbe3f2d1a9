package application

import "errors"

// Failure taxonomy for the identity lifecycle. Handlers translate these
// to HTTP statuses; nothing below this package leaks raw storage faults.
var (
	// ErrMissingFields and ErrPasswordMismatch are validation failures;
	// the caller can fix the input and retry.
	ErrMissingFields    = errors.New("required fields are missing")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Conflicts on the two unique account keys, distinguished so the
	// client can point at the right field.
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidOTP covers bad, expired, and already-consumed codes.
	ErrInvalidOTP = errors.New("invalid or expired OTP")

	// ErrInvalidCredentials is returned both for unknown accounts and
	// wrong passwords so login cannot be used to enumerate emails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailNotVerified = errors.New("email is not verified")
	ErrUserNotFound     = errors.New("user not found")

	// ErrVerificationSend: the account exists but the OTP email could
	// not be handed to the notifier.
	ErrVerificationSend = errors.New("failed to send verification email")
)

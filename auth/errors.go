package auth

import "errors"

// Provider error codes. They mirror the codes the previous identity
// provider emitted so the message table stays familiar. CodeUserDisabled is
// reserved: nothing disables accounts yet, but clients already handle the
// message.
const (
	CodeInvalidEmail    = "auth/invalid-email"
	CodeUserNotFound    = "auth/user-not-found"
	CodeWrongPassword   = "auth/wrong-password"
	CodeUserDisabled    = "auth/user-disabled"
	CodeTooManyRequests = "auth/too-many-requests"
	CodeEmailInUse      = "auth/email-already-in-use"
	CodeWeakPassword    = "auth/weak-password"
)

type Error struct {
	Code string
}

func (e *Error) Error() string {
	return Message(e)
}

func IsAuthError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

var messages = map[string]string{
	CodeInvalidEmail:    "Invalid email address.",
	CodeUserNotFound:    "No account found with this email.",
	CodeWrongPassword:   "Incorrect password. Please try again.",
	CodeUserDisabled:    "This account has been disabled.",
	CodeTooManyRequests: "Too many failed attempts. Please try again later.",
	CodeEmailInUse:      "This email is already registered. Please try logging in instead.",
	CodeWeakPassword:    "Password should be at least 6 characters.",
}

// Message maps a provider error to a human-readable string. Unrecognized
// errors fall through to a generic message so internals never leak to the
// user.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if msg, ok := messages[ae.Code]; ok {
			return msg
		}
	}
	return "An unexpected error occurred. Please try again."
}

// Package auth implements the credential and token lifecycle: account
// registration, login, password reset, email verification and session
// resolution.  This file defines the error taxonomy shared between the
// service, the store implementations and the HTTP layer.  These
// sentinel values are deliberately coarse: callers learn which class of
// failure occurred, never which sub-condition caused it, so responses
// cannot be used to enumerate accounts or probe tokens.
package auth

import "errors"

// ErrEmailExists is returned by Register (and by UserStore.Create) when
// the email already belongs to an account.  Handlers translate this
// into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrRoleNotAllowed is returned by Register when the requested role may
// not be self-assigned.
var ErrRoleNotAllowed = errors.New("role not allowed")

// ErrInvalidCredentials is returned by Login for an unknown email and
// for a wrong password alike.  Handlers translate this into an HTTP
// 401 response with a single stable message.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotAuthorized is returned by CurrentIdentity for every session
// failure: missing, malformed, tampered or expired token, and for a
// token whose user no longer exists.
var ErrNotAuthorized = errors.New("not authorized")

// ErrResetTokenInvalid is returned by ResetPassword when the presented
// token matches no pending, unexpired reset request.  A consumed token
// fails the same way as a never-issued one.
var ErrResetTokenInvalid = errors.New("invalid or expired token")

// ErrVerifyTokenInvalid is returned by VerifyEmail when the presented
// token matches no pending verification.
var ErrVerifyTokenInvalid = errors.New("invalid token")

// ErrUserNotFound is returned by profile operations when the target
// record is gone.
var ErrUserNotFound = errors.New("user not found")

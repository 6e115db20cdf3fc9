package auth

import (
    "context"
    "time"

    "github.com/campuslink/campuslink/internal/model"
)

// UserStore is the persistence contract the credential service needs.
// Implementations must treat emails as case-insensitive (the service
// always passes them lowercased) and keep per-record writes atomic: a
// concurrent reader never observes a half-applied update.
//
// Lookups return (nil, nil) when no record matches; errors are reserved
// for infrastructure failures.
type UserStore interface {
    // Create inserts a new user record.  It fails with ErrEmailExists
    // when the email is already taken; the store's uniqueness
    // constraint is the enforcement point, so two concurrent creates
    // for the same email yield exactly one success.
    Create(ctx context.Context, u *model.User) error

    // GetByEmail fetches a user by lowercased email.  The password
    // hash is blanked unless withPasswordHash is set; only the login
    // path ever asks for it.
    GetByEmail(ctx context.Context, email string, withPasswordHash bool) (*model.User, error)

    // GetByID fetches a user by id, password hash blanked.
    GetByID(ctx context.Context, id string) (*model.User, error)

    // UpdateProfile rewrites the free-form profile fields and returns
    // the updated record, or (nil, nil) if the user is gone.
    UpdateProfile(ctx context.Context, id, displayName, bio string) (*model.User, error)

    // SetResetDigest records a pending password reset: digest and
    // expiry are written together, replacing any previous pending
    // reset for the user.
    SetResetDigest(ctx context.Context, id, digest string, expiresAt time.Time) error

    // RedeemResetDigest atomically rewrites the password hash and
    // clears the reset fields for the record whose pending digest
    // matches and whose expiry is after now.  The condition is checked
    // at write time, so of two concurrent redemptions at most one
    // reports true.
    RedeemResetDigest(ctx context.Context, digest, newPasswordHash string, now time.Time) (bool, error)

    // RedeemVerifyDigest atomically marks the matching record's email
    // as verified and clears the verification digest.  Same
    // at-most-once semantics as RedeemResetDigest.
    RedeemVerifyDigest(ctx context.Context, digest string) (bool, error)

    // List returns all user records, password hashes blanked, newest
    // first.
    List(ctx context.Context) ([]*model.User, error)
}

// Notifier delivers raw one-time tokens to the account owner through an
// out-of-band channel (mail, message queue).  Delivery failures must
// not fail the originating request; the service logs and moves on.
type Notifier interface {
    VerificationRequested(ctx context.Context, email, displayName, rawToken string) error
    PasswordResetRequested(ctx context.Context, email, displayName, rawToken string) error
}

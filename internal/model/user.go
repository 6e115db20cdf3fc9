package model

import "time"

// Role classifies what a user is allowed to do.  Roles are stored as
// strings in the `users` table but modelled as a closed type here so
// that role checks are exhaustive at the points that matter (route
// guards, registration validation).
type Role string

const (
    RoleStudent Role = "student" // default role for every new account
    RoleFounder Role = "founder" // project founders; may manage their own projects
    RoleAdmin   Role = "admin"   // platform administrators; never self-assignable
)

// ParseRole maps a user-supplied string onto a known Role.  The second
// return value reports whether the input named a real role.  Admin is a
// valid role value here; whether a caller may *request* it is decided
// by the registration flow, not by parsing.
func ParseRole(s string) (Role, bool) {
    switch Role(s) {
    case RoleStudent, RoleFounder, RoleAdmin:
        return Role(s), true
    }
    return "", false
}

// User represents an account record as stored in the `users` table.
// Secret-bearing fields (PasswordHash, the token digests) never leave
// the service layer; handlers respond with the Profile projection.
//
// Fields:
//  ID              – opaque UUID string, assigned at registration, immutable.
//  Email           – unique, stored lowercased.
//  PasswordHash    – bcrypt hash of the current password.
//  Role            – account role (student/founder/admin).
//  DisplayName     – free-form profile name.
//  Bio             – free-form profile text.
//  IsEmailVerified – set once the verification token is redeemed.
//  VerifyDigest    – SHA-256 digest of the outstanding email-verification
//                    token; empty once verified.
//  ResetDigest     – SHA-256 digest of the outstanding password-reset
//                    token; empty when no reset is pending.
//  ResetExpiresAt  – expiry of the pending reset token; set and cleared
//                    together with ResetDigest.
//  CreatedAt       – timestamp of registration.
//  UpdatedAt       – timestamp of last mutation.
type User struct {
    ID              string
    Email           string
    PasswordHash    string
    Role            Role
    DisplayName     string
    Bio             string
    IsEmailVerified bool
    VerifyDigest    string
    ResetDigest     string
    ResetExpiresAt  *time.Time
    CreatedAt       time.Time
    UpdatedAt       time.Time
}

// Profile is the subset of a User that is safe to return to any caller
// holding a valid session: no password hash, no token digests.
type Profile struct {
    ID              string    `json:"id"`
    Email           string    `json:"email"`
    Role            Role      `json:"role"`
    DisplayName     string    `json:"display_name"`
    Bio             string    `json:"bio"`
    IsEmailVerified bool      `json:"is_email_verified"`
    CreatedAt       time.Time `json:"created_at"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
    return Profile{
        ID:              u.ID,
        Email:           u.Email,
        Role:            u.Role,
        DisplayName:     u.DisplayName,
        Bio:             u.Bio,
        IsEmailVerified: u.IsEmailVerified,
        CreatedAt:       u.CreatedAt,
    }
}

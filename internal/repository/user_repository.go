// Package repository implements the persistence contracts of the auth
// service on MySQL.  Queries use the database/sql interfaces directly;
// token redemption is a single conditional UPDATE so the match check
// and the mutation are one atomic statement.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/model"
)

const userColumns = "id,email,password_hash,role,display_name,bio,is_email_verified,verify_digest,reset_digest,reset_expires_at,created_at,updated_at"

// UserRepo stores user records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user record.  The unique index on users.email is the
// enforcement point for one-account-per-email; a duplicate-key failure
// (MySQL error 1062) surfaces as auth.ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, role, display_name, bio, is_email_verified, verify_digest, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.DisplayName, u.Bio, u.IsEmailVerified, nullString(u.VerifyDigest), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return auth.ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.  The password hash is
// blanked unless withPasswordHash is set.
func (r *UserRepo) GetByEmail(ctx context.Context, email string, withPasswordHash bool) (*model.User, error) {
	u, err := r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	if err != nil || u == nil {
		return nil, err
	}
	if !withPasswordHash {
		u.PasswordHash = ""
	}
	return u, nil
}

// GetByID fetches a user by id, password hash blanked.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if err != nil || u == nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// UpdateProfile rewrites the free-form profile fields and returns the
// updated record, or nil if the user no longer exists.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, displayName, bio string) (*model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET display_name=?, bio=?, updated_at=? WHERE id=?",
		displayName, bio, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	// Re-read rather than trusting RowsAffected: an UPDATE that matches
	// the row but changes nothing also reports zero affected rows.
	return r.GetByID(ctx, id)
}

// SetResetDigest records a pending password reset.  Digest and expiry
// are written in one statement so they are never observed apart.
func (r *UserRepo) SetResetDigest(ctx context.Context, id, digest string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_digest=?, reset_expires_at=?, updated_at=? WHERE id=?",
		digest, expiresAt, time.Now().UTC(), id)
	return err
}

// RedeemResetDigest rewrites the password and clears the reset fields
// for the record whose pending digest matches and has not expired.  The
// WHERE clause re-checks the digest at write time, so a token redeemed
// concurrently by two requests succeeds for at most one of them.
func (r *UserRepo) RedeemResetDigest(ctx context.Context, digest, newPasswordHash string, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_digest=NULL, reset_expires_at=NULL, updated_at=? WHERE reset_digest=? AND reset_expires_at > ?",
		newPasswordHash, now, digest, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RedeemVerifyDigest marks the matching record's email as verified and
// clears the verification digest, with the same at-most-once semantics
// as RedeemResetDigest.
func (r *UserRepo) RedeemVerifyDigest(ctx context.Context, digest string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_email_verified=1, verify_digest=NULL, updated_at=? WHERE verify_digest=?",
		time.Now().UTC(), digest)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List returns all users, newest first, password hashes blanked.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = ""
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u            model.User
		role         string
		verifyDigest sql.NullString
		resetDigest  sql.NullString
		resetExpires sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.DisplayName, &u.Bio,
		&u.IsEmailVerified, &verifyDigest, &resetDigest, &resetExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.VerifyDigest = verifyDigest.String
	u.ResetDigest = resetDigest.String
	if resetExpires.Valid {
		t := resetExpires.Time
		u.ResetExpiresAt = &t
	}
	return &u, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

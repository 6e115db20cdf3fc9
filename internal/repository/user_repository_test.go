package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/model"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func userRows(u model.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "display_name", "bio",
		"is_email_verified", "verify_digest", "reset_digest", "reset_expires_at",
		"created_at", "updated_at",
	})
	var verify, reset any
	if u.VerifyDigest != "" {
		verify = u.VerifyDigest
	}
	if u.ResetDigest != "" {
		reset = u.ResetDigest
	}
	var resetExp any
	if u.ResetExpiresAt != nil {
		resetExp = *u.ResetExpiresAt
	}
	rows.AddRow(u.ID, u.Email, u.PasswordHash, string(u.Role), u.DisplayName, u.Bio,
		u.IsEmailVerified, verify, reset, resetExp, u.CreatedAt, u.UpdatedAt)
	return rows
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"))

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &model.User{
		ID: "id-1", Email: "alice@example.com", PasswordHash: "h",
		Role: model.RoleStudent, CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, auth.ErrEmailExists) {
		t.Fatalf("expected auth.ErrEmailExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &model.User{
		ID: "id-1", Email: "alice@example.com", PasswordHash: "h",
		Role: model.RoleStudent, VerifyDigest: "d", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "nobody@example.com", false)
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got %+v", u)
	}
}

func TestGetByEmail_MasksPasswordHash(t *testing.T) {
	repo, mock := newMockRepo(t)

	stored := model.User{
		ID: "id-1", Email: "alice@example.com", PasswordHash: "bcrypt-hash",
		Role: model.RoleStudent, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("alice@example.com").
		WillReturnRows(userRows(stored))

	u, err := repo.GetByEmail(context.Background(), "alice@example.com", false)
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash not masked: %q", u.PasswordHash)
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("alice@example.com").
		WillReturnRows(userRows(stored))

	u, err = repo.GetByEmail(context.Background(), "alice@example.com", true)
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.PasswordHash != "bcrypt-hash" {
		t.Fatalf("password hash missing when requested: %q", u.PasswordHash)
	}
}

func TestRedeemResetDigest(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	// Matching digest: one row rewritten.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=?, reset_digest=NULL, reset_expires_at=NULL")).
		WithArgs("new-hash", now, "digest", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.RedeemResetDigest(context.Background(), "digest", "new-hash", now)
	if err != nil {
		t.Fatalf("RedeemResetDigest error: %v", err)
	}
	if !ok {
		t.Fatal("expected redemption to succeed")
	}

	// Consumed or expired digest: zero rows, no error.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=?, reset_digest=NULL, reset_expires_at=NULL")).
		WithArgs("new-hash", now, "digest", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.RedeemResetDigest(context.Background(), "digest", "new-hash", now)
	if err != nil {
		t.Fatalf("RedeemResetDigest error: %v", err)
	}
	if ok {
		t.Fatal("expected redemption to fail for a consumed digest")
	}
}

func TestRedeemVerifyDigest_NoMatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_email_verified=1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.RedeemVerifyDigest(context.Background(), "unknown-digest")
	if err != nil {
		t.Fatalf("RedeemVerifyDigest error: %v", err)
	}
	if ok {
		t.Fatal("expected no match for an unknown digest")
	}
}

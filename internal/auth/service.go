package auth

import (
    "context"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/campuslink/campuslink/internal/model"
    "github.com/campuslink/campuslink/internal/utils"
)

// Config carries the knobs the credential service needs.  The JWT
// secret is validated at process start by the config loader; an empty
// secret never reaches this struct.
type Config struct {
    JWTSecret     string
    SessionTTL    time.Duration // lifetime of issued session tokens
    ResetTokenTTL time.Duration // lifetime of password-reset tokens
    BcryptCost    int
}

// Session is the result of a successful registration or login: a signed
// bearer token plus the public view of the account it belongs to.
type Session struct {
    Token     string
    ExpiresAt time.Time
    User      *model.User
}

// Service orchestrates the credential lifecycle over a UserStore and a
// Notifier.  All state transitions on a user's security fields happen
// here; handlers only bind, validate shape, and map errors to status
// codes.
type Service struct {
    store  UserStore
    notify Notifier
    cfg    Config
}

func NewService(store UserStore, notify Notifier, cfg Config) *Service {
    return &Service{store: store, notify: notify, cfg: cfg}
}

// NormalizeEmail lowercases and trims an email address.  Every email
// entering the service goes through this so that lookups and the
// uniqueness constraint agree on case.
func NormalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and logs it in immediately.  The admin
// role can never be requested; an empty role defaults to student.  The
// raw email-verification token is handed to the notifier only — the
// store keeps its digest and the response carries just the session.
func (s *Service) Register(ctx context.Context, displayName, email, password string, role model.Role) (*Session, error) {
    switch role {
    case "":
        role = model.RoleStudent
    case model.RoleStudent, model.RoleFounder:
        // requestable
    default:
        return nil, ErrRoleNotAllowed
    }
    email = NormalizeEmail(email)

    hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
    if err != nil {
        return nil, fmt.Errorf("hash password: %w", err)
    }
    verifyToken, err := utils.NewOpaqueToken()
    if err != nil {
        return nil, fmt.Errorf("generate verification token: %w", err)
    }

    now := time.Now().UTC()
    u := &model.User{
        ID:           uuid.New().String(),
        Email:        email,
        PasswordHash: hash,
        Role:         role,
        DisplayName:  displayName,
        VerifyDigest: utils.DigestToken(verifyToken),
        CreatedAt:    now,
        UpdatedAt:    now,
    }
    if err := s.store.Create(ctx, u); err != nil {
        return nil, err
    }

    if err := s.notify.VerificationRequested(ctx, u.Email, u.DisplayName, verifyToken); err != nil {
        log.Printf("auth: verification notification for %s failed: %v", u.Email, err)
    }
    return s.newSession(u)
}

// Login verifies credentials and issues a fresh session.  An unknown
// email and a wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
    u, err := s.store.GetByEmail(ctx, NormalizeEmail(email), true)
    if err != nil {
        return nil, fmt.Errorf("lookup user: %w", err)
    }
    if u == nil || !utils.VerifyPassword(u.PasswordHash, password) {
        return nil, ErrInvalidCredentials
    }
    return s.newSession(u)
}

// CurrentIdentity resolves a bearer session token into the live user
// record.  Every failure mode — malformed token, bad signature, expiry,
// user deleted since issuance — collapses into ErrNotAuthorized.
func (s *Service) CurrentIdentity(ctx context.Context, rawToken string) (*model.User, error) {
    userID, err := utils.ParseSessionToken(s.cfg.JWTSecret, rawToken)
    if err != nil {
        return nil, ErrNotAuthorized
    }
    u, err := s.store.GetByID(ctx, userID)
    if err != nil {
        return nil, fmt.Errorf("lookup user: %w", err)
    }
    if u == nil {
        return nil, ErrNotAuthorized
    }
    return u, nil
}

// ForgotPassword starts a password reset.  When the email is unknown it
// does nothing and still succeeds, so the response cannot be used to
// enumerate accounts; the handler returns one generic message for both
// branches.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
    u, err := s.store.GetByEmail(ctx, NormalizeEmail(email), false)
    if err != nil {
        return fmt.Errorf("lookup user: %w", err)
    }
    if u == nil {
        return nil
    }
    token, err := utils.NewOpaqueToken()
    if err != nil {
        return fmt.Errorf("generate reset token: %w", err)
    }
    expiresAt := time.Now().UTC().Add(s.cfg.ResetTokenTTL)
    if err := s.store.SetResetDigest(ctx, u.ID, utils.DigestToken(token), expiresAt); err != nil {
        return fmt.Errorf("store reset digest: %w", err)
    }
    if err := s.notify.PasswordResetRequested(ctx, u.Email, u.DisplayName, token); err != nil {
        log.Printf("auth: reset notification for %s failed: %v", u.Email, err)
    }
    return nil
}

// ResetPassword redeems a reset token.  The store applies the digest
// and expiry check in the same write that rewrites the password, so a
// token is usable exactly once even under concurrent redemption.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
    hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
    if err != nil {
        return fmt.Errorf("hash password: %w", err)
    }
    ok, err := s.store.RedeemResetDigest(ctx, utils.DigestToken(rawToken), hash, time.Now().UTC())
    if err != nil {
        return fmt.Errorf("redeem reset token: %w", err)
    }
    if !ok {
        return ErrResetTokenInvalid
    }
    return nil
}

// VerifyEmail redeems an email-verification token.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
    ok, err := s.store.RedeemVerifyDigest(ctx, utils.DigestToken(rawToken))
    if err != nil {
        return fmt.Errorf("redeem verification token: %w", err)
    }
    if !ok {
        return ErrVerifyTokenInvalid
    }
    return nil
}

// UpdateProfile rewrites the caller's display name and bio.
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName, bio string) (*model.User, error) {
    u, err := s.store.UpdateProfile(ctx, userID, displayName, bio)
    if err != nil {
        return nil, fmt.Errorf("update profile: %w", err)
    }
    if u == nil {
        return nil, ErrUserNotFound
    }
    return u, nil
}

// ListUsers returns every account, for the admin surface.
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
    return s.store.List(ctx)
}

func (s *Service) newSession(u *model.User) (*Session, error) {
    tok, err := utils.NewSessionToken(s.cfg.JWTSecret, u.ID, s.cfg.SessionTTL)
    if err != nil {
        return nil, fmt.Errorf("issue session token: %w", err)
    }
    // Scrub secrets before the record leaves the service.
    u.PasswordHash = ""
    u.VerifyDigest = ""
    u.ResetDigest = ""
    return &Session{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}

// Package auth handles account registration, login, and session tokens.
//
// Every operation reports a typed Status. A timed-out password hash is a
// timeout, never a success: no user is created or returned unless the work
// actually finished.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"aurum-life/internal/model"
	"aurum-life/internal/store"
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so login failures do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

var ErrEmailTaken = errors.New("email already registered")

type Status string

const (
	StatusSuccess Status = "success"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Result is the outcome of an auth operation. User and Token are set only
// when Status is StatusSuccess; otherwise Err says what went wrong.
type Result struct {
	Status Status
	User   *model.User
	Token  string
	Err    error
}

func failure(st Status, err error) Result {
	return Result{Status: st, Err: err}
}

// Authenticator signs and verifies session tokens with a per-installation
// secret and owns the password-hashing cost.
type Authenticator struct {
	secret     []byte
	sessionTTL time.Duration
	hashCost   int
}

func New(dataDir string) (*Authenticator, error) {
	secret, err := loadOrInitSecretKey(dataDir)
	if err != nil {
		return nil, err
	}
	return &Authenticator{
		secret:     secret,
		sessionTTL: DefaultSessionTTL,
		hashCost:   bcrypt.DefaultCost,
	}, nil
}

// Register creates an account. Callers are responsible for saving db and
// appending the user.registered event on success.
func (a *Authenticator) Register(ctx context.Context, db *store.DB, email, password, name string) Result {
	if db == nil {
		return failure(StatusError, errors.New("missing db"))
	}
	email, err := model.NormalizeEmail(email)
	if err != nil {
		return failure(StatusError, err)
	}
	if err := model.ValidatePassword(password); err != nil {
		return failure(StatusError, err)
	}
	if err := model.ValidateName(name); err != nil {
		return failure(StatusError, err)
	}
	if _, ok := db.FindUserByEmail(email); ok {
		return failure(StatusError, ErrEmailTaken)
	}

	hash, st, err := a.hashPassword(ctx, password)
	if st != StatusSuccess {
		return failure(st, err)
	}

	now := time.Now().UTC()
	db.Users = append(db.Users, model.User{
		ID:           store.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Level:        1,
		CreatedAt:    now,
	})
	db.MarkDirty()
	u := &db.Users[len(db.Users)-1]

	token, err := a.NewSession(u.ID)
	if err != nil {
		return failure(StatusError, err)
	}
	return Result{Status: StatusSuccess, User: u, Token: token}
}

// Login verifies credentials and issues a session token.
func (a *Authenticator) Login(ctx context.Context, db *store.DB, email, password string) Result {
	if db == nil {
		return failure(StatusError, errors.New("missing db"))
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u, ok := db.FindUserByEmail(email)
	if !ok || u.PasswordHash == "" {
		return failure(StatusError, ErrInvalidCredentials)
	}

	st, err := a.comparePassword(ctx, u.PasswordHash, password)
	if st != StatusSuccess {
		return failure(st, err)
	}

	token, err := a.NewSession(u.ID)
	if err != nil {
		return failure(StatusError, err)
	}
	return Result{Status: StatusSuccess, User: u, Token: token}
}

// ChangePassword swaps the password after verifying the current one.
func (a *Authenticator) ChangePassword(ctx context.Context, db *store.DB, userID, current, next string) Result {
	if db == nil {
		return failure(StatusError, errors.New("missing db"))
	}
	u, ok := db.FindUser(strings.TrimSpace(userID))
	if !ok {
		return failure(StatusError, ErrInvalidCredentials)
	}
	if st, err := a.comparePassword(ctx, u.PasswordHash, current); st != StatusSuccess {
		return failure(st, err)
	}
	if err := model.ValidatePassword(next); err != nil {
		return failure(StatusError, err)
	}
	hash, st, err := a.hashPassword(ctx, next)
	if st != StatusSuccess {
		return failure(st, err)
	}
	u.PasswordHash = string(hash)
	db.MarkDirty()
	return Result{Status: StatusSuccess, User: u}
}

// SetPassword sets a first password on accounts created without one
// (local CLI users). Once a hash exists it behaves like ChangePassword.
func (a *Authenticator) SetPassword(ctx context.Context, db *store.DB, userID, current, next string) Result {
	if db == nil {
		return failure(StatusError, errors.New("missing db"))
	}
	u, ok := db.FindUser(strings.TrimSpace(userID))
	if !ok {
		return failure(StatusError, ErrInvalidCredentials)
	}
	if u.PasswordHash != "" {
		return a.ChangePassword(ctx, db, userID, current, next)
	}
	if err := model.ValidatePassword(next); err != nil {
		return failure(StatusError, err)
	}
	hash, st, err := a.hashPassword(ctx, next)
	if st != StatusSuccess {
		return failure(st, err)
	}
	u.PasswordHash = string(hash)
	db.MarkDirty()
	return Result{Status: StatusSuccess, User: u}
}

// NewSession issues a fresh session token for the user.
func (a *Authenticator) NewSession(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("missing user")
	}
	n, err := newNonce()
	if err != nil {
		return "", err
	}
	return signToken(a.secret, signedPayload{
		Typ: "session",
		Sub: userID,
		N:   n,
		Exp: time.Now().Add(a.sessionTTL).Unix(),
	})
}

// VerifySession resolves a session token to its user.
func (a *Authenticator) VerifySession(db *store.DB, token string) (*model.User, error) {
	sp, err := verifyToken(a.secret, token)
	if err != nil {
		return nil, err
	}
	if sp.Typ != "session" {
		return nil, errors.New("not a session token")
	}
	u, ok := db.FindUser(sp.Sub)
	if !ok {
		return nil, errors.New("unknown session user")
	}
	return u, nil
}

// Refresh exchanges a valid session token for a new one with a fresh
// expiry.
func (a *Authenticator) Refresh(db *store.DB, token string) (string, error) {
	u, err := a.VerifySession(db, token)
	if err != nil {
		return "", err
	}
	return a.NewSession(u.ID)
}

// hashPassword runs bcrypt off the calling goroutine so a context deadline
// turns into a timeout instead of a stall. The hash that finishes after
// cancellation is discarded.
func (a *Authenticator) hashPassword(ctx context.Context, password string) ([]byte, Status, error) {
	type outcome struct {
		hash []byte
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		h, err := bcrypt.GenerateFromPassword([]byte(password), a.hashCost)
		ch <- outcome{hash: h, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, StatusTimeout, ctx.Err()
	case o := <-ch:
		if o.err != nil {
			return nil, StatusError, o.err
		}
		return o.hash, StatusSuccess, nil
	}
}

func (a *Authenticator) comparePassword(ctx context.Context, hash, password string) (Status, error) {
	ch := make(chan error, 1)
	go func() {
		ch <- bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	}()
	select {
	case <-ctx.Done():
		return StatusTimeout, ctx.Err()
	case err := <-ch:
		if err != nil {
			return StatusError, ErrInvalidCredentials
		}
		return StatusSuccess, nil
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"car_market/internal/apperr"
	"car_market/internal/models"
)

// in-memory Users repository
type fakeUsers struct {
	byEmail map[string]*models.User
	byID    map[int]*models.User
	nextID  int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail: make(map[string]*models.User),
		byID:    make(map[int]*models.User),
		nextID:  1,
	}
}

func (f *fakeUsers) Create(ctx context.Context, name, email, passwordHash string) (int, error) {
	id := f.nextID
	f.nextID++
	u := &models.User{ID: id, Name: name, Email: email, PasswordHash: passwordHash}
	f.byEmail[email] = u
	f.byID[id] = u
	return id, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int) (*models.User, error) {
	return f.byID[id], nil
}

func newTestAuthService() (*AuthService, *fakeUsers) {
	users := newFakeUsers()
	svc := NewAuthService(users, AuthConfig{
		SigningKey: []byte("test-signing-key"),
		TokenTTL:   time.Hour,
	})
	return svc, users
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("error kind: got %v, want %v (err=%v)", got, kind, err)
	}
}

func TestAuthService_SignUpAndAuthenticate(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	u, token, err := svc.SignUp(ctx, "Uma", "Uma@Example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Email != "uma@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	got, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("resolved user %d, want %d", got.ID, u.ID)
	}
}

func TestAuthService_SignUpValidation(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	cases := []struct {
		name, uname, email, pass string
	}{
		{"empty name", "", "a@b.c", "p"},
		{"empty email", "Uma", "", "p"},
		{"empty password", "Uma", "a@b.c", " "},
		{"malformed email", "Uma", "not-an-email", "p"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.SignUp(ctx, tc.uname, tc.email, tc.pass)
			wantKind(t, err, apperr.KindValidation)
		})
	}
}

func TestAuthService_SignUpDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.SignUp(ctx, "Uma", "uma@example.com", "secret"); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	_, _, err := svc.SignUp(ctx, "Other", "uma@example.com", "other")
	wantKind(t, err, apperr.KindValidation)
}

func TestAuthService_LoginFailuresAreUniform(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.SignUp(ctx, "Uma", "uma@example.com", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, _, wrongPass := svc.Login(ctx, "uma@example.com", "wrong")
	wantKind(t, wrongPass, apperr.KindUnauthenticated)

	_, _, noUser := svc.Login(ctx, "ghost@example.com", "secret")
	wantKind(t, noUser, apperr.KindUnauthenticated)

	// the two failures must be indistinguishable
	if apperr.Message(wrongPass) != apperr.Message(noUser) {
		t.Fatalf("failure messages differ: %q vs %q", apperr.Message(wrongPass), apperr.Message(noUser))
	}
}

func TestAuthService_AuthenticateGarbageToken(t *testing.T) {
	svc, _ := newTestAuthService()
	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	wantKind(t, err, apperr.KindUnauthenticated)
}

func TestAuthService_LogoutRevokesPermanently(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, token, err := svc.SignUp(ctx, "Uma", "uma@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); err != nil {
		t.Fatalf("Authenticate before logout: %v", err)
	}

	svc.Logout(token)
	_, err = svc.Authenticate(ctx, token)
	wantKind(t, err, apperr.KindRevoked)

	// revoking twice behaves the same as once
	svc.Logout(token)
	_, err = svc.Authenticate(ctx, token)
	wantKind(t, err, apperr.KindRevoked)

	// other tokens are unaffected
	_, other, err := svc.Login(ctx, "uma@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Authenticate(ctx, other); err != nil {
		t.Fatalf("fresh token rejected after unrelated logout: %v", err)
	}
}

func TestAuthService_RevocationCheckedBeforeValidity(t *testing.T) {
	svc, _ := newTestAuthService()

	// even a token that would fail signature validation is reported as
	// revoked once logged out
	svc.Logout("opaque-revoked-token")
	_, err := svc.Authenticate(context.Background(), "opaque-revoked-token")
	wantKind(t, err, apperr.KindRevoked)
}

func TestAuthService_DeletedUserIsRejected(t *testing.T) {
	svc, users := newTestAuthService()
	ctx := context.Background()

	u, token, err := svc.SignUp(ctx, "Uma", "uma@example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	delete(users.byID, u.ID)
	delete(users.byEmail, u.Email)

	_, err = svc.Authenticate(ctx, token)
	wantKind(t, err, apperr.KindUnauthenticated)
}

func TestRevocationSet_PrunesExpiredEntries(t *testing.T) {
	set := newRevocationSet()

	set.add("stale", time.Now().Add(-time.Minute))
	if !set.contains("stale") {
		t.Fatal("freshly added token should be present")
	}

	// adding another token prunes entries past their expiry
	set.add("fresh", time.Now().Add(time.Hour))
	if set.contains("stale") {
		t.Fatal("expired entry should have been pruned")
	}
	if !set.contains("fresh") {
		t.Fatal("live entry should remain")
	}
}

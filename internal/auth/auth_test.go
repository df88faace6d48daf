package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.DB) {
	t.Helper()
	db := testutil.NewDB()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db.Users(), db.RoleStore(), NewTokens("test-secret", time.Hour), logger), db
}

func signupRequest(username string) model.SignupRequest {
	return model.SignupRequest{
		Username:        username,
		Email:           username + "@example.edu",
		Password:        "correct horse",
		PasswordConfirm: "correct horse",
		FirstName:       "ada",
		LastName:        "LOVELACE",
	}
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, signupRequest("ada"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.FirstName != "Ada" || u.LastName != "Lovelace" {
		t.Fatalf("names not capitalised: %q %q", u.FirstName, u.LastName)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Fatal("password was not hashed")
	}

	session, err := svc.Login(ctx, model.LoginRequest{Username: "ada", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !session.Roles.Has(model.RoleStudent) || session.Roles.IsAdmin() {
		t.Fatalf("unexpected roles: %v", session.Roles.Roles())
	}

	actor, err := svc.Identify(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if actor.UserID != u.ID || actor.Username != "ada" || !actor.Roles.Has(model.RoleStudent) {
		t.Fatalf("unexpected actor: %+v", actor)
	}

	me, err := svc.Me(ctx, actor)
	if err != nil || me.ID != u.ID {
		t.Fatalf("Me = %+v, %v", me, err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, signupRequest("taken")); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.SignupRequest)
		msg    string
	}{
		{"password mismatch", func(r *model.SignupRequest) { r.PasswordConfirm = "something else" }, MsgPasswordMismatch},
		{"short first name", func(r *model.SignupRequest) { r.FirstName = "A" }, "first_name must be at least 2 characters."},
		{"blank last name", func(r *model.SignupRequest) { r.LastName = "   " }, "last_name cannot be empty or spaces only."},
		{"digits in name", func(r *model.SignupRequest) { r.FirstName = "Ada2" }, "Only alphabets are allowed in first_name."},
		{"duplicate username", func(r *model.SignupRequest) { r.Username = "taken"; r.Email = "other@example.edu" }, MsgUsernameTaken},
		{"duplicate email", func(r *model.SignupRequest) { r.Email = "taken@example.edu" }, MsgEmailTaken},
		{"long password", func(r *model.SignupRequest) {
			r.Password = strings.Repeat("p", 80)
			r.PasswordConfirm = r.Password
		}, MsgPasswordTooLong},
		{"long first name", func(r *model.SignupRequest) { r.FirstName = strings.Repeat("a", 151) }, "first_name must be at most 150 characters."},
		{"long email", func(r *model.SignupRequest) { r.Email = strings.Repeat("e", 250) + "@example.edu" }, "email must be at most 254 characters."},
		{"long username", func(r *model.SignupRequest) { r.Username = strings.Repeat("u", 151) }, "username must be at most 150 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signupRequest("fresh")
			tt.mutate(&req)
			_, err := svc.Signup(ctx, req)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Fatalf("message = %q, want %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, signupRequest("ada")); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, err := svc.Login(ctx, model.LoginRequest{Username: "ada", Password: "wrong password"})
	if apperr.KindOf(err) != apperr.KindValidation || err.Error() != MsgInvalidCredentials {
		t.Fatalf("wrong password: %v", err)
	}
	_, err = svc.Login(ctx, model.LoginRequest{Username: "nobody", Password: "correct horse"})
	if apperr.KindOf(err) != apperr.KindValidation || err.Error() != MsgInvalidCredentials {
		t.Fatalf("unknown user: %v", err)
	}

	_, err = svc.Login(ctx, model.LoginRequest{Username: "ada", Password: "correct horse", IsAdmin: true})
	if apperr.KindOf(err) != apperr.KindPermissionDenied || err.Error() != MsgNotAdmin {
		t.Fatalf("student admin login: %v", err)
	}

	u, _ := db.Users().GetByUsername(ctx, "ada")
	if err := db.RoleStore().Assign(ctx, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	session, err := svc.Login(ctx, model.LoginRequest{Username: "ada", Password: "correct horse", IsAdmin: true})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if !session.Roles.IsAdmin() {
		t.Fatal("expected admin role in session")
	}
}

func TestIdentifyReloadsRoles(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	actor := db.AddUser("prof", model.RoleStudent, model.RoleAdmin)
	u, _ := db.Users().GetByID(ctx, actor.UserID)

	token, _, err := svc.tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := db.RoleStore().Revoke(ctx, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got, err := svc.Identify(ctx, token)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if got.IsAdmin() {
		t.Fatal("revoked admin role still present")
	}
}

func TestIdentifyRejectsBadTokens(t *testing.T) {
	svc, db := newTestService(t)
	actor := db.AddUser("ada", model.RoleStudent)
	u, _ := db.Users().GetByID(context.Background(), actor.UserID)

	other := NewTokens("another-secret", time.Hour)
	forged, _, _ := other.Issue(u)

	expired := NewTokens("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue(u)

	for name, token := range map[string]string{
		"garbage": "not.a.token",
		"forged":  forged,
		"expired": stale,
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Identify(context.Background(), token)
			if apperr.KindOf(err) != apperr.KindUnauthenticated {
				t.Fatalf("expected unauthenticated, got %v", err)
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken in chain, got %v", err)
			}
		})
	}
}

func TestTokenAlgorithmPinned(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	// alg "none" with an empty signature.
	header := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0"
	payload := "eyJzdWIiOiJ4IiwiZXhwIjo0MTAyNDQ0ODAwfQ"
	if _, err := tokens.Verify(strings.Join([]string{header, payload, ""}, ".")); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if ok, err := CheckPassword(hash, "s3cret-pass"); err != nil || !ok {
		t.Fatalf("CheckPassword(correct) = %v, %v", ok, err)
	}
	if ok, err := CheckPassword(hash, "wrong"); err != nil || ok {
		t.Fatalf("CheckPassword(wrong) = %v, %v", ok, err)
	}
	if _, err := CheckPassword("not-a-hash", "x"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

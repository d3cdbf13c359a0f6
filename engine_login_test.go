package iamcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuthenticateSuccess(t *testing.T) {
	store := &recordingTraceStore{}
	engine, dir := newTestEngine(t, func(b *Builder) {
		b.WithLoginTraceStore(store)
	})
	seedUser(t, engine, dir, "alice", "pw-alice", employee("u1"))

	result, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "pw-alice")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.Token == "" {
		t.Fatal("empty token")
	}
	if got := result.Principal.UserTypeAndID(); got != "EMP:u1" {
		t.Fatalf("principal key = %q", got)
	}
	if result.Principal.TenantID != "t1" || result.Principal.OrgID != "org1" {
		t.Fatalf("principal = %+v", result.Principal)
	}

	ctx, err := engine.Attach(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got := engine.CurrentUserID(ctx); got != "u1" {
		t.Fatalf("CurrentUserID = %q", got)
	}

	logins, _ := store.snapshot()
	if len(logins) != 1 {
		t.Fatalf("login traces = %d", len(logins))
	}
	if logins[0].UserTypeAndID != "EMP:u1" || logins[0].Token != result.Token {
		t.Fatalf("trace = %+v", logins[0])
	}
	if logins[0].ID == "" {
		t.Fatal("trace id empty")
	}
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	engine, dir := newTestEngine(t)
	seedUser(t, engine, dir, "alice", "pw-alice", employee("u1"))

	tests := []struct {
		name    string
		account string
		secret  string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown account", "ghost", "pw-alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Authenticate(context.Background(), AuthTypePassword, tt.account, tt.secret)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticateBlockedStatus(t *testing.T) {
	engine, dir := newTestEngine(t)

	locked := employee("locked")
	seedUser(t, engine, dir, "locked", "pw", locked)
	dir.accounts["PWD:locked"].Status = AccountLocked

	inactiveUser := employee("dormant")
	inactiveUser.Status = AccountInactive
	seedUser(t, engine, dir, "dormant", "pw", inactiveUser)

	if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "locked", "pw"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("locked account: err = %v", err)
	}
	if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "dormant", "pw"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("inactive user: err = %v", err)
	}
}

func TestAuthenticateOrphanedAccount(t *testing.T) {
	engine, dir := newTestEngine(t)
	seedUser(t, engine, dir, "alice", "pw", employee("u1"))
	delete(dir.users, "EMP:u1")

	_, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCustomCredentialVerifier(t *testing.T) {
	engine, dir := newTestEngine(t, func(b *Builder) {
		b.WithCredentialVerifier(AuthTypeSSO, func(stored *Account, provided string) (bool, error) {
			return provided == "sso-ticket-"+stored.AuthAccount, nil
		})
	})

	user := employee("u7")
	dir.accounts["SSO:bob"] = &Account{
		UserType:    user.UserType,
		UserID:      user.UserID,
		AuthType:    AuthTypeSSO,
		AuthAccount: "bob",
		Status:      AccountActive,
	}
	dir.users["EMP:u7"] = &user

	if _, err := engine.Authenticate(context.Background(), AuthTypeSSO, "bob", "sso-ticket-bob"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := engine.Authenticate(context.Background(), AuthTypeSSO, "bob", "forged"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogoutRemovesSessionAndPermissions(t *testing.T) {
	engine, dir := newTestEngine(t)
	seedUser(t, engine, dir, "alice", "pw", employee("u1"), "viewer")
	dir.grant("viewer", "IamUser:read")

	ctx, result := login(t, engine, "alice", "pw")
	if err := engine.Authorize(ctx, "IamUser:read"); err != nil {
		t.Fatalf("Authorize: %v", err)
	}

	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := engine.Attach(context.Background(), result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Attach after logout: err = %v", err)
	}
	if _, ok := engine.CurrentUser(ctx); ok {
		t.Fatal("subject still bound after logout")
	}

	// Repeating is a no-op.
	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestLogoutUpdatesTrace(t *testing.T) {
	store := &recordingTraceStore{}
	engine, dir := newTestEngine(t, func(b *Builder) {
		b.WithLoginTraceStore(store)
	})
	seedUser(t, engine, dir, "alice", "pw", employee("u1"))

	ctx, result := login(t, engine, "alice", "pw")
	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	_, logouts := store.snapshot()
	if len(logouts) != 1 || logouts[0] != "EMP:u1" {
		t.Fatalf("logout traces = %v", logouts)
	}
}

func TestLogoutUserOnlyMatchingPrincipal(t *testing.T) {
	aliases := &recordingAliases{}
	engine, dir := newTestEngine(t, func(b *Builder) {
		b.WithTokenAliasRegistry(aliases)
	})
	seedUser(t, engine, dir, "alice", "pw-a", employee("u1"))
	seedUser(t, engine, dir, "bob", "pw-b", employee("u2"))

	_, aliceFirst := login(t, engine, "alice", "pw-a")
	_, aliceSecond := login(t, engine, "alice", "pw-a")
	_, bob := login(t, engine, "bob", "pw-b")

	if err := engine.LogoutUser(context.Background(), "EMP:u1"); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}

	for _, token := range []string{aliceFirst.Token, aliceSecond.Token} {
		if _, err := engine.Attach(context.Background(), token); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("alice session survived: err = %v", err)
		}
	}
	if _, err := engine.Attach(context.Background(), bob.Token); err != nil {
		t.Fatalf("bob session lost: %v", err)
	}

	revoked := aliases.tokens()
	if len(revoked) != 2 {
		t.Fatalf("revoked aliases = %v", revoked)
	}
}

func TestTraceFailureDoesNotBlockLogin(t *testing.T) {
	store := &recordingTraceStore{fail: errors.New("trace store down")}
	engine, dir := newTestEngine(t, func(b *Builder) {
		b.WithLoginTraceStore(store)
	})
	seedUser(t, engine, dir, "alice", "pw", employee("u1"))

	ctx, result := login(t, engine, "alice", "pw")
	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricTraceWriteFailure] != 2 {
		t.Fatalf("trace write failures = %d", snap.Counters[MetricTraceWriteFailure])
	}
}

func TestLoginThrottle(t *testing.T) {
	engine, dir := newTestEngine(t, func(b *Builder) {
		cfg := defaultConfig()
		cfg.Security.EnableLoginThrottle = true
		cfg.Security.MaxLoginAttempts = 2
		cfg.Security.LoginCooldown = time.Hour
		b.WithConfig(cfg)
	})
	seedUser(t, engine, dir, "alice", "pw", employee("u1"))

	for i := 0; i < 2; i++ {
		if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v", i, err)
		}
	}

	// Budget exhausted; even the right password is rejected now.
	if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "pw"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("err = %v, want ErrLoginRateLimited", err)
	}

	// Other credentials keep their own budget.
	seedUser(t, engine, dir, "bob", "pw-b", employee("u2"))
	if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "bob", "pw-b"); err != nil {
		t.Fatalf("unrelated credential throttled: %v", err)
	}
}

func TestSuccessfulLoginResetsThrottle(t *testing.T) {
	engine, dir := newTestEngine(t, func(b *Builder) {
		cfg := defaultConfig()
		cfg.Security.EnableLoginThrottle = true
		cfg.Security.MaxLoginAttempts = 2
		cfg.Security.LoginCooldown = time.Hour
		b.WithConfig(cfg)
	})
	seedUser(t, engine, dir, "alice", "pw", employee("u1"))

	if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "pw"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	// The success refilled the budget.
	for i := 0; i < 2; i++ {
		if _, err := engine.Authenticate(context.Background(), AuthTypePassword, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("post-reset attempt %d: err = %v", i, err)
		}
	}
}

func TestLoginAuditEvents(t *testing.T) {
	sink := NewChannelSink(16)
	engine, dir := newTestEngine(t, func(b *Builder) {
		b.WithAuditSink(sink)
	})
	seedUser(t, engine, dir, "alice", "pw", employee("u1"))

	ctx, result := login(t, engine, "alice", "pw")
	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// Close drains the dispatcher, so everything emitted is in the sink now.
	engine.Close()

	var types []string
	drained := false
	for !drained {
		select {
		case event := <-sink.Events():
			types = append(types, event.EventType)
		default:
			drained = true
		}
	}
	if len(types) != 2 || types[0] != EventLoginSuccess || types[1] != EventLogout {
		t.Fatalf("events = %v", types)
	}
}

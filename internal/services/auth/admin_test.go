package auth

import (
	"errors"
	"testing"
)

func TestEnsureAdminUser(t *testing.T) {
	svc, store := newTestService(t)

	settings := testSettings()
	if err := svc.EnsureAdminUser(settings); err != nil {
		t.Fatalf("EnsureAdminUser with no admin env set: %v", err)
	}
	if len(store.users) != 0 {
		t.Fatal("no admin should be created when the env vars are unset")
	}

	settings.AdminEmail = "admin@example.com"
	settings.AdminUsername = "admin"
	settings.AdminPassword = "adminpassword"
	if err := svc.EnsureAdminUser(settings); err != nil {
		t.Fatalf("EnsureAdminUser failed: %v", err)
	}

	admin, err := svc.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("admin user not created: %v", err)
	}
	if !admin.IsAdmin || !admin.IsActive || !admin.IsVerified {
		t.Errorf("admin flags = admin=%v active=%v verified=%v, want all true", admin.IsAdmin, admin.IsActive, admin.IsVerified)
	}
	if !svc.CheckPassword("adminpassword", admin.PasswordHash) {
		t.Error("admin password hash does not verify")
	}

	// second run is a no-op
	if err := svc.EnsureAdminUser(settings); err != nil {
		t.Fatalf("EnsureAdminUser second run failed: %v", err)
	}
	if len(store.users) != 1 {
		t.Errorf("expected 1 user after repeated bootstrap, got %d", len(store.users))
	}
}

func TestSetUserActive(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerUser(t, svc, "user@example.com", "johndoe", "password123")
	token, _ := svc.CreateRefreshToken(user.ID, "", "")

	if err := svc.SetUserActive(user.ID, false); err != nil {
		t.Fatalf("SetUserActive(false) failed: %v", err)
	}
	got, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Error("user still active after deactivation")
	}
	// deactivation kills open sessions
	if _, err := svc.VerifyRefreshToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token survived deactivation: %v", err)
	}

	if err := svc.SetUserActive(user.ID, true); err != nil {
		t.Fatalf("SetUserActive(true) failed: %v", err)
	}
	got, _ = svc.GetUserByID(user.ID)
	if !got.IsActive {
		t.Error("user not reactivated")
	}

	if err := svc.SetUserActive(999, false); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

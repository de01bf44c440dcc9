package account_test

import (
	"errors"
	"testing"
	"time"

	"catalog/internal/domain/account"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{
			name:    "valid admin account",
			account: account.Account{ID: "1", Email: "admin@studio.example", Role: account.RoleAdmin},
		},
		{
			name:    "valid curator account",
			account: account.Account{ID: "2", Email: "curator@studio.example", Role: account.RoleCurator},
		},
		{
			name:    "valid viewer account",
			account: account.Account{ID: "3", Email: "viewer@studio.example", Role: account.RoleViewer},
		},
		{
			name:    "empty email",
			account: account.Account{ID: "4", Role: account.RoleAdmin},
			wantErr: account.ErrEmptyEmail,
		},
		{
			name:    "invalid email no at sign",
			account: account.Account{ID: "5", Email: "not-an-email", Role: account.RoleAdmin},
			wantErr: account.ErrInvalidEmail,
		},
		{
			name:    "invalid role",
			account: account.Account{ID: "6", Email: "user@studio.example", Role: "superadmin"},
			wantErr: account.ErrInvalidRole,
		},
		{
			name:    "empty role",
			account: account.Account{ID: "7", Email: "user@studio.example"},
			wantErr: account.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Account.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_SetPassword tests the SetPassword method.
func TestAccount_SetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "securepassword123", false},
		{"exactly 12 chars", "123456789012", false},
		{"empty password", "", true},
		{"11 chars", "12345678901", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{}
			err := a.SetPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (a.PasswordHash == "" || a.PasswordHash == tt.password) {
				t.Error("SetPassword() should store a bcrypt hash")
			}
		})
	}
}

// TestAccount_CheckPassword tests the CheckPassword method.
func TestAccount_CheckPassword(t *testing.T) {
	a := &account.Account{}
	if err := a.SetPassword("securepassword123"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}

	if err := a.CheckPassword("securepassword123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := a.CheckPassword("wrongpassword123"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if err := (&account.Account{}).CheckPassword("anypassword1234"); err == nil {
		t.Error("CheckPassword() should fail when no hash is set")
	}
}

// TestAccount_Lockout tests failed-login counting and lock expiry.
func TestAccount_Lockout(t *testing.T) {
	a := &account.Account{}

	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
		if a.IsLocked(now) {
			t.Fatalf("account should not be locked after %d failures", i+1)
		}
	}

	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Error("account should be locked after max failures")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Error("lock should expire after the lockout duration")
	}

	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Errorf("expected reset account, got %+v", a)
	}
}

// TestAccount_RoleChecks tests IsAdmin and CanEdit.
func TestAccount_RoleChecks(t *testing.T) {
	tests := []struct {
		role    string
		isAdmin bool
		canEdit bool
	}{
		{account.RoleAdmin, true, true},
		{account.RoleCurator, false, true},
		{account.RoleViewer, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			a := &account.Account{Role: tt.role}
			if a.IsAdmin() != tt.isAdmin {
				t.Errorf("IsAdmin() = %v, want %v", a.IsAdmin(), tt.isAdmin)
			}
			if a.CanEdit() != tt.canEdit {
				t.Errorf("CanEdit() = %v, want %v", a.CanEdit(), tt.canEdit)
			}
		})
	}
}

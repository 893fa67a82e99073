package admin

import (
	"testing"
	"time"
)

func TestIssueToken_ValidateTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", "ops", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	subject, err := ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if subject != "ops" {
		t.Fatalf("ValidateToken() subject = %q, want \"ops\"", subject)
	}
}

func TestValidateToken_RejectsWrongSigningKey(t *testing.T) {
	token, _ := IssueToken("secret", "ops", time.Hour)
	if _, err := ValidateToken("wrong-secret", token); err == nil {
		t.Fatal("ValidateToken() with wrong key returned nil error")
	}
}

func TestValidateToken_RejectsExpiredToken(t *testing.T) {
	token, _ := IssueToken("secret", "ops", -time.Minute)
	if _, err := ValidateToken("secret", token); err == nil {
		t.Fatal("ValidateToken() with expired token returned nil error")
	}
}

func TestValidateToken_RejectsEmptyToken(t *testing.T) {
	if _, err := ValidateToken("secret", ""); err != ErrMissingToken {
		t.Fatalf("ValidateToken(\"\") error = %v, want ErrMissingToken", err)
	}
}

func TestHashSecret_CompareSecretRoundTrip(t *testing.T) {
	hash, err := HashSecret("hunter2")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}
	if err := CompareSecret(hash, "hunter2"); err != nil {
		t.Fatalf("CompareSecret() with correct secret error = %v", err)
	}
	if err := CompareSecret(hash, "wrong"); err == nil {
		t.Fatal("CompareSecret() with wrong secret returned nil error")
	}
}

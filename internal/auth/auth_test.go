package auth

import (
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("s3cret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestSignAndVerify(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, 24*time.Hour)

	token, err := tokens.Sign("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", -time.Minute, 24*time.Hour)
	token, err := tokens.Sign("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tokens.Verify(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	signer := NewTokens("secret-a", time.Hour, 24*time.Hour)
	verifier := NewTokens("secret-b", time.Hour, 24*time.Hour)

	token, err := signer.Sign("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, 24*time.Hour)
	if _, err := tokens.Verify("not-a-token"); err == nil {
		t.Error("garbage accepted")
	}
}

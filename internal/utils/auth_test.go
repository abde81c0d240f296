package utils

import (
	"testing"
	"time"

	"github.com/Nrlsb/Logistica-Remitos/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestSessionToken(t *testing.T) {
	secret := "test-secret-key-12345"

	user := &models.UserAccount{
		ID:       "uuid-1234",
		Username: "maria",
		Role:     "admin",
	}
	sessionID := "session-5678"

	// Test Generation
	token, err := GenerateSessionToken(user, sessionID, secret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}

	// Test Validation (Success)
	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims["id"] != user.ID {
		t.Errorf("Expected user ID %s, got %v", user.ID, claims["id"])
	}
	if claims["username"] != user.Username {
		t.Errorf("Expected username %s, got %v", user.Username, claims["username"])
	}
	if claims["session_id"] != sessionID {
		t.Errorf("Expected session id %s, got %v", sessionID, claims["session_id"])
	}

	// Test Validation (Failure - Wrong Key)
	_, err = ValidateToken(token, "wrong-key")
	if err == nil {
		t.Error("Validation should fail with wrong key")
	}

	// Test Validation (Failure - Expired)
	expired, err := GenerateSessionToken(user, sessionID, secret, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate expired token: %v", err)
	}
	if _, err := ValidateToken(expired, secret); err == nil {
		t.Error("Validation should fail for expired token")
	}
}

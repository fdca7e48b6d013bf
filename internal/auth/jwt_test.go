package auth

import (
	"testing"
	"time"
)

func testConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "beamchat",
		Audience: "beamchat-realtime",
		TTL:      time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "alice" {
		t.Fatalf("user id = %q, want alice", claims.UserID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := testConfig()
	other.Secret = []byte("different-secret")
	if _, err := ValidateToken(other, token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "someone-else"

	token, err := GenerateToken(cfg, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(testConfig(), token); err == nil {
		t.Fatal("wrong issuer must be rejected")
	}
}

func TestValidateTokenWrongAudience(t *testing.T) {
	cfg := testConfig()
	cfg.Audience = "some-other-service"

	token, err := GenerateToken(cfg, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(testConfig(), token); err == nil {
		t.Fatal("wrong audience must be rejected")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute

	token, err := GenerateToken(cfg, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(testConfig(), token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestValidateTokenEmptyUserID(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatal("token without a user id must be rejected")
	}
}

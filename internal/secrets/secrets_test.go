package secrets

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestToken_RoundTrip(t *testing.T) {
	keyring.MockInit()

	if got, err := Token("me"); err != nil || got != "" {
		t.Fatalf("Token before set = %q, %v; want empty, nil", got, err)
	}
	if err := SetToken("me", "abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	got, err := Token("me")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Token = %q, want abc123", got)
	}

	if err := DeleteToken("me"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if got, _ := Token("me"); got != "" {
		t.Errorf("Token after delete = %q", got)
	}
	if err := DeleteToken("me"); err != nil {
		t.Errorf("deleting a missing token should not fail: %v", err)
	}
}

func TestSetToken_Empty(t *testing.T) {
	keyring.MockInit()
	if err := SetToken("me", ""); err == nil {
		t.Error("expected error for empty token")
	}
}

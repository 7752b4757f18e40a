package middleware

import (
	"crypto/rand"
	"net/http"
	"testing"
)

func testSecret(t *testing.T) []byte {
	t.Helper()
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return secret
}

func TestSignAndValidSignature(t *testing.T) {
	secret := testSecret(t)
	body := []byte(`{"text":"hello"}`)

	sig := Sign(secret, http.MethodPost, "/api/messages/send/u1", body, "1700000000")
	if !ValidSignature(secret, http.MethodPost, "/api/messages/send/u1", body, "1700000000", sig) {
		t.Error("signature must validate against identical inputs")
	}

	cases := []struct {
		name                    string
		method, path, timestamp string
		body                    []byte
	}{
		{"different method", http.MethodGet, "/api/messages/send/u1", "1700000000", body},
		{"different path", http.MethodPost, "/api/messages/send/u2", "1700000000", body},
		{"different body", http.MethodPost, "/api/messages/send/u1", "1700000000", []byte(`{"text":"bye"}`)},
		{"different timestamp", http.MethodPost, "/api/messages/send/u1", "1700000001", body},
	}
	for _, tc := range cases {
		if ValidSignature(secret, tc.method, tc.path, tc.body, tc.timestamp, sig) {
			t.Errorf("%s: signature must not validate", tc.name)
		}
	}

	other := testSecret(t)
	if ValidSignature(other, http.MethodPost, "/api/messages/send/u1", body, "1700000000", sig) {
		t.Error("signature must not validate under a different secret")
	}
}

func TestSignEmptyBody(t *testing.T) {
	secret := testSecret(t)
	// Multipart uploads are signed with an empty body; nil and empty must agree.
	if Sign(secret, http.MethodPost, "/api/files/upload", nil, "1") !=
		Sign(secret, http.MethodPost, "/api/files/upload", []byte{}, "1") {
		t.Error("nil and empty body must produce the same signature")
	}
}

func TestMaskSessionID(t *testing.T) {
	if got := MaskSessionID("0123456789abcdef"); got == "0123456789abcdef" {
		t.Errorf("mask must not return the full id, got %q", got)
	}
	// Short values must not panic.
	_ = MaskSessionID("ab")
	_ = MaskSessionID("")
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(3, rateLimitWindow)
	for i := 0; i < 3; i++ {
		if !rl.allow("k") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("k") {
		t.Error("request above the limit should be rejected")
	}
	if !rl.allow("other") {
		t.Error("limits are per key")
	}
}

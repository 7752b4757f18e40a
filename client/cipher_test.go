package client

import "testing"

func TestObfuscateRoundtrip(t *testing.T) {
	cases := []struct {
		name string
		text string
		key  string
	}{
		{"ascii", "hello, world", "k3y"},
		{"unicode", "привет 😀", "секрет"},
		{"key longer than text", "hi", "a-much-longer-key-than-the-text"},
		{"empty text", "", "key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Deobfuscate(Obfuscate(tc.text, tc.key), tc.key)
			if got != tc.text {
				t.Errorf("roundtrip = %q, want %q", got, tc.text)
			}
		})
	}
}

func TestObfuscateChangesText(t *testing.T) {
	if Obfuscate("hello", "key") == "hello" {
		t.Error("obfuscated text should differ from the input")
	}
}

func TestDeobfuscateInvalidBase64PassesThrough(t *testing.T) {
	// Plain text from clients that never obfuscated must display unchanged.
	if got := Deobfuscate("not base64 !!!", "key"); got != "not base64 !!!" {
		t.Errorf("invalid input should pass through, got %q", got)
	}
}

func TestObfuscateEmptyKeyIsIdentity(t *testing.T) {
	if got := Obfuscate("hello", ""); got != "hello" {
		t.Errorf("empty key should leave text unchanged, got %q", got)
	}
}

package client

import "encoding/base64"

// Obfuscate applies a keyed XOR to text and base64-encodes the result. This is
// reversible scrambling for casual at-rest privacy, not encryption; transport
// security stays TLS's job.
func Obfuscate(text, key string) string {
	if text == "" || key == "" {
		return text
	}
	data := []byte(text)
	k := []byte(key)
	for i := range data {
		data[i] ^= k[i%len(k)]
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Deobfuscate reverses Obfuscate. Input that is not valid base64 is returned
// unchanged, so plain-text messages from older clients still display.
func Deobfuscate(text, key string) string {
	if text == "" || key == "" {
		return text
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return text
	}
	k := []byte(key)
	for i := range data {
		data[i] ^= k[i%len(k)]
	}
	return string(data)
}

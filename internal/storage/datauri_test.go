package storage

import (
	"encoding/base64"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	contentType, data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %q", contentType)
	}
	if string(data) != string(raw) {
		t.Fatalf("decoded payload mismatch")
	}
}

func TestDecodeDataURIRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"https://example.com/x.png",
		"data:image/png,plain-not-base64-marker",
		"data:;base64,aGk=",
		"data:image/png;base64,!!!not-base64!!!",
		"",
	}
	for _, c := range cases {
		if _, _, err := DecodeDataURI(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

package storage

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errNotDataURI = errors.New("not a base64 data uri")

// IsDataURI reports whether s looks like an inline data URI payload.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI splits a "data:<type>;base64,<payload>" string into its
// content type and raw bytes.
func DecodeDataURI(s string) (contentType string, data []byte, err error) {
	if !IsDataURI(s) {
		return "", nil, errNotDataURI
	}

	header, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return "", nil, errNotDataURI
	}
	contentType = strings.TrimSuffix(header, ";base64")
	if contentType == "" {
		return "", nil, errNotDataURI
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errNotDataURI
	}
	return contentType, data, nil
}

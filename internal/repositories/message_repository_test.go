package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Append validates before any query runs, so a nil DB is safe here: reaching
// the database would panic the test instead of silently passing.
func TestAppendRejectsInvalidPayloads(t *testing.T) {
	repo := NewMessageRepo(nil)

	cases := []struct {
		name          string
		text          string
		attachmentURL string
	}{
		{name: "both empty", text: "", attachmentURL: ""},
		{name: "whitespace-only text", text: "   \t\n", attachmentURL: ""},
		{name: "text and attachment both set", text: "hi", attachmentURL: "https://x/y.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Append(context.Background(), 1, 2, tc.text, tc.attachmentURL)
			require.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

package application

import (
	"encoding/base64"
	"strconv"
)

// Cursor tokens are the project ID of the last row on the previous page,
// base64url-encoded so callers treat them as opaque.

func encodeCursor(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// decodeCursor returns 0 for empty or garbled tokens, which reads as "no
// lower bound": invalid cursors restart from the first page, never error.
func decodeCursor(token string) int64 {
	if token == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

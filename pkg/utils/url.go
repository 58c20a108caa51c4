package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// PageParam reads the page query parameter of a pagination reference.
// It returns 0 when the reference has none or it is not a number.
func PageParam(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return 0
	}
	return page
}

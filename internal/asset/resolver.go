// Package asset turns stored image URLs into URLs a client can fetch.
package asset

import (
	"net/url"
	"strings"
)

// Resolve returns stored unchanged when it already points at an external
// location (scheme or host present). Otherwise stored is treated as a path
// relative to base. Empty or unparsable input is returned as is.
func Resolve(stored, base string) string {
	s := strings.TrimSpace(stored)
	if s == "" {
		return stored
	}

	u, err := url.Parse(s)
	if err != nil {
		return stored
	}
	if u.Scheme != "" || u.Host != "" {
		return stored
	}

	b := strings.TrimRight(strings.TrimSpace(base), "/")
	if b == "" {
		return stored
	}
	if strings.HasPrefix(s, "/") {
		return b + s
	}
	return b + "/" + s
}

// Package cache implements HTTP validators for responses that change only
// when the generated artifacts change.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// GenerateETag returns a strong ETag for content
func GenerateETag(content []byte) string {
	hash := sha256.Sum256(content)
	return `"` + hex.EncodeToString(hash[:16]) + `"`
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var etags []string
	for i := 0; i < len(header); {
		for i < len(header) && (header[i] == ' ' || header[i] == ',') {
			i++
		}
		if i >= len(header) {
			break
		}

		weak := strings.HasPrefix(header[i:], "W/")
		if weak {
			i += 2
		}
		if i >= len(header) || header[i] != '"' {
			// skip a malformed tag up to the next separator
			for i < len(header) && header[i] != ',' {
				i++
			}
			continue
		}

		end := strings.IndexByte(header[i+1:], '"')
		if end < 0 {
			break
		}
		etag := header[i : i+end+2]
		if weak {
			etag = "W/" + etag
		}
		etags = append(etags, etag)
		i += end + 2
	}
	return etags
}

// MatchesETag reports whether etag matches one of etags using weak comparison
func MatchesETag(etag string, etags []string) bool {
	if len(etags) == 1 && etags[0] == "*" {
		return true
	}
	opaque := strings.TrimPrefix(etag, "W/")
	for _, e := range etags {
		if strings.TrimPrefix(e, "W/") == opaque {
			return true
		}
	}
	return false
}

// NotModified sets the ETag of a response and writes 304 when the request
// already holds it. Handlers return without writing a body when it is true.
func NotModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if MatchesETag(etag, ParseIfNoneMatch(r.Header.Get("If-None-Match"))) {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

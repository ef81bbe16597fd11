// Package multipart recovers image attachments from raw multipart/form-data
// bodies. It implements only the subset of the format this service needs:
// exact-match boundary scanning over a fully buffered body, so arbitrary
// binary payloads survive byte-for-byte.
package multipart

import (
	"bytes"
	"fmt"
	"strings"
)

// Part is one boundary-delimited segment of a multipart body. Parts are
// only valid for the duration of the decode call that produced them.
type Part struct {
	HeaderText string
	Body       []byte
}

var headerSeparator = []byte("\r\n\r\n")

// BoundaryFromHeader extracts the boundary token from a
// "multipart/form-data; boundary=<token>" content-type header. The token is
// taken verbatim: everything after "boundary=", untrimmed.
func BoundaryFromHeader(contentType string) (string, error) {
	const marker = "boundary="
	idx := strings.Index(contentType, marker)
	if idx < 0 {
		return "", fmt.Errorf("content type %q has no boundary parameter", contentType)
	}
	token := contentType[idx+len(marker):]
	if token == "" {
		return "", fmt.Errorf("content type %q has an empty boundary", contentType)
	}
	return token, nil
}

// Decode splits buffer into its boundary-delimited segments and returns the
// image-typed ones in order of appearance. The preamble before the first
// delimiter and the epilogue after the closing delimiter are discarded.
// Segments with no header/body separator are skipped silently. An empty
// result is not an error; the caller decides whether that is fatal.
func Decode(buffer, boundary []byte) []Part {
	if len(boundary) == 0 {
		return nil
	}

	// The opening delimiter may sit at offset zero with no preceding CRLF;
	// every later delimiter must be preceded by one, which is also what
	// keeps boundary-like bytes inside a binary body from splitting it.
	opening := append([]byte("--"), boundary...)
	delimiter := append([]byte("\r\n--"), boundary...)

	pos := bytes.Index(buffer, opening)
	if pos < 0 {
		return nil
	}
	pos += len(opening)

	var parts []Part
	for {
		// Resume strictly after the previous match; consumed regions are
		// never re-scanned.
		rel := bytes.Index(buffer[pos:], delimiter)
		if rel < 0 {
			break
		}
		if part, ok := parseSegment(buffer[pos : pos+rel]); ok {
			parts = append(parts, part)
		}
		pos += rel + len(delimiter)
	}
	return parts
}

// parseSegment splits one delimiter-bounded segment into header text and
// body. The CRLF that terminated the body was consumed by the delimiter
// match, so the body bytes are exact.
func parseSegment(segment []byte) (Part, bool) {
	sep := bytes.Index(segment, headerSeparator)
	if sep < 0 {
		// Malformed section: no blank line between headers and body.
		return Part{}, false
	}
	header := string(segment[:sep])
	if !hasImageContentType(header) {
		return Part{}, false
	}
	return Part{HeaderText: header, Body: segment[sep+len(headerSeparator):]}, true
}

func hasImageContentType(header string) bool {
	idx := strings.Index(header, "Content-Type:")
	if idx < 0 {
		return false
	}
	value := strings.TrimLeft(header[idx+len("Content-Type:"):], " \t")
	return strings.HasPrefix(value, "image/")
}

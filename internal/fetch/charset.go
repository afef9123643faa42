package fetch

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// ToUTF8 returns body as UTF-8. Valid UTF-8 is returned as is; anything
// else is transcoded from the charset declared in contentType, a BOM or a
// <meta charset> in the document, falling back to windows-1252.
func ToUTF8(body []byte, contentType string) ([]byte, error) {
	if utf8.Valid(body) {
		return body, nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	return out, nil
}

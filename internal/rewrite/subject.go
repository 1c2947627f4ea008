package rewrite

import (
	"bytes"
	"mime"
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	foldedWhitespace = regexp.MustCompile(`\r?\n[ \t]`)
	repeatedSpaces   = regexp.MustCompile(`  +`)
)

// Subject returns the decoded, whitespace-normalized Subject header of a raw
// message, or the empty string when the message cannot be parsed.
func Subject(raw []byte) string {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return decodeHeader(msg.Header.Get("Subject"))
}

// decodeHeader decodes RFC 2047 encoded words, unfolds whitespace, and
// normalizes to NFC.
func decodeHeader(value string) string {
	if value == "" {
		return ""
	}

	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		decoded = value
	}

	decoded = foldedWhitespace.ReplaceAllString(decoded, " ")
	decoded = strings.ReplaceAll(decoded, "\t", " ")
	decoded = repeatedSpaces.ReplaceAllString(decoded, " ")
	decoded = strings.TrimSpace(decoded)

	return norm.NFC.String(decoded)
}

// Package rewrite rebuilds the envelope headers of a raw RFC5322 message so
// it can be re-sent from a trusted address.
package rewrite

import (
	"bytes"
	"fmt"
	"io"
	"net/mail"
	"sort"
)

// strippedHeaders are removed before forwarding. SES refuses to re-send a
// message carrying the original sender headers, and stale Return-Path values
// would misroute bounces. Keys are in canonical MIME form as produced by
// net/mail ("returnPath" canonicalizes to "Returnpath").
var strippedHeaders = map[string]bool{
	"From":        true,
	"Source":      true,
	"Return-Path": true,
	"Returnpath":  true,
	"To":          true,
}

// Rewrite parses a raw message, replaces its sender and recipient headers,
// and re-serializes it. All other headers and the body are preserved.
func Rewrite(raw []byte, from, to string) ([]byte, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing message: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)

	keys := make([]string, 0, len(msg.Header))
	for key := range msg.Header {
		if strippedHeaders[key] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range msg.Header[key] {
			fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
		}
	}
	buf.WriteString("\r\n")

	if _, err := io.Copy(&buf, msg.Body); err != nil {
		return nil, fmt.Errorf("copying message body: %w", err)
	}
	return buf.Bytes(), nil
}

// Package mail turns raw fetched messages into plain text suitable for
// classification: decoded headers and a body with markup removed.
package mail

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"time"

	msgcharset "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

// RawMessage is one fetched message before normalization. Header values
// may still carry RFC 2047 encoded words; Raw holds the full RFC 5322
// message bytes, which may be a single part or a multipart tree.
type RawMessage struct {
	Subject string
	From    string
	Date    time.Time
	Raw     []byte
}

// NormalizedText is the readable form of a message.
type NormalizedText struct {
	Subject string
	From    string
	Body    string
}

// Normalizer extracts normalized text from raw messages using a fixed
// HTML extraction strategy.
type Normalizer struct {
	extractor TextExtractor
}

// NewNormalizer creates a Normalizer with the given HTML extractor.
func NewNormalizer(extractor TextExtractor) *Normalizer {
	return &Normalizer{extractor: extractor}
}

// DefaultNormalizer returns a Normalizer using the tokenizer extractor.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(TokenizerExtractor{})
}

// Normalize decodes the header fields and extracts a plain-text body.
// It never fails: undecodable content degrades to empty or partial text.
func (n *Normalizer) Normalize(raw RawMessage) NormalizedText {
	return NormalizedText{
		Subject: DecodeHeader(raw.Subject),
		From:    DecodeHeader(raw.From),
		Body:    n.extractBody(raw.Raw),
	}
}

// headerDecoder decodes RFC 2047 encoded words with charset support
// from go-message.
var headerDecoder = mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		return msgcharset.Reader(charset, input)
	},
}

// DecodeHeader converts an encoded header value to readable text.
// On decode failure the raw value is returned with invalid bytes dropped.
func DecodeHeader(s string) string {
	decoded, err := headerDecoder.DecodeHeader(s)
	if err != nil {
		return strings.ToValidUTF8(s, "")
	}
	return strings.ToValidUTF8(decoded, "")
}

// extractBody walks the MIME structure and returns the first text/plain
// part, falling back to the first text/html part stripped of markup, or
// an empty string when no text representation exists.
func (n *Normalizer) extractBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Not parseable as a message; treat the bytes as plain text.
		return strings.ToValidUTF8(string(raw), "")
	}
	defer mr.Close()

	htmlBody := ""
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			return strings.ToValidUTF8(string(body), "")
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = strings.ToValidUTF8(string(body), "")
		}
	}

	if htmlBody != "" {
		return n.extractor.Text(htmlBody)
	}
	return ""
}

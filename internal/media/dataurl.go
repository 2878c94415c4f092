// Package media handles inline image payloads exchanged between the wizard and the server.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultMimeType is assumed when a data URL omits its media type.
const DefaultMimeType = "image/jpeg"

var (
	ErrNotDataURL      = errors.New("invalid data url prefix")
	ErrMalformed       = errors.New("invalid data url payload")
	ErrNotBase64       = errors.New("data url must be base64")
	ErrEmptyPayload    = errors.New("empty data url content")
	ErrPayloadTooLarge = errors.New("data url content too large")
	ErrNotImage        = errors.New("data url content is not a jpeg, png or webp image")
)

// imageTypes are the sniffed media types accepted for stored photos.
var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Payload is the decoded content of a data URL.
type Payload struct {
	Data     []byte
	MimeType string
}

// Ext returns the object extension used when storing the payload.
func (p Payload) Ext() string {
	return ExtForMime(p.MimeType)
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string.
// maxBytes <= 0 disables the size check.
func ParseDataURL(value string, maxBytes int) (Payload, error) {
	raw := strings.TrimSpace(value)
	if !strings.HasPrefix(raw, "data:") {
		return Payload{}, ErrNotDataURL
	}
	comma := strings.Index(raw, ",")
	if comma < len("data:") {
		return Payload{}, ErrMalformed
	}
	meta := raw[len("data:"):comma]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return Payload{}, ErrNotBase64
	}
	mime := strings.TrimSpace(meta[:len(meta)-len(";base64")])
	if mime == "" {
		mime = DefaultMimeType
	}

	decoded, err := base64.StdEncoding.DecodeString(raw[comma+1:])
	if err != nil {
		return Payload{}, fmt.Errorf("decode data url: %w", err)
	}
	if len(decoded) == 0 {
		return Payload{}, ErrEmptyPayload
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return Payload{}, ErrPayloadTooLarge
	}
	return Payload{Data: decoded, MimeType: strings.ToLower(mime)}, nil
}

// ParseImage decodes a data URL like ParseDataURL and sniffs the payload. The declared media
// type is replaced by the sniffed one; anything other than JPEG, PNG or WebP is rejected.
func ParseImage(value string, maxBytes int) (Payload, error) {
	p, err := ParseDataURL(value, maxBytes)
	if err != nil {
		return Payload{}, err
	}
	mime, err := SniffImage(p.Data)
	if err != nil {
		return Payload{}, err
	}
	p.MimeType = mime
	return p, nil
}

// SniffImage returns the media type detected from the leading bytes of data.
func SniffImage(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !imageTypes[mime] {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return mime, nil
}

// EncodeDataURL builds a base64 data URL for data.
func EncodeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = DefaultMimeType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ExtForMime maps an image media type to a file extension; anything unknown is stored as jpg.
func ExtForMime(mime string) string {
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "png"):
		return "png"
	case strings.Contains(m, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}

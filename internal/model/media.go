package model

import "strings"

// MediaKindImage is the only media kind produced by the checklist.
const MediaKindImage = "image"

// MediaAsset is a photo attached to an inspection item.
// Content holds a base64 data URL until the record is persisted, and a public URL afterwards.
type MediaAsset struct {
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
}

// IsInline reports whether Content still carries an inline data URL payload.
func (m MediaAsset) IsInline() bool {
	return strings.HasPrefix(m.Content, "data:")
}

// IsRemote reports whether Content is an http(s) URL.
func (m MediaAsset) IsRemote() bool {
	return strings.HasPrefix(m.Content, "http://") || strings.HasPrefix(m.Content, "https://")
}

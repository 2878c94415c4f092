package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the answer given to a verification or inspection item.
// The zero value means the item has not been answered yet and is encoded as JSON null.
type Status string

const (
	StatusUnset         Status = ""
	StatusConforme      Status = "conforme"
	StatusNaoConforme   Status = "nao_conforme"
	StatusNotApplicable Status = "na"
)

// Valid reports whether s is one of the known statuses (unset included).
func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusConforme, StatusNaoConforme, StatusNotApplicable:
		return true
	}
	return false
}

// Label returns the human readable Portuguese label used in reports.
func (s Status) Label() string {
	switch s {
	case StatusConforme:
		return "Conforme"
	case StatusNaoConforme:
		return "Não conforme"
	case StatusNotApplicable:
		return "N/A"
	default:
		return "Pendente"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *Status) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = StatusUnset
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := Status(raw)
	if !v.Valid() {
		return fmt.Errorf("unknown status %q", raw)
	}
	*s = v
	return nil
}

// InitialData holds the vehicle and operator metadata captured in the first step.
type InitialData struct {
	Plate     string `json:"plate"`
	Driver    string `json:"driver"`
	Inspector string `json:"inspector"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Odometer  string `json:"odometer,omitempty"`
}

// VerificationItem is a pass/fail entry of the fixed verification catalog.
type VerificationItem struct {
	Title  string  `json:"title"`
	Detail string  `json:"detail,omitempty"`
	Status Status  `json:"status"`
	Notes  *string `json:"notes"`
}

// Answered reports whether a status was chosen. Notes are always optional.
func (v VerificationItem) Answered() bool {
	return v.Status != StatusUnset
}

// InspectionItem is a photographed entry of the fixed inspection catalog.
type InspectionItem struct {
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Status Status       `json:"status"`
	Notes  *string      `json:"notes"`
	Media  []MediaAsset `json:"media"`
}

// IsComplete applies the per-item completion rule:
//   - unset is never complete
//   - na is always complete
//   - conforme needs at least one photo
//   - nao_conforme needs at least one photo and a non-blank note
func (i InspectionItem) IsComplete() bool {
	switch i.Status {
	case StatusNotApplicable:
		return true
	case StatusConforme:
		return len(i.Media) > 0
	case StatusNaoConforme:
		return len(i.Media) > 0 && strings.TrimSpace(NotesText(i.Notes)) != ""
	default:
		return false
	}
}

// Checklist is the root entity produced by the wizard and persisted by the record store.
type Checklist struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	CreatedAt     string             `json:"createdAt"`
	InitialData   InitialData        `json:"initialData"`
	Verifications []VerificationItem `json:"verifications"`
	Inspections   []InspectionItem   `json:"inspections"`
	Complete      bool               `json:"complete"`
}

// Evaluate recomputes Complete from the item predicates and returns it.
func (c *Checklist) Evaluate() bool {
	c.Complete = c.itemsComplete()
	return c.Complete
}

func (c *Checklist) itemsComplete() bool {
	for _, v := range c.Verifications {
		if !v.Answered() {
			return false
		}
	}
	for _, i := range c.Inspections {
		if !i.IsComplete() {
			return false
		}
	}
	return true
}

// MediaCount returns the number of media assets across all inspection items.
func (c *Checklist) MediaCount() int {
	n := 0
	for _, i := range c.Inspections {
		n += len(i.Media)
	}
	return n
}

// Normalize replaces nil slices with empty ones so the JSON shape is stable.
func (c *Checklist) Normalize() {
	if c.Verifications == nil {
		c.Verifications = []VerificationItem{}
	}
	if c.Inspections == nil {
		c.Inspections = []InspectionItem{}
	}
	for idx := range c.Inspections {
		if c.Inspections[idx].Media == nil {
			c.Inspections[idx].Media = []MediaAsset{}
		}
	}
}

// NotesText dereferences a nullable note.
func NotesText(n *string) string {
	if n == nil {
		return ""
	}
	return *n
}

// Notes returns a nullable note, nil when s is blank.
func Notes(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

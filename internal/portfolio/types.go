// Package portfolio holds the project and gallery domain: typed entities,
// the services that fetch and mutate them, and the optimistic-update
// plumbing the editor pages share.
package portfolio

import (
	"encoding/json"
	"strconv"
	"strings"

	"craftfolio/internal/media"
)

// Number decodes backend numeric fields that arrive either as JSON numbers
// or as decimal strings ("250000.00"). Commas are tolerated.
type Number float64

// UnmarshalJSON implements the loose decoding.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Project is one portfolio entry. Deletion is not exposed by this client.
type Project struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	Budget        Number    `json:"budget"`
	SquareFeet    Number    `json:"sqf"`
	Highlights    string    `json:"highlights"`
	MaterialURL   string    `json:"material_url"`
	MaterialLabel string    `json:"material_label"`
	IsPublic      bool      `json:"is_public"`
	IsJobPosting  bool      `json:"is_job_posting"`
	CoverImage    media.Ref `json:"cover_image"`
	OwnerUsername string    `json:"owner_username"`

	// IsOwner is the backend's explicit ownership flag. nil means the
	// backend omitted it and ownership falls back to a username compare.
	IsOwner *bool `json:"is_owner,omitempty"`

	Images []ProjectImage `json:"images,omitempty"`
}

// OwnedBy derives ownership: the explicit flag wins whenever present,
// otherwise a case-insensitive compare against the session username.
func (p Project) OwnedBy(username string) bool {
	if p.IsOwner != nil {
		return *p.IsOwner
	}
	return username != "" && strings.EqualFold(p.OwnerUsername, username)
}

// ProjectImage is a gallery entry, child of exactly one project.
type ProjectImage struct {
	ID        int
	Caption   string
	Ref       media.Ref
	CreatedAt string
}

// UnmarshalJSON decodes the loose backend shape: the media path may live
// under any of url/image/src/file, which media.Ref normalizes.
func (pi *ProjectImage) UnmarshalJSON(data []byte) error {
	var head struct {
		ID        int    `json:"id"`
		Caption   string `json:"caption"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var ref media.Ref
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	pi.ID = head.ID
	pi.Caption = head.Caption
	pi.CreatedAt = head.CreatedAt
	pi.Ref = ref
	return nil
}

// Targetable reports whether the image can be addressed for caption-save or
// delete. Images without a stable identifier must have those actions
// disabled rather than guessing an id.
func (pi ProjectImage) Targetable() bool { return pi.ID != 0 }

// Link is one extra material link row on the create form.
type Link struct {
	Label string
	URL   string
}

// CreateProject is the create-form payload. Budget and SquareFeet stay as
// typed-in strings; they are coerced on submit.
type CreateProject struct {
	Title         string
	Summary       string
	Category      string
	Location      string
	Budget        string
	SquareFeet    string
	Highlights    string
	MaterialURL   string
	MaterialLabel string
	IsPublic      bool
	IsJobPosting  bool
	ExtraLinks    []Link
}

// FileUpload is raw file content heading for a multipart request.
type FileUpload struct {
	Name    string
	Content []byte
}

// Confirmer gates destructive actions behind an interactive confirmation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a func to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

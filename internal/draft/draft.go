// Package draft keeps a project-like record in durable local storage. A
// draft never gets a server identifier and is never submitted on its own;
// it only becomes real when the user explicitly feeds it into the create
// form. Listings render it read-only and unclickable.
package draft

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"craftfolio/internal/portfolio"
	"craftfolio/internal/storage"
)

// Draft mirrors the create form fields. ID is a local uuid, unrelated to
// any server id.
type Draft struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	Budget        string    `json:"budget"`
	SquareFeet    string    `json:"sqf"`
	Highlights    string    `json:"highlights"`
	IsPublic      bool      `json:"is_public"`
	IsJobPosting  bool      `json:"is_job_posting"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store persists the single draft under one storage key, last write wins.
type Store struct {
	kv *storage.Store
}

// NewStore builds a draft store.
func NewStore(kv *storage.Store) *Store {
	return &Store{kv: kv}
}

// Load returns the saved draft. A missing or corrupt record reads as no
// draft at all.
func (s *Store) Load() (Draft, bool) {
	raw := s.kv.Get(storage.KeyDraftProject)
	if raw == "" {
		return Draft{}, false
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, false
	}
	return d, true
}

// Save persists the draft, assigning a local id on first save.
func (s *Store) Save(d Draft) (Draft, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(d)
	if err != nil {
		return Draft{}, err
	}
	if err := s.kv.Set(storage.KeyDraftProject, string(data)); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Clear drops the draft.
func (s *Store) Clear() {
	_ = s.kv.Delete(storage.KeyDraftProject)
}

// ToCreateProject hands the draft to the create form. This is the only way
// draft content ever reaches the backend.
func (d Draft) ToCreateProject() portfolio.CreateProject {
	return portfolio.CreateProject{
		Title:        d.Title,
		Summary:      d.Summary,
		Category:     d.Category,
		Location:     d.Location,
		Budget:       d.Budget,
		SquareFeet:   d.SquareFeet,
		Highlights:   d.Highlights,
		IsPublic:     d.IsPublic,
		IsJobPosting: d.IsJobPosting,
	}
}

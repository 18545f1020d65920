package portfolio

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"craftfolio/internal/api"
	"craftfolio/internal/logging"
)

// ImageService mutates a project's gallery.
type ImageService struct {
	client *api.Client
	log    *zap.Logger
}

// NewImageService builds an image service.
func NewImageService(client *api.Client) *ImageService {
	return &ImageService{client: client, log: logging.Get(logging.CategoryAPI)}
}

// List fetches the gallery, dropping entries without a resolvable URL.
func (s *ImageService) List(ctx context.Context, projectID int) ([]ProjectImage, error) {
	var raw []ProjectImage
	if err := s.client.Get(ctx, fmt.Sprintf("/projects/%d/images/", projectID), &raw); err != nil {
		return nil, err
	}
	images := make([]ProjectImage, 0, len(raw))
	for _, img := range raw {
		if img.Ref.IsZero() {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// SaveCaption patches one image's caption.
func (s *ImageService) SaveCaption(ctx context.Context, projectID, imageID int, caption string) error {
	body := map[string]string{"caption": caption}
	return s.client.Patch(ctx, fmt.Sprintf("/projects/%d/images/%d/", projectID, imageID), body, nil)
}

// Delete removes one image.
func (s *ImageService) Delete(ctx context.Context, projectID, imageID int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/projects/%d/images/%d/", projectID, imageID))
}

// PendingImage is one staged file waiting in the upload queue. The caption is
// editable until upload.
type PendingImage struct {
	Name    string
	Content []byte
	Caption string
}

// UploadQueue stages files before a single batched upload. Files accumulate
// locally; nothing goes over the wire until Upload.
type UploadQueue struct {
	pending []PendingImage
}

// Add stages a file.
func (q *UploadQueue) Add(name string, content []byte) {
	q.pending = append(q.pending, PendingImage{Name: filepath.Base(name), Content: content})
}

// SetCaption edits the caption of the i-th staged file.
func (q *UploadQueue) SetCaption(i int, caption string) {
	if i >= 0 && i < len(q.pending) {
		q.pending[i].Caption = caption
	}
}

// Remove unstages the i-th file.
func (q *UploadQueue) Remove(i int) {
	if i >= 0 && i < len(q.pending) {
		q.pending = append(q.pending[:i], q.pending[i+1:]...)
	}
}

// Len reports how many files are staged.
func (q *UploadQueue) Len() int { return len(q.pending) }

// Items returns the staged files in order.
func (q *UploadQueue) Items() []PendingImage { return q.pending }

// Clear drops everything staged.
func (q *UploadQueue) Clear() { q.pending = nil }

// Upload sends the whole queue as one multipart request: an images part per
// file plus a captions field per file, in the same order so the backend can
// zip them back together. The queue is cleared only on success.
func (s *ImageService) Upload(ctx context.Context, projectID int, q *UploadQueue) error {
	if q.Len() == 0 {
		return nil
	}
	form := api.NewForm()
	for _, item := range q.Items() {
		form.Add("captions", item.Caption)
	}
	for _, item := range q.Items() {
		form.AddFileBytes("images", item.Name, item.Content)
	}
	if err := s.client.PostForm(ctx, fmt.Sprintf("/projects/%d/images/", projectID), form, nil); err != nil {
		return err
	}
	s.log.Info("gallery upload complete", zap.Int("project_id", projectID), zap.Int("count", q.Len()))
	q.Clear()
	return nil
}

// GalleryEntry is one image plus its editor state. Draft holds the caption
// text being edited; Saving marks an in-flight save.
type GalleryEntry struct {
	Image  ProjectImage
	Draft  string
	Saving bool
}

// GalleryEditor drives the per-image caption editing and delete flow for one
// project's gallery. It is safe for concurrent use: mutations run on command
// goroutines while the render loop reads Entries.
type GalleryEditor struct {
	svc       *ImageService
	projectID int

	mu      sync.Mutex
	entries []GalleryEntry
}

// NewGalleryEditor builds an editor for one project.
func NewGalleryEditor(svc *ImageService, projectID int) *GalleryEditor {
	return &GalleryEditor{svc: svc, projectID: projectID}
}

// Load replaces the editor state with a fresh gallery fetch. Drafts reset to
// the server captions.
func (e *GalleryEditor) Load(ctx context.Context) error {
	images, err := e.svc.List(ctx, e.projectID)
	if err != nil {
		return err
	}
	e.Reset(images)
	return nil
}

// Reset seeds the editor from an already-fetched gallery.
func (e *GalleryEditor) Reset(images []ProjectImage) {
	entries := make([]GalleryEntry, len(images))
	for i, img := range images {
		entries[i] = GalleryEntry{Image: img, Draft: img.Caption}
	}
	e.mu.Lock()
	e.entries = entries
	e.mu.Unlock()
}

// Entries returns a snapshot of the current editor state.
func (e *GalleryEditor) Entries() []GalleryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]GalleryEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// SetDraft updates the caption text being edited for the i-th entry.
func (e *GalleryEditor) SetDraft(i int, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= 0 && i < len(e.entries) {
		e.entries[i].Draft = text
	}
}

// SaveCaption persists the i-th entry's draft. An unchanged draft is a no-op
// that issues no request. On failure the saving flag rolls back but the
// draft text stays, so the user can retry without retyping. The lock is not
// held across the request; the entry is re-matched by image id afterwards in
// case the gallery was reloaded meanwhile.
func (e *GalleryEditor) SaveCaption(ctx context.Context, i int) error {
	e.mu.Lock()
	if i < 0 || i >= len(e.entries) {
		e.mu.Unlock()
		return fmt.Errorf("no gallery entry at index %d", i)
	}
	entry := e.entries[i]
	if entry.Draft == entry.Image.Caption {
		e.mu.Unlock()
		return nil
	}
	if !entry.Image.Targetable() {
		e.mu.Unlock()
		return fmt.Errorf("image has no id; cannot save caption")
	}
	e.entries[i].Saving = true
	e.mu.Unlock()

	err := e.svc.SaveCaption(ctx, e.projectID, entry.Image.ID, entry.Draft)

	e.mu.Lock()
	defer e.mu.Unlock()
	for j := range e.entries {
		if e.entries[j].Image.ID != entry.Image.ID {
			continue
		}
		e.entries[j].Saving = false
		if err == nil {
			e.entries[j].Image.Caption = entry.Draft
		}
		break
	}
	return err
}

// Delete removes the i-th entry after confirmation, then re-fetches the
// gallery rather than splicing locally: the server list is the truth.
// Declining the confirmation is a successful no-op.
func (e *GalleryEditor) Delete(ctx context.Context, i int, confirm Confirmer) error {
	e.mu.Lock()
	if i < 0 || i >= len(e.entries) {
		e.mu.Unlock()
		return fmt.Errorf("no gallery entry at index %d", i)
	}
	entry := e.entries[i]
	e.mu.Unlock()
	if !entry.Image.Targetable() {
		return fmt.Errorf("image has no id; cannot delete")
	}
	if confirm != nil && !confirm.Confirm("Delete this image?") {
		return nil
	}
	if err := e.svc.Delete(ctx, e.projectID, entry.Image.ID); err != nil {
		return err
	}
	return e.Load(ctx)
}

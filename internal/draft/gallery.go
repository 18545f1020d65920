package draft

import (
	"encoding/json"
	"fmt"
)

// MaxGalleryBytes caps how much image data one draft may hold locally.
const MaxGalleryBytes = 5 * 1024 * 1024

// GalleryImage is one locally-staged image. Content never leaves the device
// through this package.
type GalleryImage struct {
	Name    string `json:"name"`
	Caption string `json:"caption"`
	Content []byte `json:"content"`
}

func galleryKey(draftID string) string {
	return "localProjectImages::" + draftID
}

// Gallery returns the draft's locally staged images. Corrupt data reads as
// an empty gallery.
func (s *Store) Gallery(draftID string) []GalleryImage {
	raw := s.kv.Get(galleryKey(draftID))
	if raw == "" {
		return nil
	}
	var images []GalleryImage
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil
	}
	return images
}

// GalleryUsage reports the bytes currently held for a draft.
func (s *Store) GalleryUsage(draftID string) int {
	total := 0
	for _, img := range s.Gallery(draftID) {
		total += len(img.Content)
	}
	return total
}

// AddImages appends images if the budget allows; nothing is stored when the
// additions would push the draft past the limit.
func (s *Store) AddImages(draftID string, images []GalleryImage) error {
	incoming := 0
	for _, img := range images {
		incoming += len(img.Content)
	}
	if s.GalleryUsage(draftID)+incoming > MaxGalleryBytes {
		return fmt.Errorf("adding these exceeds the %dMB local limit", MaxGalleryBytes/1024/1024)
	}
	merged := append(s.Gallery(draftID), images...)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return s.kv.Set(galleryKey(draftID), string(data))
}

// RemoveImage drops the named image from the draft's gallery.
func (s *Store) RemoveImage(draftID, name string) error {
	current := s.Gallery(draftID)
	kept := current[:0]
	for _, img := range current {
		if img.Name != name {
			kept = append(kept, img)
		}
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return s.kv.Set(galleryKey(draftID), string(data))
}

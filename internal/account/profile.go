package account

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"craftfolio/internal/api"
	"craftfolio/internal/logging"
	"craftfolio/internal/media"
	"craftfolio/internal/storage"
)

// The own-profile resource has two historical homes. The primary path is
// tried first; a 404/405 answer triggers exactly one retry against the
// legacy path, and whichever worked is remembered for the session.
const (
	primaryProfilePath = "/auth/users/me/"
	legacyProfilePath  = "/users/me/"
)

// MaxLogoBytes caps logo uploads.
const MaxLogoBytes = 5 * 1024 * 1024

// Profile is the account profile, own or public.
type Profile struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	Company         string    `json:"company"`
	Bio             string    `json:"bio"`
	Location        string    `json:"location"`
	Website         string    `json:"website"`
	ContactEmail    string    `json:"contact_email"`
	ContactPhone    string    `json:"contact_phone"`
	ShowContactForm bool      `json:"show_contact_form"`
	Logo            media.Ref `json:"logo"`
	Avatar          media.Ref `json:"avatar"`
}

// LogoPath returns the best available logo reference; logo wins over the
// older avatar field.
func (p Profile) LogoPath() string {
	if !p.Logo.IsZero() {
		return p.Logo.Path
	}
	return p.Avatar.Path
}

// ProfileForm is the editable subset. Logo content is optional; when set it
// rides along in the same multipart save.
type ProfileForm struct {
	DisplayName     string
	Company         string
	Bio             string
	Location        string
	Website         string
	ContactEmail    string
	ContactPhone    string
	ShowContactForm bool
	LogoName        string
	LogoContent     []byte
}

// ProfileService reads and writes the signed-in user's profile.
type ProfileService struct {
	client *api.Client
	kv     *storage.Store
	bus    *Bus
	log    *zap.Logger

	mu       sync.Mutex
	resolved string
}

// NewProfileService builds a profile service. bus may be nil when nothing
// listens for profile events.
func NewProfileService(client *api.Client, kv *storage.Store, bus *Bus) *ProfileService {
	return &ProfileService{
		client: client,
		kv:     kv,
		bus:    bus,
		log:    logging.Get(logging.CategorySession),
	}
}

func (s *ProfileService) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved != "" {
		return []string{s.resolved}
	}
	return []string{primaryProfilePath, legacyProfilePath}
}

func (s *ProfileService) remember(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved != path {
		s.log.Debug("profile endpoint resolved", zap.String("path", path))
		s.resolved = path
	}
}

// withFallback runs call against the resolved path, or against primary then
// legacy when unresolved. Only a 404/405 moves on to the next candidate.
func (s *ProfileService) withFallback(call func(path string) error) error {
	paths := s.paths()
	var lastErr error
	for _, path := range paths {
		err := call(path)
		if err == nil {
			s.remember(path)
			return nil
		}
		lastErr = err
		if !api.IsNotFoundOrMethod(err) {
			return err
		}
	}
	return lastErr
}

// Me fetches the own profile, resolving the endpoint on first use. The
// display name and logo are cached to durable storage so the shell can
// render them before any network round-trip.
func (s *ProfileService) Me(ctx context.Context) (Profile, error) {
	var profile Profile
	err := s.withFallback(func(path string) error {
		return s.client.Get(ctx, path, &profile)
	})
	if err != nil {
		return Profile{}, err
	}
	s.cache(profile)
	return profile, nil
}

func (s *ProfileService) cache(p Profile) {
	_ = s.kv.Set(storage.KeyProfileDisplayName, p.DisplayName)
	if logo := p.LogoPath(); logo != "" {
		_ = s.kv.Set(storage.KeyProfileLogo, logo)
	} else {
		_ = s.kv.Delete(storage.KeyProfileLogo)
	}
}

// CachedDisplayName returns the last persisted display name, possibly stale.
func (s *ProfileService) CachedDisplayName() string {
	return s.kv.Get(storage.KeyProfileDisplayName)
}

// CachedLogo returns the last persisted logo path, possibly stale.
func (s *ProfileService) CachedLogo() string {
	return s.kv.Get(storage.KeyProfileLogo)
}

func (s *ProfileService) publish(ev Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// Save persists the form as one multipart PATCH, then re-fetches the profile
// so local state reflects server truth. Empty text fields are omitted; the
// phone number keeps digits only. ProfileUpdated is broadcast whether the
// save worked or not.
func (s *ProfileService) Save(ctx context.Context, form ProfileForm) (Profile, error) {
	s.publish(ProfileUpdating{})
	fresh, err := s.save(ctx, form)
	s.publish(ProfileUpdated{Profile: fresh, Err: err})
	if err != nil {
		return Profile{}, err
	}
	s.log.Info("profile saved", zap.String("display_name", fresh.DisplayName))
	return fresh, nil
}

func (s *ProfileService) save(ctx context.Context, form ProfileForm) (Profile, error) {
	f := api.NewForm()
	addNonEmpty(f, "display_name", strings.TrimSpace(form.DisplayName))
	addNonEmpty(f, "company", strings.TrimSpace(form.Company))
	addNonEmpty(f, "bio", strings.TrimSpace(form.Bio))
	addNonEmpty(f, "location", strings.TrimSpace(form.Location))
	addNonEmpty(f, "website", strings.TrimSpace(form.Website))
	addNonEmpty(f, "contact_email", strings.TrimSpace(form.ContactEmail))
	addNonEmpty(f, "contact_phone", digitsOnly(form.ContactPhone))
	if form.ShowContactForm {
		f.Add("show_contact_form", "true")
	} else {
		f.Add("show_contact_form", "false")
	}
	if len(form.LogoContent) > 0 {
		if err := ValidateLogo(form.LogoName, len(form.LogoContent)); err != nil {
			return Profile{}, err
		}
		f.AddFileBytes("logo", form.LogoName, form.LogoContent)
	}

	err := s.withFallback(func(path string) error {
		return s.client.PatchForm(ctx, path, f, nil)
	})
	if err != nil {
		return Profile{}, err
	}
	return s.Me(ctx)
}

// RemoveLogo clears the logo with an explicit JSON null, then re-fetches so
// the cached copy drops too. ProfileUpdated is broadcast whether the removal
// worked or not.
func (s *ProfileService) RemoveLogo(ctx context.Context) (Profile, error) {
	s.publish(ProfileUpdating{})
	fresh, err := s.removeLogo(ctx)
	s.publish(ProfileUpdated{Profile: fresh, Err: err})
	if err != nil {
		return Profile{}, err
	}
	return fresh, nil
}

func (s *ProfileService) removeLogo(ctx context.Context) (Profile, error) {
	err := s.withFallback(func(path string) error {
		return s.client.Patch(ctx, path, map[string]any{"logo": nil}, nil)
	})
	if err != nil {
		return Profile{}, err
	}
	return s.Me(ctx)
}

var logoExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true,
}

// ValidateLogo rejects unsupported types and oversized files before any
// bytes go over the wire.
func ValidateLogo(name string, size int) error {
	if !logoExtensions[strings.ToLower(filepath.Ext(name))] {
		return errors.New("Please upload PNG/JPG/GIF/WEBP/SVG.")
	}
	if size > MaxLogoBytes {
		return errors.New("Image too large (max 5MB).")
	}
	return nil
}

func addNonEmpty(f *api.Form, name, value string) {
	if value != "" {
		f.Add(name, value)
	}
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PublicProfile fetches another user's public profile.
func (s *ProfileService) PublicProfile(ctx context.Context, username string) (Profile, error) {
	var p Profile
	if err := s.client.Get(ctx, fmt.Sprintf("/profiles/%s/", username), &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ContactMessage is the public contact form payload.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Contact sends a message through a user's public contact form.
func (s *ProfileService) Contact(ctx context.Context, username string, msg ContactMessage) error {
	return s.client.Post(ctx, fmt.Sprintf("/contact/%s/send/", username), msg, nil)
}

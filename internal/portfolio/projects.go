package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"craftfolio/internal/api"
	"craftfolio/internal/logging"
)

// Service fetches and mutates projects through the HTTP adapter.
type Service struct {
	client *api.Client
	log    *zap.Logger
}

// NewService builds a project service.
func NewService(client *api.Client) *Service {
	return &Service{client: client, log: logging.Get(logging.CategoryAPI)}
}

// projectList tolerates both a bare array and a paginated {"results": [...]}
// envelope.
type projectList []Project

func (l *projectList) UnmarshalJSON(data []byte) error {
	var direct []Project
	if err := json.Unmarshal(data, &direct); err == nil {
		*l = direct
		return nil
	}
	var envelope struct {
		Results []Project `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	*l = envelope.Results
	return nil
}

// List fetches every visible project.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	var projects projectList
	if err := s.client.Get(ctx, "/projects/", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// OwnedOrAll filters projects down to the ones owned by username. When the
// filter comes back empty the full list is returned instead, so a user whose
// ownership cannot be established still sees content rather than a blank
// dashboard. That choice can hide ownership-detection failures; revisit if
// the backend's is_owner flag becomes mandatory.
func OwnedOrAll(projects []Project, username string) []Project {
	owned := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.OwnedBy(username) {
			owned = append(owned, p)
		}
	}
	if len(owned) == 0 {
		return projects
	}
	return owned
}

// Get fetches a single project.
func (s *Service) Get(ctx context.Context, id int) (Project, error) {
	var p Project
	if err := s.client.Get(ctx, fmt.Sprintf("/projects/%d/", id), &p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Update patches the given fields and returns the updated project.
func (s *Service) Update(ctx context.Context, id int, fields map[string]any) (Project, error) {
	var p Project
	if err := s.client.Patch(ctx, fmt.Sprintf("/projects/%d/", id), fields, &p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Detail fetches the project and its gallery in parallel.
func (s *Service) Detail(ctx context.Context, id int) (Project, []ProjectImage, error) {
	var (
		project Project
		images  []ProjectImage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Get(gctx, id)
		if err != nil {
			return err
		}
		project = p
		return nil
	})
	g.Go(func() error {
		imgs, err := s.listImages(gctx, id)
		if err != nil {
			return err
		}
		images = imgs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Project{}, nil, err
	}
	return project, images, nil
}

func (s *Service) listImages(ctx context.Context, projectID int) ([]ProjectImage, error) {
	var raw []ProjectImage
	if err := s.client.Get(ctx, fmt.Sprintf("/projects/%d/images/", projectID), &raw); err != nil {
		return nil, err
	}
	images := raw[:0]
	for _, img := range raw {
		if img.Ref.IsZero() {
			s.log.Debug("dropping gallery entry without a resolvable URL", zap.Int("image_id", img.ID))
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// Create submits the create form as one multipart request and returns the
// created project. Numeric fields are coerced; empty optional fields are
// omitted entirely.
func (s *Service) Create(ctx context.Context, draft CreateProject, cover *FileUpload) (Project, error) {
	form := api.NewForm().
		Add("title", draft.Title).
		Add("summary", draft.Summary).
		Add("category", draft.Category)

	addOptional(form, "location", draft.Location)
	addOptional(form, "budget", coerceNumber(draft.Budget))
	addOptional(form, "sqf", coerceNumber(draft.SquareFeet))
	addOptional(form, "highlights", draft.Highlights)
	addOptional(form, "material_url", draft.MaterialURL)
	addOptional(form, "material_label", draft.MaterialLabel)

	form.Add("is_public", boolField(draft.IsPublic))
	form.Add("is_job_posting", boolField(draft.IsJobPosting))

	for i, link := range draft.ExtraLinks {
		if link.Label == "" && link.URL == "" {
			continue
		}
		form.Add(fmt.Sprintf("extra_links[%d][label]", i), link.Label)
		form.Add(fmt.Sprintf("extra_links[%d][url]", i), link.URL)
	}

	if cover != nil && len(cover.Content) > 0 {
		form.AddFileBytes("cover_image", cover.Name, cover.Content)
	}

	var created Project
	if err := s.client.PostForm(ctx, "/projects/", form, &created); err != nil {
		return Project{}, err
	}
	s.log.Info("project created", zap.Int("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// CreateAndRefresh creates the project, prepends it to list immediately, then
// replaces list with the server's fresh listing. A failed refresh keeps the
// prepended entry: the create itself already succeeded.
func (s *Service) CreateAndRefresh(ctx context.Context, list *[]Project, draft CreateProject, cover *FileUpload) (Project, error) {
	created, err := s.Create(ctx, draft, cover)
	if err != nil {
		return Project{}, err
	}
	_ = Reconcile(ctx,
		func() { *list = append([]Project{created}, *list...) },
		s.List,
		func(fresh []Project) { *list = fresh },
		nil,
	)
	return created, nil
}

func addOptional(form *api.Form, name, value string) {
	if value != "" {
		form.Add(name, value)
	}
}

func boolField(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// coerceNumber strips everything but digits and dots from a typed-in value.
func coerceNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

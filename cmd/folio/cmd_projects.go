package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"craftfolio/internal/portfolio"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List and manage portfolio projects",
}

var projectsMine bool

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		projects, err := svc.Projects.List(cmd.Context())
		if err != nil {
			return err
		}
		if projectsMine {
			projects = portfolio.OwnedOrAll(projects, svc.Session.Current().Username)
		}
		for _, p := range projects {
			flags := ""
			if p.IsJobPosting {
				flags += " [job]"
			}
			if !p.IsPublic {
				flags += " [private]"
			}
			fmt.Printf("%-5d %-30s %s%s\n", p.ID, p.Title, p.Category, flags)
		}
		if d, ok := svc.Drafts.Load(); ok {
			title := d.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%-5s %-30s draft, not submitted\n", "-", title)
		}
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a project and its gallery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		project, images, err := svc.Projects.Detail(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Println(project.Title)
		if project.Summary != "" {
			fmt.Println(project.Summary)
		}
		if project.Location != "" {
			fmt.Println("Location:", project.Location)
		}
		if project.Budget > 0 {
			fmt.Printf("Budget: $%.2f\n", float64(project.Budget))
		}
		if !project.CoverImage.IsZero() {
			fmt.Println("Cover:", svc.Media.RefURL(project.CoverImage))
		}
		for _, img := range images {
			caption := img.Caption
			if caption == "" {
				caption = "-"
			}
			fmt.Printf("  image %-5d %-40s %s\n", img.ID, svc.Media.RefURL(img.Ref), caption)
		}
		return nil
	},
}

var createForm portfolio.CreateProject

var projectsCreateCoverPath string

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		var cover *portfolio.FileUpload
		if projectsCreateCoverPath != "" {
			content, err := os.ReadFile(projectsCreateCoverPath)
			if err != nil {
				return fmt.Errorf("read cover image: %w", err)
			}
			cover = &portfolio.FileUpload{Name: projectsCreateCoverPath, Content: content}
		}
		created, err := svc.Projects.Create(cmd.Context(), createForm, cover)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %d: %s\n", created.ID, created.Title)
		return nil
	},
}

var imagesUploadCaptions []string

var projectsUploadCmd = &cobra.Command{
	Use:   "upload [project-id] [file...]",
	Short: "Upload images to a project's gallery in one batch",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}

		var queue portfolio.UploadQueue
		for i, path := range args[1:] {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			queue.Add(path, content)
			if i < len(imagesUploadCaptions) {
				queue.SetCaption(i, imagesUploadCaptions[i])
			}
		}

		count := queue.Len()
		if err := svc.Images.Upload(cmd.Context(), id, &queue); err != nil {
			return err
		}
		fmt.Printf("Uploaded %d image(s).\n", count)
		return nil
	},
}

var projectsCaptionCmd = &cobra.Command{
	Use:   "caption [project-id] [image-id] [text]",
	Short: "Set an image caption",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		projectID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		imageID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid image id %q", args[1])
		}
		return svc.Images.SaveCaption(cmd.Context(), projectID, imageID, args[2])
	},
}

func init() {
	projectsListCmd.Flags().BoolVar(&projectsMine, "mine", false, "only projects you own")

	flags := projectsCreateCmd.Flags()
	flags.StringVar(&createForm.Title, "title", "", "project title")
	flags.StringVar(&createForm.Summary, "summary", "", "project summary")
	flags.StringVar(&createForm.Category, "category", "", "project category")
	flags.StringVar(&createForm.Location, "location", "", "project location")
	flags.StringVar(&createForm.Budget, "budget", "", "project budget")
	flags.StringVar(&createForm.SquareFeet, "sqf", "", "square feet")
	flags.StringVar(&createForm.Highlights, "highlights", "", "highlights")
	flags.StringVar(&createForm.MaterialURL, "material-url", "", "material link URL")
	flags.StringVar(&createForm.MaterialLabel, "material-label", "", "material link label")
	flags.BoolVar(&createForm.IsPublic, "public", true, "publicly visible")
	flags.BoolVar(&createForm.IsJobPosting, "job-posting", false, "mark as a job posting")
	flags.StringVar(&projectsCreateCoverPath, "cover", "", "cover image file")
	_ = projectsCreateCmd.MarkFlagRequired("title")
	_ = projectsCreateCmd.MarkFlagRequired("summary")
	_ = projectsCreateCmd.MarkFlagRequired("category")

	projectsUploadCmd.Flags().StringArrayVar(&imagesUploadCaptions, "caption", nil, "caption for the n-th file (repeatable)")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsUploadCmd)
	projectsCmd.AddCommand(projectsCaptionCmd)
}

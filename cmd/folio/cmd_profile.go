package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"craftfolio/internal/account"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [username]",
	Short: "Show your own profile, or another user's public one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		var profile account.Profile
		if len(args) == 1 {
			profile, err = svc.Profile.PublicProfile(cmd.Context(), args[0])
		} else {
			profile, err = svc.Profile.Me(cmd.Context())
		}
		if err != nil {
			return err
		}

		name := profile.DisplayName
		if name == "" {
			name = profile.Username
		}
		fmt.Println(name)
		if profile.Company != "" {
			fmt.Println(profile.Company)
		}
		if profile.Bio != "" {
			fmt.Println(profile.Bio)
		}
		if profile.Location != "" {
			fmt.Println("Location:", profile.Location)
		}
		if profile.Website != "" {
			fmt.Println("Website:", profile.Website)
		}
		if logo := profile.LogoPath(); logo != "" {
			fmt.Println("Logo:", svc.Media.ToURL(logo))
		}
		return nil
	},
}

var profileForm account.ProfileForm

var profileLogoPath string

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Update profile fields; only provided flags change",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		if profileLogoPath != "" {
			content, err := os.ReadFile(profileLogoPath)
			if err != nil {
				return fmt.Errorf("read logo: %w", err)
			}
			profileForm.LogoName = profileLogoPath
			profileForm.LogoContent = content
		}
		fresh, err := svc.Profile.Save(cmd.Context(), profileForm)
		if err != nil {
			return err
		}
		fmt.Printf("Profile saved: %s\n", fresh.DisplayName)
		return nil
	},
}

var profileRemoveLogoCmd = &cobra.Command{
	Use:   "remove-logo",
	Short: "Clear the profile logo",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		if _, err := svc.Profile.RemoveLogo(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logo removed.")
		return nil
	},
}

var contactMessage account.ContactMessage

var profileContactCmd = &cobra.Command{
	Use:   "contact [username]",
	Short: "Send a message through a user's public contact form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		if err := svc.Profile.Contact(cmd.Context(), args[0], contactMessage); err != nil {
			return err
		}
		fmt.Println("Message sent.")
		return nil
	},
}

func init() {
	flags := profileEditCmd.Flags()
	flags.StringVar(&profileForm.DisplayName, "display-name", "", "display name")
	flags.StringVar(&profileForm.Company, "company", "", "company")
	flags.StringVar(&profileForm.Bio, "bio", "", "bio")
	flags.StringVar(&profileForm.Location, "location", "", "location")
	flags.StringVar(&profileForm.Website, "website", "", "website URL")
	flags.StringVar(&profileForm.ContactEmail, "contact-email", "", "contact email")
	flags.StringVar(&profileForm.ContactPhone, "contact-phone", "", "contact phone")
	flags.BoolVar(&profileForm.ShowContactForm, "show-contact-form", true, "show the public contact form")
	flags.StringVar(&profileLogoPath, "logo", "", "logo image file")

	cflags := profileContactCmd.Flags()
	cflags.StringVar(&contactMessage.Name, "name", "", "your name")
	cflags.StringVar(&contactMessage.Email, "email", "", "your email")
	cflags.StringVar(&contactMessage.Subject, "subject", "", "subject")
	cflags.StringVar(&contactMessage.Message, "message", "", "message body")
	_ = profileContactCmd.MarkFlagRequired("name")
	_ = profileContactCmd.MarkFlagRequired("email")
	_ = profileContactCmd.MarkFlagRequired("message")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileRemoveLogoCmd)
	profileCmd.AddCommand(profileContactCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"craftfolio/internal/session"
)

var (
	authUsername string
	authPassword string
	authEmail    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		sess, err := svc.Session.Login(cmd.Context(), session.Credentials{
			Username: authUsername,
			Password: authPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", sess.Username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		sess, err := svc.Session.Register(cmd.Context(), session.Registration{
			Username: authUsername,
			Email:    authEmail,
			Password: authPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Account created; signed in as %s\n", sess.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		svc.Session.Logout()
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		sess := svc.Session.Current()
		if !sess.Authenticated() {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Println(sess.Username)
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "password-reset",
	Short: "Request or confirm a password reset",
}

var passwordResetRequestCmd = &cobra.Command{
	Use:   "request [email]",
	Short: "Mail a password reset link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		if err := svc.Profile.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Reset link sent if the address is known.")
		return nil
	},
}

var (
	resetUID      string
	resetToken    string
	resetPassword string
	resetConfirm  string
)

var passwordResetConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Complete a password reset with the mailed uid and token",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices()
		if err != nil {
			return err
		}
		err = svc.Profile.ConfirmPasswordReset(cmd.Context(), resetUID, resetToken, resetPassword, resetConfirm)
		if err != nil {
			return err
		}
		fmt.Println("Password changed.")
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&authUsername, "username", "u", "", "account username")
		cmd.Flags().StringVarP(&authPassword, "password", "p", "", "account password")
		_ = cmd.MarkFlagRequired("username")
		_ = cmd.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
	_ = registerCmd.MarkFlagRequired("email")

	passwordResetConfirmCmd.Flags().StringVar(&resetUID, "uid", "", "uid from the reset link")
	passwordResetConfirmCmd.Flags().StringVar(&resetToken, "token", "", "token from the reset link")
	passwordResetConfirmCmd.Flags().StringVar(&resetPassword, "new-password", "", "new password")
	passwordResetConfirmCmd.Flags().StringVar(&resetConfirm, "confirm-password", "", "new password again")
	_ = passwordResetConfirmCmd.MarkFlagRequired("uid")
	_ = passwordResetConfirmCmd.MarkFlagRequired("token")
	_ = passwordResetConfirmCmd.MarkFlagRequired("new-password")
	_ = passwordResetConfirmCmd.MarkFlagRequired("confirm-password")

	passwordResetCmd.AddCommand(passwordResetRequestCmd)
	passwordResetCmd.AddCommand(passwordResetConfirmCmd)
}

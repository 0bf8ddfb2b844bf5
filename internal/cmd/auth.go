package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the partner portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			return errors.New("--email is required")
		}
		if password == "" {
			return errors.New("--password is required")
		}

		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()

		if err := authCtx.SignIn(context.Background(), email, password); err != nil {
			return err
		}
		if err := saveToken(portalClient.Token()); err != nil {
			return fmt.Errorf("signed in, but could not persist the session token: %w", err)
		}

		fmt.Printf("Signed in as %s.\n", email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the persisted session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()

		// The local token is removed even if the server-side termination fails
		err = authCtx.SignOut(context.Background())
		removeToken()
		if err != nil {
			return err
		}

		fmt.Println("Signed out.")
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new partner portal account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		if email == "" {
			return errors.New("--email is required")
		}
		if password == "" {
			return errors.New("--password is required")
		}
		if name == "" {
			return errors.New("--name is required")
		}

		_, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()

		if err := authCtx.SignUp(context.Background(), email, password, name); err != nil {
			return err
		}

		fmt.Printf("Account for %s created. Sign in with 'portalctl login'.\n", email)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently signed-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()

		user, _ := authCtx.User()
		if user == nil {
			fmt.Println("Not signed in.")
			return nil
		}
		return printJSON(user)
	},
}

func init() {
	loginCmd.Flags().String("email", "", "email address of the account")
	loginCmd.Flags().String("password", "", "password of the account")

	signupCmd.Flags().String("email", "", "email address of the new account")
	signupCmd.Flags().String("password", "", "password of the new account")
	signupCmd.Flags().String("name", "", "display name of the new account")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(whoamiCmd)
}

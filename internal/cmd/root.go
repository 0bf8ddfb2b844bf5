package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/partnerhub/portal-server/internal/auth"
	"github.com/partnerhub/portal-server/internal/client"
	"github.com/partnerhub/portal-server/internal/profile"
)

var (
	flagServer    string
	flagTokenFile string
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Manage the partner portal from the command line",
	Long: `portalctl talks to the partner portal API and covers the day-to-day
administration tasks: managing profiles, partner groups, news entries and
downloadable materials.

Sign in once with 'portalctl login'; the session token is persisted locally
and reused by every subsequent command.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8080", "base URL of the portal API")
	rootCmd.PersistentFlags().StringVar(&flagTokenFile, "token-file", "", "path of the persisted session token (default is $HOME/.portalctl/token)")
}

func tokenFilePath() (string, error) {
	if flagTokenFile != "" {
		return flagTokenFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".portalctl", "token"), nil
}

func loadToken() string {
	path, err := tokenFilePath()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(raw)
}

func saveToken(token string) error {
	path, err := tokenFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0600)
}

func removeToken() {
	path, err := tokenFilePath()
	if err != nil {
		return
	}
	os.Remove(path)
}

// newAuthContext creates a portal API client with the persisted session token
// and an authentication context on top of it, settled and ready for use
func newAuthContext() (*client.Client, *auth.Context, error) {
	portalClient := client.New(flagServer)
	if token := loadToken(); token != "" {
		portalClient.SetToken(token)
	}

	authCtx := auth.NewContext(portalClient, func(notification auth.Notification) {
		if notification.Error {
			fmt.Fprintf(os.Stderr, "%s: %s\n", notification.Title, notification.Description)
		}
	})

	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := authCtx.WaitUntilLoaded(waitCtx); err != nil {
		authCtx.Close()
		return nil, nil, fmt.Errorf("could not reach the portal API at %s: %w", flagServer, err)
	}

	return portalClient, authCtx, nil
}

// requireRole evaluates the role guard before an access-restricted command runs
func requireRole(authCtx *auth.Context, requiredRole profile.Role) error {
	switch authCtx.Authorize(requiredRole) {
	case auth.DecisionAllowed:
		return nil
	case auth.DecisionUnauthenticated:
		return errors.New("not signed in; run 'portalctl login' first")
	default:
		return fmt.Errorf("the '%s' role is required for this command", requiredRole)
	}
}

func printJSON(value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partnerhub/portal-server/internal/client"
	"github.com/partnerhub/portal-server/internal/mirror"
	"github.com/partnerhub/portal-server/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage partner portal profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func newProfileMirror(portalClient *client.Client) *mirror.Mirror[*profile.Profile, *client.ProfileCreate, *client.ProfilePatch] {
	return mirror.New(portalClient.Profiles(), func(item *profile.Profile) string {
		return item.ID
	}, "profile", nil)
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		profiles := newProfileMirror(portalClient)
		if err := profiles.Refetch(context.Background()); err != nil {
			return err
		}
		return printJSON(profiles.Items())
	},
}

var profilesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the role or group assignment of a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		patch := new(client.ProfilePatch)
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("role") {
			role, _ := cmd.Flags().GetString("role")
			patch.Role = &role
		}
		if cmd.Flags().Changed("group") {
			groupID, _ := cmd.Flags().GetString("group")
			patch.GroupID = &groupID
		}

		updated, err := newProfileMirror(portalClient).Update(context.Background(), args[0], patch)
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a profile along with its credential and sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		if err := newProfileMirror(portalClient).Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Profile deleted.")
		return nil
	},
}

func init() {
	profilesEditCmd.Flags().String("name", "", "new display name")
	profilesEditCmd.Flags().String("role", "", "new role ('admin', 'coordinator' or 'user')")
	profilesEditCmd.Flags().String("group", "", "ID of the group the profile is assigned to")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesEditCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
	rootCmd.AddCommand(profilesCmd)
}

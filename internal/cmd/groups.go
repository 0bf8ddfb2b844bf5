package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partnerhub/portal-server/internal/client"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/mirror"
	"github.com/partnerhub/portal-server/internal/profile"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage partner groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func newGroupMirror(portalClient *client.Client) *mirror.Mirror[*group.Group, *client.GroupCreate, *client.GroupPatch] {
	return mirror.New(portalClient.Groups(), func(item *group.Group) string {
		return item.ID
	}, "group", nil)
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all partner groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		groups := newGroupMirror(portalClient)
		if err := groups.Refetch(context.Background()); err != nil {
			return err
		}
		return printJSON(groups.Items())
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new partner group",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return errors.New("--name is required")
		}

		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		create := &client.GroupCreate{Name: name}
		if cmd.Flags().Changed("coordinator") {
			coordinatorID, _ := cmd.Flags().GetString("coordinator")
			create.CoordinatorID = &coordinatorID
		}
		if cmd.Flags().Changed("powerbi-link") {
			link, _ := cmd.Flags().GetString("powerbi-link")
			create.PowerBILink = &link
		}
		if cmd.Flags().Changed("form-link") {
			link, _ := cmd.Flags().GetString("form-link")
			create.FormLink = &link
		}

		created, err := newGroupMirror(portalClient).Create(context.Background(), create)
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var groupsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the name, coordinator or links of a partner group",
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

		patch := new(client.GroupPatch)
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("coordinator") {
			coordinatorID, _ := cmd.Flags().GetString("coordinator")
			patch.CoordinatorID = &coordinatorID
		}
		if cmd.Flags().Changed("powerbi-link") {
			link, _ := cmd.Flags().GetString("powerbi-link")
			patch.PowerBILink = &link
		}
		if cmd.Flags().Changed("form-link") {
			link, _ := cmd.Flags().GetString("form-link")
			patch.FormLink = &link
		}

		updated, err := newGroupMirror(portalClient).Update(context.Background(), args[0], patch)
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a partner group",
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

		if err := newGroupMirror(portalClient).Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Group deleted. Profiles assigned to it keep their group reference.")
		return nil
	},
}

func init() {
	groupsCreateCmd.Flags().String("name", "", "name of the group")
	groupsCreateCmd.Flags().String("coordinator", "", "profile ID of the coordinator")
	groupsCreateCmd.Flags().String("powerbi-link", "", "Power BI dashboard link")
	groupsCreateCmd.Flags().String("form-link", "", "proposal form link")

	groupsEditCmd.Flags().String("name", "", "new name of the group")
	groupsEditCmd.Flags().String("coordinator", "", "profile ID of the coordinator")
	groupsEditCmd.Flags().String("powerbi-link", "", "Power BI dashboard link")
	groupsEditCmd.Flags().String("form-link", "", "proposal form link")

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsEditCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

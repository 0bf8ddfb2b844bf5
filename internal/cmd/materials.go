package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partnerhub/portal-server/internal/client"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/mirror"
	"github.com/partnerhub/portal-server/internal/profile"
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "Manage downloadable materials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func newMaterialMirror(portalClient *client.Client) *mirror.Mirror[*material.Material, *client.MaterialCreate, *client.MaterialPatch] {
	return mirror.New(portalClient.Materials(), func(item *material.Material) string {
		return item.ID
	}, "material", nil)
}

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials",
	RunE: func(cmd *cobra.Command, args []string) error {
		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleUser); err != nil {
			return err
		}

		materials := newMaterialMirror(portalClient)
		if err := materials.Refetch(context.Background()); err != nil {
			return err
		}
		return printJSON(materials.Items())
	},
}

var materialsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new material",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			return errors.New("--title is required")
		}

		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		create := &client.MaterialCreate{Title: title}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			create.Description = &description
		}
		if cmd.Flags().Changed("file-url") {
			fileURL, _ := cmd.Flags().GetString("file-url")
			create.FileURL = &fileURL
		}
		if cmd.Flags().Changed("file-type") {
			fileType, _ := cmd.Flags().GetString("file-type")
			create.FileType = &fileType
		}
		if cmd.Flags().Changed("category") {
			category, _ := cmd.Flags().GetString("category")
			create.Category = &category
		}

		created, err := newMaterialMirror(portalClient).Create(context.Background(), create)
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var materialsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a material",
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

		if err := newMaterialMirror(portalClient).Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Material deleted.")
		return nil
	},
}

func init() {
	materialsCreateCmd.Flags().String("title", "", "title of the material")
	materialsCreateCmd.Flags().String("description", "", "description of the material")
	materialsCreateCmd.Flags().String("file-url", "", "URL of the file the material points to")
	materialsCreateCmd.Flags().String("file-type", "", "file type of the material")
	materialsCreateCmd.Flags().String("category", "", "category of the material")

	materialsCmd.AddCommand(materialsListCmd)
	materialsCmd.AddCommand(materialsCreateCmd)
	materialsCmd.AddCommand(materialsDeleteCmd)
	rootCmd.AddCommand(materialsCmd)
}

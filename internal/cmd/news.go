package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partnerhub/portal-server/internal/client"
	"github.com/partnerhub/portal-server/internal/mirror"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Manage news entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func newNewsMirror(portalClient *client.Client) *mirror.Mirror[*news.News, *client.NewsCreate, *client.NewsPatch] {
	return mirror.New(portalClient.News(), func(item *news.News) string {
		return item.ID
	}, "news entry", nil)
}

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List news entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleUser); err != nil {
			return err
		}

		entries := newNewsMirror(portalClient)
		if err := entries.Refetch(context.Background()); err != nil {
			return err
		}
		return printJSON(entries.Items())
	},
}

var newsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new news entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		if title == "" {
			return errors.New("--title is required")
		}
		if content == "" {
			return errors.New("--content is required")
		}

		portalClient, authCtx, err := newAuthContext()
		if err != nil {
			return err
		}
		defer authCtx.Close()
		if err := requireRole(authCtx, profile.RoleAdmin); err != nil {
			return err
		}

		create := &client.NewsCreate{Title: title, Content: content}
		if cmd.Flags().Changed("category") {
			category, _ := cmd.Flags().GetString("category")
			create.Category = &category
		}
		if cmd.Flags().Changed("urgent") {
			urgent, _ := cmd.Flags().GetBool("urgent")
			create.Urgent = &urgent
		}

		created, err := newNewsMirror(portalClient).Create(context.Background(), create)
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var newsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a news entry",
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

		if err := newNewsMirror(portalClient).Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("News entry deleted.")
		return nil
	},
}

func init() {
	newsCreateCmd.Flags().String("title", "", "title of the news entry")
	newsCreateCmd.Flags().String("content", "", "content of the news entry")
	newsCreateCmd.Flags().String("category", "", "category of the news entry")
	newsCreateCmd.Flags().Bool("urgent", false, "mark the news entry as urgent")

	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsCreateCmd)
	newsCmd.AddCommand(newsDeleteCmd)
	rootCmd.AddCommand(newsCmd)
}

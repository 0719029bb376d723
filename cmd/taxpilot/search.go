package main

import (
	"fmt"

	"github.com/castlemilk/taxpilot/backend/internal/search"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Manage the Algolia expense index",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "configure",
		Short: "Apply index settings",
		Long:  "Pushes searchable attributes, facets and ranking to the expense index. Reads ALGOLIA_APP_ID, ALGOLIA_ADMIN_KEY and ALGOLIA_INDEX_NAME.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.Search.Enabled() {
				return fmt.Errorf("ALGOLIA_APP_ID and ALGOLIA_ADMIN_KEY are required")
			}

			client, err := search.NewAlgoliaClient(search.Config{
				AppID:     cfg.Search.AppID,
				APIKey:    cfg.Search.APIKey,
				IndexName: cfg.Search.IndexName,
			})
			if err != nil {
				return err
			}

			taskID, err := client.ApplySettings(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(fmt.Sprintf("Index %s configured (task %d)", client.IndexName(), taskID)))
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Settings apply asynchronously."))
			return nil
		},
	})
	return cmd
}

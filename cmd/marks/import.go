package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/marks/internal/app"
	"github.com/MrSnakeDoc/marks/internal/config"
	"github.com/MrSnakeDoc/marks/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/marks/internal/store/redis"
	"github.com/MrSnakeDoc/marks/internal/utils"
)

var (
	importFile string
	importUser string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a bookmarks.yaml file once",
	Long: `Import copies the bookmarks of a homepage-style bookmarks.yaml into one
user's collection. URLs the user already has are skipped.

Examples:
  marks import --file bookmarks.yaml --user 7f9c2a
  MARKS_IMPORT_FILE=bookmarks.yaml MARKS_IMPORT_USER=7f9c2a marks import`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" || importUser == "" {
			return fmt.Errorf("--file and --user are required")
		}

		log := cliLogger()
		defer func() { _ = log.Sync() }()

		ctx := context.Background()
		client, err := app.ConnectRedis(ctx, config.LoadRedis(), log)
		if err != nil {
			return err
		}
		defer utils.CloseLogged(client, "redis", log)

		importer := scheduler.NewBookmarkImporter(importFile, importUser, redisstore.NewStore(client, log), log, 0, nil)
		res, err := importer.Import(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "read=%d inserted=%d skipped=%d failed=%d\n",
			res.Read, res.Inserted, res.Skipped, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d bookmarks failed to import", res.Failed)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", os.Getenv("MARKS_IMPORT_FILE"), "bookmarks.yaml to import")
	importCmd.Flags().StringVarP(&importUser, "user", "u", os.Getenv("MARKS_IMPORT_USER"), "user id that receives the bookmarks")
	rootCmd.AddCommand(importCmd)
}

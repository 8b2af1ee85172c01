package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "nayuta",
		Short:        "Terminal music player with playlists",
		Long:         `A terminal music player: browse the catalog, play tracks and playlists, import mp3 files from disk or YouTube.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createSearchCommand())
	rootCmd.AddCommand(app.createGenresCommand())
	rootCmd.AddCommand(app.createTopCommand())
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createPlaylistCommand(ctx))
	rootCmd.AddCommand(app.createProfileCommand())
	rootCmd.AddCommand(app.createHistoryCommand())
	rootCmd.AddCommand(app.createAddCommand(ctx))
	rootCmd.AddCommand(app.createDeleteCommand(ctx))
	rootCmd.AddCommand(app.createDownloadCommand(ctx))
	rootCmd.AddCommand(app.createBackupCommand(ctx))
	rootCmd.AddCommand(app.createRestoreCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))

	return rootCmd
}

// parseTrackIDs разбирает список ID треков из аргументов
func parseTrackIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("неверный ID трека '%s': ID должен быть числом", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

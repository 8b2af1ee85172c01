package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/streaming"
)

// createDeleteCommand создает команду delete с привязкой к экземпляру приложения
func (app *Application) createDeleteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a track by ID",
		Long:  `Delete a track from the catalog file, its S3 object and all playlists.`,
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("❌ Ошибка: неверный ID '%s'. ID должен быть числом.\n", args[0])
				return
			}
			app.deleteTrack(ctx, id)
		},
	}
}

func (app *Application) deleteTrack(ctx context.Context, id int) {
	track, err := app.Data.TrackByID(id)
	if err != nil {
		fmt.Printf("❌ Ошибка: %v\n", err)
		return
	}

	fmt.Printf("🗑️  Удаляем трек: %s - %s\n", track.Artist, track.Title)

	// Удаляем файл из S3, если трек ссылается на объект бакета
	if streaming.IsRemote(track.AudioRef) && app.Config.HasS3() {
		if err := app.deleteFromS3(ctx, track.AudioRef); err != nil {
			fmt.Printf("⚠️  Предупреждение: не удалось удалить файл из S3: %v\n", err)
		} else {
			fmt.Println("✅ Файл успешно удален из S3")
		}
	}

	if err := app.Data.DeleteTrackByID(id); err != nil {
		fmt.Printf("❌ Ошибка удаления трека из данных: %v\n", err)
		return
	}
	if err := app.SaveData(); err != nil {
		fmt.Printf("❌ Ошибка сохранения данных: %v\n", err)
		return
	}

	for _, playlist := range app.Prefs.Playlists() {
		if app.Prefs.RemoveSongFromPlaylist(playlist.ID, id) {
			fmt.Printf("   Трек удален из плейлиста «%s»\n", playlist.Name)
		}
	}

	fmt.Println("✅ Трек успешно удален из библиотеки")
}

func (app *Application) deleteFromS3(ctx context.Context, fileURL string) error {
	storage, err := app.newStorage()
	if err != nil {
		return err
	}

	key, ok := storage.KeyFromURL(fileURL)
	if !ok {
		return fmt.Errorf("URL не относится к бакету %s: %s", app.Config.AwsBucketName, fileURL)
	}
	return storage.DeleteFile(ctx, key)
}

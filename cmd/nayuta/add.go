package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/metadata"
	"github.com/hazadus/nayuta/internal/uploader"
	"github.com/hazadus/nayuta/internal/utils"
)

// uploadTimeout ограничивает время загрузки одного файла
const uploadTimeout = 10 * time.Minute

// createAddCommand создает команду add с привязкой к экземпляру приложения
func (app *Application) createAddCommand(ctx context.Context) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "add [file path]",
		Short: "Add an mp3 file to the catalog",
		Long: `Read tags of an mp3 file and add it to the catalog.
If S3 storage is configured, the file is uploaded and played by URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
			defer cancel()

			track, err := app.importFile(uploadCtx, args[0], !local)
			if err != nil {
				return err
			}
			fmt.Printf("\n📦 Трек добавлен в каталог: ID %d, %s - %s\n", track.ID, track.Artist, track.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Do not upload to S3, reference the local file")
	return cmd
}

// importFile добавляет файл в каталог. Если useS3 и хранилище настроено,
// файл сначала загружается в S3 с отображением прогресса.
func (app *Application) importFile(ctx context.Context, filePath string, useS3 bool) (data.Track, error) {
	var store uploader.ObjectStore
	if useS3 && app.Config.HasS3() {
		storage, err := app.newStorage()
		if err != nil {
			return data.Track{}, err
		}
		store = storage
	}
	uploadService := uploader.NewService(store, app.Data)

	fileInfo, err := metadata.NewExtractor().GetFileInfo(filePath)
	if err != nil {
		return data.Track{}, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	var progress func(int64)
	if store != nil {
		fmt.Printf("📤 Загружаем файл в S3:\n")
		fmt.Printf("   Файл: %s\n", filePath)
		fmt.Printf("   Размер: %s\n", utils.FormatFileSize(fileInfo.Size))
		fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
		fmt.Println()
		progress = uploadProgress(fileInfo.Size)
	} else {
		fmt.Printf("📁 Добавляем локальный файл: %s (%s)\n", filePath, utils.FormatFileSize(fileInfo.Size))
	}

	result, err := uploadService.UploadFile(ctx, filePath, progress)
	if err != nil {
		return data.Track{}, fmt.Errorf("ошибка загрузки файла: %w", err)
	}
	if ctx.Err() != nil {
		return data.Track{}, fmt.Errorf("операция отменена: %w", ctx.Err())
	}
	if result.Uploaded {
		fmt.Printf("\n✅ Файл успешно загружен в S3!\n")
		fmt.Printf("   URL: %s\n", result.AudioRef)
	}

	track := uploadService.UpdateApplicationData(result)
	if err := app.SaveData(); err != nil {
		return data.Track{}, fmt.Errorf("ошибка сохранения данных: %w", err)
	}

	app.Logger.Info().
		Int("track_id", track.ID).
		Str("audio", track.AudioRef).
		Bool("uploaded", result.Uploaded).
		Msg("трек добавлен")
	return track, nil
}

// uploadProgress возвращает обработчик, печатающий прогресс загрузки
func uploadProgress(size int64) func(int64) {
	startTime := time.Now()
	return func(done int64) {
		if done <= 0 || size <= 0 {
			return
		}
		elapsed := time.Since(startTime)
		percentage := float64(done) / float64(size) * 100

		speed := float64(done) / elapsed.Seconds()
		var remaining time.Duration
		if speed > 0 {
			remaining = time.Duration(float64(size-done)/speed) * time.Second
		}

		fmt.Printf("\r📊 Прогресс: %.1f%% | Скорость: %s/s | Прошло: %s | Осталось: %s",
			percentage,
			utils.FormatFileSize(int64(speed)),
			utils.FormatDuration(elapsed),
			utils.FormatDuration(remaining))
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// backupKey - ключ резервной копии настроек в бакете
const backupKey = "backup/nayuta_storage.yaml"

// createBackupCommand создает команду backup
func (app *Application) createBackupCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload user preferences to S3",
		Long:  `Upload profile, play counts, playlists and history to the configured S3 bucket.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.backupPrefs(ctx)
		},
	}
}

// createRestoreCommand создает команду restore
func (app *Application) createRestoreCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore user preferences from S3",
		Long:  `Replace local preferences with the copy previously uploaded by 'backup'.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.restorePrefs(ctx)
		},
	}
}

func (app *Application) backupPrefs(ctx context.Context) error {
	storage, err := app.newStorage()
	if err != nil {
		return err
	}

	content, err := app.Prefs.Export()
	if err != nil {
		return err
	}

	url, err := storage.UploadFile(ctx, bytes.NewReader(content), backupKey)
	if err != nil {
		return fmt.Errorf("ошибка загрузки резервной копии: %w", err)
	}

	fmt.Printf("✅ Настройки сохранены в S3: %s\n", url)
	return nil
}

func (app *Application) restorePrefs(ctx context.Context) error {
	storage, err := app.newStorage()
	if err != nil {
		return err
	}

	content, err := storage.DownloadFile(ctx, backupKey)
	if err != nil {
		return fmt.Errorf("ошибка скачивания резервной копии: %w", err)
	}
	if err := app.Prefs.Import(content); err != nil {
		return err
	}

	fmt.Printf("✅ Настройки восстановлены из S3 (%d плейлистов)\n", len(app.Prefs.Playlists()))
	return nil
}

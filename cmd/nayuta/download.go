package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/spf13/cobra"
)

var (
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	}
	videoIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	badFileNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// maxFileNameLength ограничивает длину имени скачанного файла
const maxFileNameLength = 200

// createDownloadCommand создает команду download с привязкой к экземпляру приложения
func (app *Application) createDownloadCommand(ctx context.Context) *cobra.Command {
	var skipAdd bool

	cmd := &cobra.Command{
		Use:   "download [YouTube URL]",
		Short: "Download audio from YouTube video",
		Long:  `Download audio from YouTube video into the configured download directory and add it to the catalog.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			filePath, err := app.downloadYouTubeAudio(ctx, args[0])
			if err != nil {
				return err
			}
			if skipAdd {
				return nil
			}

			uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
			defer cancel()
			track, err := app.importFile(uploadCtx, filePath, true)
			if err != nil {
				fmt.Printf("⚠️  Файл скачан, но не добавлен в каталог: %v\n", err)
				return nil
			}
			fmt.Printf("\n📦 Трек добавлен в каталог: ID %d, %s - %s\n", track.ID, track.Artist, track.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipAdd, "no-add", false, "Only download, do not add to the catalog")
	return cmd
}

// downloadYouTubeAudio скачивает аудио из YouTube видео и возвращает путь к файлу
func (app *Application) downloadYouTubeAudio(ctx context.Context, url string) (string, error) {
	videoID, err := extractVideoID(url)
	if err != nil {
		return "", fmt.Errorf("ошибка извлечения ID видео: %w", err)
	}

	fmt.Printf("⬇️  Скачиваем аудио для видео ID: %s\n", videoID)

	client := youtube.Client{}
	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("ошибка получения информации о видео: %w", err)
	}

	fmt.Printf("   Название: %s\n", video.Title)
	fmt.Printf("   Автор: %s\n", video.Author)

	audioFormat := findBestAudioFormat(video.Formats)
	if audioFormat == nil {
		return "", fmt.Errorf("аудио формат не найден")
	}
	fmt.Printf("   Формат: itag=%d, качество=%s\n", audioFormat.ItagNo, audioFormat.Quality)

	stream, _, err := client.GetStreamContext(ctx, video, audioFormat)
	if err != nil {
		return "", fmt.Errorf("ошибка получения потока: %w", err)
	}
	defer stream.Close()

	if err := os.MkdirAll(app.Config.DownloadDir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания директории: %w", err)
	}

	// Имя в формате "Title - Artist" позволяет восстановить метаданные без тегов
	fileName := sanitizeFileName(video.Title+" - "+video.Author) + ".mp3"
	filePath := filepath.Join(app.Config.DownloadDir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("ошибка создания файла: %w", err)
	}
	defer file.Close()

	fmt.Printf("   Файл: %s\n", filePath)
	if _, err := io.Copy(file, stream); err != nil {
		return "", fmt.Errorf("ошибка скачивания: %w", err)
	}

	fmt.Printf("✅ Аудио успешно скачано: %s\n", filePath)
	app.Logger.Info().Str("video_id", videoID).Str("path", filePath).Msg("аудио скачано")
	return filePath, nil
}

// extractVideoID извлекает ID видео из различных форматов YouTube URL
func extractVideoID(url string) (string, error) {
	for _, re := range videoURLPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1], nil
		}
	}

	// Передан сам ID видео
	if videoIDPattern.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("не удалось извлечь ID видео из URL: %s", url)
}

// findBestAudioFormat находит лучший аудио формат для скачивания
func findBestAudioFormat(formats youtube.FormatList) *youtube.Format {
	audioFormats := formats.WithAudioChannels()
	if len(audioFormats) == 0 {
		return nil
	}

	// Форматы только со звуком предпочтительнее видео со звуком
	audioOnly := audioFormats.Type("audio")
	if len(audioOnly) > 0 {
		audioFormats = audioOnly
	}

	best := &audioFormats[0]
	for i := range audioFormats {
		format := &audioFormats[i]
		if isMP4(format) != isMP4(best) {
			// MP4/M4A лучше совместимы
			if isMP4(format) {
				best = format
			}
			continue
		}
		if format.Bitrate > best.Bitrate {
			best = format
		}
	}
	return best
}

func isMP4(format *youtube.Format) bool {
	return strings.Contains(format.MimeType, "mp4") || strings.Contains(format.MimeType, "m4a")
}

// sanitizeFileName очищает имя файла от недопустимых символов
func sanitizeFileName(name string) string {
	name = badFileNameChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)

	runes := []rune(name)
	if len(runes) > maxFileNameLength {
		name = string(runes[:maxFileNameLength])
	}
	return name
}

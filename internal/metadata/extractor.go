// Package metadata извлекает метаданные из аудиофайлов
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"

	"github.com/hazadus/nayuta/internal/data"
)

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist string
	Title  string
	Album  string
	Genre  string
	Year   int
}

// FileInfo содержит информацию о файле
type FileInfo struct {
	Size     int64
	Duration time.Duration
}

// Extractor извлекает метаданные из аудиофайлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из потока. Незаполненные теги
// дополняются данными из имени файла.
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	fallback := e.fromFileName(source)

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallback
	}
	tags, err := tag.ReadFrom(reader)
	if err != nil {
		return fallback
	}

	result := TrackMetadata{
		Artist: strings.TrimSpace(tags.Artist()),
		Title:  strings.TrimSpace(tags.Title()),
		Album:  strings.TrimSpace(tags.Album()),
		Genre:  strings.TrimSpace(tags.Genre()),
		Year:   tags.Year(),
	}
	if result.Title == "" {
		result.Title = fallback.Title
	}
	if result.Artist == "" {
		result.Artist = fallback.Artist
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.fromFileName(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	// streamer закрывает файл
	streamer, format, err := mp3.Decode(file)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// GetFileInfo получает размер и длительность файла
func (e *Extractor) GetFileInfo(filePath string) (*FileInfo, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	duration, err := e.GetDuration(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения длительности: %w", err)
	}

	return &FileInfo{
		Size:     fileInfo.Size(),
		Duration: duration,
	}, nil
}

// fromFileName разбирает имя файла в формате "Title - Artist"
func (e *Extractor) fromFileName(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	title, artist, found := strings.Cut(nameWithoutExt, " - ")
	if found && strings.TrimSpace(title) != "" && strings.TrimSpace(artist) != "" {
		return TrackMetadata{
			Title:  strings.TrimSpace(title),
			Artist: strings.TrimSpace(artist),
		}
	}

	return TrackMetadata{
		Artist: data.UnknownArtist,
		Title:  strings.TrimSpace(nameWithoutExt),
	}
}

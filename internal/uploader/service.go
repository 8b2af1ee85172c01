// Package uploader импортирует аудиофайлы в каталог, при необходимости загружая их в S3
package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/metadata"
)

// ObjectStore - хранилище, куда загружаются импортируемые файлы
type ObjectStore interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
}

type metadataSource interface {
	ExtractFromFile(filePath string) metadata.TrackMetadata
	GetFileInfo(filePath string) (*metadata.FileInfo, error)
}

// Service управляет импортом файлов
type Service struct {
	store             ObjectStore
	metadataExtractor metadataSource
	appData           *data.AppData
	keyPrefix         string
}

// NewService создает сервис импорта. Если store равен nil, трек ссылается на локальный файл.
func NewService(store ObjectStore, appData *data.AppData) *Service {
	return &Service{
		store:             store,
		metadataExtractor: metadata.NewExtractor(),
		appData:           appData,
		keyPrefix:         "music",
	}
}

// UploadResult содержит результат импорта
type UploadResult struct {
	AudioRef string // URL в S3 или абсолютный путь к файлу
	Uploaded bool
	Metadata metadata.TrackMetadata
	FileInfo *metadata.FileInfo
}

// UploadFile читает метаданные файла и загружает его в хранилище, если оно задано
func (s *Service) UploadFile(ctx context.Context, filePath string, progressCallback func(int64)) (*UploadResult, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("файл не найден: %s", filePath)
	}

	fileInfo, err := s.metadataExtractor.GetFileInfo(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	trackMetadata := s.metadataExtractor.ExtractFromFile(filePath)

	if s.store == nil {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка определения пути: %w", err)
		}
		return &UploadResult{
			AudioRef: absPath,
			Metadata: trackMetadata,
			FileInfo: fileInfo,
		}, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	// Создаем reader с отслеживанием прогресса
	var reader io.Reader = file
	if progressCallback != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       fileInfo.Size,
			OnProgress: progressCallback,
		}
	}

	url, err := s.store.UploadFile(ctx, reader, s.objectKey(filePath))
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	return &UploadResult{
		AudioRef: url,
		Uploaded: true,
		Metadata: trackMetadata,
		FileInfo: fileInfo,
	}, nil
}

// UpdateApplicationData добавляет импортированный трек в каталог и возвращает его
func (s *Service) UpdateApplicationData(result *UploadResult) data.Track {
	track := data.Track{
		Title:    result.Metadata.Title,
		Artist:   result.Metadata.Artist,
		Album:    result.Metadata.Album,
		Genre:    result.Metadata.Genre,
		AudioRef: result.AudioRef,
	}
	if result.FileInfo != nil {
		track.Length = int(result.FileInfo.Duration.Seconds())
		track.FileSize = result.FileInfo.Size
	}

	track = track.Normalized()
	track.ID = s.appData.AddTrack(track)
	return track
}

// objectKey формирует ключ объекта в S3
func (s *Service) objectKey(filePath string) string {
	fileName := filepath.Base(filePath)
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return path.Join(s.keyPrefix, name+".mp3")
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// Package data содержит модель трека и файл каталога
package data

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию для необязательных полей трека
const (
	UnknownArtist = "Unknown Artist"
	UnknownTitle  = "Unknown Title"
	DefaultGenre  = "Other"
)

// ErrTrackNotFound возвращается, если трек с указанным ID отсутствует
var ErrTrackNotFound = errors.New("трек не найден")

// Track описывает трек каталога
type Track struct {
	ID          int    `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Artist      string `yaml:"artist,omitempty" json:"artist,omitempty"`
	AudioRef    string `yaml:"audio" json:"audio"`           // Путь к файлу или URL
	Cover       string `yaml:"cover,omitempty" json:"cover,omitempty"`
	Genre       string `yaml:"genre,omitempty" json:"genre,omitempty"`
	TimesPlayed int    `yaml:"times_played" json:"timesPlayed"`
	Album       string `yaml:"album,omitempty" json:"album,omitempty"`
	Length      int    `yaml:"length,omitempty" json:"length,omitempty"`       // Длина трека в секундах
	FileSize    int64  `yaml:"file_size,omitempty" json:"fileSize,omitempty"` // Размер файла в байтах
}

// Normalized возвращает копию трека с заполненными необязательными полями
func (t Track) Normalized() Track {
	if strings.TrimSpace(t.Title) == "" {
		t.Title = UnknownTitle
	}
	if strings.TrimSpace(t.Artist) == "" {
		t.Artist = UnknownArtist
	}
	if strings.TrimSpace(t.Genre) == "" {
		t.Genre = DefaultGenre
	}
	if t.TimesPlayed < 0 {
		t.TimesPlayed = 0
	}
	return t
}

// HasAudio сообщает, указан ли у трека источник звука
func (t Track) HasAudio() bool {
	return strings.TrimSpace(t.AudioRef) != ""
}

// AppData хранит содержимое файла каталога
type AppData struct {
	Tracks []Track `yaml:"tracks"`
}

// NewAppData создает новую структуру AppData
func NewAppData() *AppData {
	return &AppData{
		Tracks: make([]Track, 0),
	}
}

// LoadData загружает данные из файла
func (d *AppData) LoadData(filePath string) error {
	path, err := expandHome(filePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Если файл не найден, инициализируем пустыми данными
		if os.IsNotExist(err) {
			*d = *NewAppData()
			return nil
		}
		return fmt.Errorf("ошибка чтения файла данных: %w", err)
	}
	if len(data) == 0 {
		*d = *NewAppData()
		return nil
	}

	loaded := NewAppData()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("ошибка разбора данных: %w", err)
	}
	*d = *loaded
	return nil
}

// AddTrack добавляет новый трек и возвращает присвоенный ему ID
func (d *AppData) AddTrack(track Track) int {
	// Найдем максимальный ID и присваиваем новый треку
	maxID := 0
	for _, t := range d.Tracks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	track.ID = maxID + 1
	d.Tracks = append(d.Tracks, track)
	return track.ID
}

// DeleteTrackByID удаляет трек по ID
func (d *AppData) DeleteTrackByID(id int) error {
	for i := range d.Tracks {
		if d.Tracks[i].ID == id {
			d.Tracks = append(d.Tracks[:i], d.Tracks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("трека с ID %d: %w", id, ErrTrackNotFound)
}

// SaveData сохраняет данные в файл
func (d *AppData) SaveData(filePath string) error {
	path, err := expandHome(filePath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	return nil
}

// TrackByID возвращает трек по ID
func (d *AppData) TrackByID(id int) (*Track, error) {
	for i := range d.Tracks {
		if d.Tracks[i].ID == id {
			return &d.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("трека с ID %d: %w", id, ErrTrackNotFound)
}

// ExpandHome раскрывает тильду в начале пути
func ExpandHome(path string) (string, error) {
	return expandHome(path)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", home, 1), nil
}

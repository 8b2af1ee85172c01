package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalized(t *testing.T) {
	tests := []struct {
		name     string
		input    Track
		expected Track
	}{
		{
			name:     "пустые необязательные поля",
			input:    Track{ID: 1, Title: "Song", AudioRef: "a.mp3"},
			expected: Track{ID: 1, Title: "Song", Artist: UnknownArtist, AudioRef: "a.mp3", Genre: DefaultGenre},
		},
		{
			name:     "пустое название и отрицательный счетчик",
			input:    Track{ID: 2, Title: "  ", Artist: "A", Genre: "Rock", TimesPlayed: -5},
			expected: Track{ID: 2, Title: UnknownTitle, Artist: "A", Genre: "Rock"},
		},
		{
			name:     "заполненный трек не меняется",
			input:    Track{ID: 3, Title: "T", Artist: "A", Genre: "Pop", TimesPlayed: 7, Cover: "c.jpg"},
			expected: Track{ID: 3, Title: "T", Artist: "A", Genre: "Pop", TimesPlayed: 7, Cover: "c.jpg"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.input.Normalized()
			if result != test.expected {
				t.Errorf("Ожидалось %+v, получено %+v", test.expected, result)
			}
		})
	}
}

func TestHasAudio(t *testing.T) {
	if (Track{AudioRef: " "}).HasAudio() {
		t.Error("Трек с пустым AudioRef не должен иметь источника")
	}
	if !(Track{AudioRef: "a.mp3"}).HasAudio() {
		t.Error("Трек с AudioRef должен иметь источник")
	}
}

func TestAddAndDeleteTrack(t *testing.T) {
	appData := NewAppData()

	first := appData.AddTrack(Track{Title: "One", AudioRef: "1.mp3"})
	second := appData.AddTrack(Track{Title: "Two", AudioRef: "2.mp3"})
	if first != 1 || second != 2 {
		t.Fatalf("Ожидались ID 1 и 2, получено %d и %d", first, second)
	}

	if err := appData.DeleteTrackByID(1); err != nil {
		t.Fatalf("Ошибка удаления трека: %v", err)
	}
	if len(appData.Tracks) != 1 || appData.Tracks[0].ID != 2 {
		t.Errorf("После удаления должен остаться трек с ID 2: %+v", appData.Tracks)
	}

	// ID продолжает расти после удаления
	third := appData.AddTrack(Track{Title: "Three"})
	if third != 3 {
		t.Errorf("Ожидался ID 3, получено %d", third)
	}

	err := appData.DeleteTrackByID(42)
	if !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Ожидалась ошибка ErrTrackNotFound, получено %v", err)
	}
}

func TestTrackByID(t *testing.T) {
	appData := NewAppData()
	appData.AddTrack(Track{Title: "Hey Jude", Artist: "The Beatles"})
	appData.AddTrack(Track{Title: "Bohemian Rhapsody", Artist: "Queen"})

	found, err := appData.TrackByID(2)
	if err != nil {
		t.Fatalf("Ошибка при поиске трека по ID: %v", err)
	}
	if found.Artist != "Queen" {
		t.Errorf("Ожидался Artist: Queen, получено: %s", found.Artist)
	}

	if _, err := appData.TrackByID(999); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Ожидалась ошибка ErrTrackNotFound, получено %v", err)
	}
}

func TestSaveAndLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	appData := NewAppData()
	appData.AddTrack(Track{Title: "Travelers", Artist: "Andrew Prahlow", AudioRef: "Src/Music/Travelers.mp3", Genre: "Pop", TimesPlayed: 5000})
	if err := appData.SaveData(path); err != nil {
		t.Fatalf("Ошибка сохранения данных: %v", err)
	}

	loaded := NewAppData()
	if err := loaded.LoadData(path); err != nil {
		t.Fatalf("Ошибка загрузки данных: %v", err)
	}
	if len(loaded.Tracks) != 1 {
		t.Fatalf("Ожидался 1 трек, получено %d", len(loaded.Tracks))
	}
	if loaded.Tracks[0] != appData.Tracks[0] {
		t.Errorf("Загруженный трек отличается: %+v != %+v", loaded.Tracks[0], appData.Tracks[0])
	}
}

func TestLoadDataMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	appData := &AppData{Tracks: []Track{{ID: 1}}}
	if err := appData.LoadData(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("Отсутствующий файл не должен вызывать ошибку: %v", err)
	}
	if len(appData.Tracks) != 0 {
		t.Errorf("Ожидался пустой каталог, получено %d треков", len(appData.Tracks))
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}
	if err := appData.LoadData(empty); err != nil {
		t.Fatalf("Пустой файл не должен вызывать ошибку: %v", err)
	}
}

func TestLoadDataInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("tracks: [unclosed"), 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}

	appData := NewAppData()
	if err := appData.LoadData(path); err == nil {
		t.Error("Ожидалась ошибка при разборе некорректного YAML")
	}
}

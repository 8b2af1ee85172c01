package player

import (
	"time"

	"github.com/hazadus/nayuta/internal/data"
)

// Status - состояние воспроизведения
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusEnded
)

// String возвращает название состояния
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return "Loading"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// VolumeLevel - индикатор громкости для отображения
type VolumeLevel int

const (
	LevelMute VolumeLevel = iota
	LevelLow
	LevelFull
)

// String возвращает название уровня громкости
func (l VolumeLevel) String() string {
	switch l {
	case LevelMute:
		return "mute"
	case LevelLow:
		return "low"
	case LevelFull:
		return "full"
	default:
		return "unknown"
	}
}

// levelFor вычисляет индикатор громкости
func levelFor(volume float64, muted bool) VolumeLevel {
	switch {
	case muted || volume == 0:
		return LevelMute
	case volume < 0.5:
		return LevelLow
	default:
		return LevelFull
	}
}

// Подписи, которые показываются вместо трека с некорректным источником
const (
	ErrorTitle  = "Track Error"
	ErrorArtist = "Invalid file path"
)

// Display - то, что виджет плеера показывает о текущем треке
type Display struct {
	Title  string
	Artist string
	Cover  string
	Failed bool
}

func displayFor(track data.Track) Display {
	return Display{
		Title:  track.Title,
		Artist: track.Artist,
		Cover:  track.Cover,
	}
}

func errorDisplay() Display {
	return Display{
		Title:  ErrorTitle,
		Artist: ErrorArtist,
		Failed: true,
	}
}

// PlaybackState - снимок состояния движка
type PlaybackState struct {
	Playlist     []data.Track
	CurrentIndex int // -1, если трек не выбран
	Status       Status
	Loop         bool
	Volume       float64
	Muted        bool
	Level        VolumeLevel
	Display      Display
	Position     time.Duration
	Duration     time.Duration
}

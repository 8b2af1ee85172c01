package player

import (
	"time"

	"github.com/hazadus/nayuta/internal/data"
)

// EventType - тип события движка
type EventType int

const (
	EventPlaylistLoaded EventType = iota
	EventLoaded
	EventPlay
	EventPause
	EventVolumeChanged
	EventLoopChanged
	EventTimeUpdate
	EventLoadFailed
	EventEnded
)

// String возвращает название типа события
func (t EventType) String() string {
	switch t {
	case EventPlaylistLoaded:
		return "playlist_loaded"
	case EventLoaded:
		return "loaded"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventVolumeChanged:
		return "volume"
	case EventLoopChanged:
		return "loop"
	case EventTimeUpdate:
		return "timeupdate"
	case EventLoadFailed:
		return "load_failed"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event - событие, которое движок отправляет подписчикам
type Event interface {
	Type() EventType
}

// PlaylistLoaded отправляется после замены плейлиста
type PlaylistLoaded struct {
	Tracks   int
	Fallback bool // Вместо пустого списка подставлен встроенный трек
}

// Loaded отправляется, когда источник трека привязан к выводу
type Loaded struct {
	Index int
	Track data.Track
}

// Play отправляется после успешного запуска или возобновления
type Play struct {
	Index   int
	Track   data.Track
	Resumed bool
}

// Pause отправляется при паузе, отказе в запуске и остановке в конце плейлиста
type Pause struct {
	Index int
}

// VolumeChanged отправляется при изменении громкости или режима без звука
type VolumeChanged struct {
	Volume float64
	Muted  bool
	Level  VolumeLevel
}

// LoopChanged отправляется при переключении повтора плейлиста
type LoopChanged struct {
	Loop bool
}

// TimeUpdate сообщает позицию воспроизведения
type TimeUpdate struct {
	Current    time.Duration
	Duration   time.Duration
	StuckCount int
}

// LoadFailed отправляется, если у трека некорректный источник
type LoadFailed struct {
	Index int
	Err   error
}

// Ended отправляется, когда трек доиграл до конца
type Ended struct {
	Index int
}

func (PlaylistLoaded) Type() EventType { return EventPlaylistLoaded }
func (Loaded) Type() EventType         { return EventLoaded }
func (Play) Type() EventType           { return EventPlay }
func (Pause) Type() EventType          { return EventPause }
func (VolumeChanged) Type() EventType  { return EventVolumeChanged }
func (LoopChanged) Type() EventType    { return EventLoopChanged }
func (TimeUpdate) Type() EventType     { return EventTimeUpdate }
func (LoadFailed) Type() EventType     { return EventLoadFailed }
func (Ended) Type() EventType          { return EventEnded }

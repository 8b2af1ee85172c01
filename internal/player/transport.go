package player

import (
	"errors"
	"time"
)

var (
	// ErrEmptyAudioRef - у трека не указан источник звука
	ErrEmptyAudioRef = errors.New("не указан путь к аудиофайлу")
	// ErrNoSource - вывод не привязан ни к одному источнику
	ErrNoSource = errors.New("источник не загружен")
	// ErrNotSeekable - источник читается потоком и не перематывается
	ErrNotSeekable = errors.New("источник не поддерживает перемотку")
)

// Progress - обновление позиции от вывода звука
type Progress struct {
	Current    time.Duration // Текущая позиция
	Total      time.Duration // Общая продолжительность
	IsPlaying  bool          // Воспроизводится ли трек
	StuckCount int           // Счетчик зависших состояний
}

// Transport - вывод звука, которым управляет движок.
// Реализация не должна вызывать обработчики, удерживая собственные блокировки.
type Transport interface {
	// Load привязывает источник. При ошибке прежний источник остается привязанным.
	Load(ref string) error
	// Play запускает воспроизведение и сообщает результат через result,
	// возможно синхронно.
	Play(result func(error))
	Pause()
	Stop()
	Seek(pos time.Duration) error
	SetVolume(volume float64, muted bool)
	// Duration возвращает длительность источника или 0, если она неизвестна
	Duration() time.Duration
	SetHandlers(onProgress func(Progress), onEnded func())
	Close() error
}

// PlayCounter учитывает успешные запуски треков
type PlayCounter interface {
	IncrementPlayCount(id int)
}

package player

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/hazadus/nayuta/internal/streaming"
)

// Opener открывает аудиоисточник по ссылке
type Opener func(ctx context.Context, ref string) (io.ReadCloser, error)

// BeepTransport выводит MP3 через динамики с помощью beep
type BeepTransport struct {
	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.Mutex
	logger zerolog.Logger
	open   Opener

	isInitialized bool
	sampleRate    beep.SampleRate

	// Компоненты для воспроизведения
	source   io.ReadCloser
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	attached bool // Поток передан динамикам

	// playbackID отличает обратные вызовы текущего запуска от устаревших
	playbackID  uint64
	stopMonitor chan struct{}

	level float64
	muted bool

	onProgress func(Progress)
	onEnded    func()
}

// NewBeepTransport создает вывод звука. Динамики инициализируются при первом запуске.
func NewBeepTransport(logger zerolog.Logger) *BeepTransport {
	ctx, cancel := context.WithCancel(context.Background())
	return &BeepTransport{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		open: func(ctx context.Context, ref string) (io.ReadCloser, error) {
			return streaming.Open(ctx, ref, streaming.DefaultBufferSize)
		},
		level: DefaultVolume,
	}
}

// SetHandlers задает обработчики прогресса и окончания трека
func (t *BeepTransport) SetHandlers(onProgress func(Progress), onEnded func()) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.onProgress = onProgress
	t.onEnded = onEnded
}

// Load открывает и декодирует источник. Прежний источник закрывается только после успеха.
func (t *BeepTransport) Load(ref string) error {
	source, err := t.open(t.ctx, ref)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(source)
	if err != nil {
		source.Close()
		return fmt.Errorf("ошибка декодирования MP3: %w", err)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.stopInternal()
	t.source = source
	t.streamer = streamer
	t.format = format
	t.logger.Debug().Str("ref", ref).Int("sample_rate", int(format.SampleRate)).Msg("источник загружен")
	return nil
}

// Play запускает или возобновляет воспроизведение
func (t *BeepTransport) Play(result func(error)) {
	err := t.play()
	result(err)
}

func (t *BeepTransport) play() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.streamer == nil {
		return ErrNoSource
	}

	// Инициализируем speaker (только один раз)
	if !t.isInitialized {
		sampleRate := t.format.SampleRate
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/5)); err != nil {
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		t.sampleRate = sampleRate
		t.isInitialized = true
	}

	if t.attached {
		speaker.Lock()
		t.ctrl.Paused = false
		speaker.Unlock()
		return nil
	}

	speaker.Lock()
	err := rewindIfFinished(t.streamer)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("ошибка перемотки в начало: %w", err)
	}

	var stream beep.Streamer = t.streamer
	if t.format.SampleRate != t.sampleRate {
		stream = beep.Resample(4, t.format.SampleRate, t.sampleRate, t.streamer)
	}
	t.ctrl = &beep.Ctrl{Streamer: stream}
	t.volume = &effects.Volume{Streamer: t.ctrl, Base: 2}
	t.applyVolume()

	t.playbackID++
	id := t.playbackID
	t.attached = true
	speaker.Play(beep.Seq(t.volume, beep.Callback(func() {
		// Колбэк вызывается под блокировкой динамиков
		go t.finished(id)
	})))

	t.stopMonitor = make(chan struct{})
	go t.monitorProgress(id, t.stopMonitor)
	return nil
}

// finished обрабатывает окончание потока
func (t *BeepTransport) finished(id uint64) {
	t.mutex.Lock()
	if id != t.playbackID || !t.attached {
		t.mutex.Unlock()
		return
	}
	t.attached = false
	t.closeMonitor()
	onEnded := t.onEnded
	t.mutex.Unlock()

	if onEnded != nil {
		onEnded()
	}
}

// Pause приостанавливает воспроизведение
func (t *BeepTransport) Pause() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.attached && t.ctrl != nil {
		speaker.Lock()
		t.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Stop останавливает воспроизведение и закрывает источник
func (t *BeepTransport) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stopInternal()
}

// stopInternal внутренний метод остановки (должен вызываться под мьютексом)
func (t *BeepTransport) stopInternal() {
	t.playbackID++
	t.closeMonitor()

	if t.attached {
		speaker.Clear()
		t.attached = false
	}
	t.ctrl = nil
	t.volume = nil

	if t.streamer != nil {
		t.streamer.Close()
		t.streamer = nil
	}
	if t.source != nil {
		t.source.Close()
		t.source = nil
	}
}

func (t *BeepTransport) closeMonitor() {
	if t.stopMonitor != nil {
		close(t.stopMonitor)
		t.stopMonitor = nil
	}
}

// Seek перематывает источник
func (t *BeepTransport) Seek(pos time.Duration) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.streamer == nil {
		return ErrNoSource
	}

	speaker.Lock()
	defer speaker.Unlock()

	return seekSample(t.streamer, t.format.SampleRate.N(pos))
}

// seekable сообщает, можно ли перематывать поток.
// Декодер источника без io.Seeker не знает длины и возвращает Len() == 0.
func seekable(s beep.StreamSeeker) bool {
	return s.Len() > 0
}

// rewindIfFinished возвращает доигранный поток в начало. Поток без перемотки не трогает.
func rewindIfFinished(s beep.StreamSeeker) error {
	if !seekable(s) || s.Position() < s.Len() {
		return nil
	}
	return s.Seek(0)
}

// seekSample перематывает поток на сэмпл, ограниченный границами потока
func seekSample(s beep.StreamSeeker, sample int) error {
	if !seekable(s) {
		return ErrNotSeekable
	}
	if last := s.Len() - 1; sample > last {
		sample = last
	}
	if sample < 0 {
		sample = 0
	}
	if err := s.Seek(sample); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	return nil
}

// SetVolume задает громкость в диапазоне [0, 1]
func (t *BeepTransport) SetVolume(volume float64, muted bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.level = volume
	t.muted = muted
	if t.volume != nil {
		speaker.Lock()
		t.applyVolume()
		speaker.Unlock()
	}
}

// applyVolume переводит линейную громкость в логарифмическую шкалу beep
func (t *BeepTransport) applyVolume() {
	t.volume.Silent = t.muted || t.level <= 0
	if t.level > 0 {
		t.volume.Volume = math.Log2(t.level)
	}
}

// Duration возвращает длительность источника или 0 для потока без перемотки
func (t *BeepTransport) Duration() time.Duration {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	if !seekable(t.streamer) {
		return 0
	}
	return t.format.SampleRate.D(t.streamer.Len())
}

// Close закрывает вывод и освобождает ресурсы
func (t *BeepTransport) Close() error {
	t.cancel()
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.stopInternal()
	if t.isInitialized {
		speaker.Close()
		t.isInitialized = false
	}
	return nil
}

// monitorProgress раз в секунду сообщает позицию воспроизведения
func (t *BeepTransport) monitorProgress(id uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := time.Duration(-1)
	stuckCount := 0

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			t.mutex.Lock()
			if id != t.playbackID || t.streamer == nil || t.ctrl == nil {
				t.mutex.Unlock()
				return
			}

			speaker.Lock()
			current := t.format.SampleRate.D(t.streamer.Position())
			total := t.format.SampleRate.D(t.streamer.Len())
			paused := t.ctrl.Paused
			speaker.Unlock()
			onProgress := t.onProgress
			t.mutex.Unlock()

			// Проверяем, не застрял ли поток
			if !paused && current == lastPosition {
				stuckCount++
			} else {
				stuckCount = 0
			}
			lastPosition = current

			if onProgress != nil {
				onProgress(Progress{
					Current:    current,
					Total:      total,
					IsPlaying:  !paused,
					StuckCount: stuckCount,
				})
			}
		}
	}
}

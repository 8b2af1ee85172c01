// Package player содержит движок воспроизведения и вывод звука через beep
package player

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hazadus/nayuta/internal/data"
)

// DefaultVolume - громкость нового движка
const DefaultVolume = 0.7

// FallbackTrack подставляется вместо пустого плейлиста
var FallbackTrack = data.Track{
	ID:       9,
	Title:    "UNDEAD",
	Artist:   "YOASOBI",
	AudioRef: "Src/Music/UNDEAD - YOASOBI.mp3",
	Cover:    "Src/Card-img/Undead.jpg",
	Genre:    "Pop",
}

type subscription struct {
	id int
	fn func(Event)
}

// Engine управляет плейлистом и состоянием воспроизведения.
// Все методы безопасны для вызова из разных горутин, в том числе из обработчиков событий.
type Engine struct {
	// loadMu упорядочивает последовательности загрузки и запуска
	loadMu sync.Mutex
	mu     sync.Mutex

	transport Transport
	counter   PlayCounter
	logger    zerolog.Logger
	fallback  data.Track

	playlist   []data.Track
	index      int
	status     Status
	loop       bool
	volume     float64
	muted      bool
	display    Display
	boundRef   string
	position   time.Duration
	duration   time.Duration
	generation uint64
	started    bool // Текущий трек уже запускался после выбора
	closed     bool

	handlers []subscription
	nextSub  int
	pending  []Event
	flushing bool
}

// Option настраивает Engine
type Option func(*Engine)

// WithLogger задает логгер движка
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithVolume задает начальную громкость
func WithVolume(volume float64) Option {
	return func(e *Engine) {
		e.volume = volume
	}
}

// WithLoop задает начальный режим повтора плейлиста
func WithLoop(loop bool) Option {
	return func(e *Engine) {
		e.loop = loop
	}
}

// WithFallback заменяет встроенный трек для пустого плейлиста
func WithFallback(track data.Track) Option {
	return func(e *Engine) {
		e.fallback = track
	}
}

// New создает движок поверх вывода звука. counter может быть nil.
func New(transport Transport, counter PlayCounter, opts ...Option) *Engine {
	e := &Engine{
		transport: transport,
		counter:   counter,
		logger:    zerolog.Nop(),
		fallback:  FallbackTrack,
		index:     -1,
		volume:    DefaultVolume,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.volume = clamp(e.volume)

	transport.SetVolume(e.volume, e.muted)
	transport.SetHandlers(e.handleProgress, e.handleEnded)
	return e
}

// LoadList заменяет плейлист. Пустой список заменяется встроенным треком.
// Воспроизведение не начинается, незавершенные загрузки отменяются.
func (e *Engine) LoadList(tracks []data.Track) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	list := lo.Map(tracks, func(t data.Track, _ int) data.Track {
		return t.Normalized()
	})
	fallback := len(list) == 0
	if fallback {
		list = []data.Track{e.fallback.Normalized()}
	}

	if e.status == StatusPlaying || e.status == StatusLoading {
		e.transport.Pause()
		e.emit(Pause{Index: e.index})
	}

	e.playlist = list
	e.index = -1
	e.status = StatusIdle
	e.generation++
	e.emit(PlaylistLoaded{Tracks: len(list), Fallback: fallback})
	e.logger.Debug().Int("tracks", len(list)).Bool("fallback", fallback).Msg("плейлист загружен")
	e.mu.Unlock()

	e.flush()
}

// PlayIndex выбирает трек плейлиста и запускает его.
// Индекс вне плейлиста сбрасывает текущий трек без обращения к выводу.
func (e *Engine) PlayIndex(i int) {
	e.loadMu.Lock()
	if gen, ok := e.load(i); ok {
		e.start(gen)
	}
	e.loadMu.Unlock()

	e.flush()
}

// load привязывает источник трека i. Вызывается под loadMu.
func (e *Engine) load(i int) (uint64, bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, false
	}
	if i < 0 || i >= len(e.playlist) {
		e.index = -1
		e.status = StatusIdle
		e.generation++
		e.mu.Unlock()
		return 0, false
	}

	track := e.playlist[i]
	previous := e.status
	e.index = i
	e.started = false
	e.generation++
	gen := e.generation

	if !track.HasAudio() {
		e.failLocked(previous, ErrEmptyAudioRef)
		e.mu.Unlock()
		return 0, false
	}

	needLoad := track.AudioRef != e.boundRef
	e.status = StatusLoading
	e.display = displayFor(track)
	e.mu.Unlock()

	// Загрузка может обращаться к сети, поэтому идет без блокировки состояния
	var loadErr error
	if needLoad {
		loadErr = e.transport.Load(track.AudioRef)
	}
	var duration time.Duration
	if loadErr == nil {
		duration = e.transport.Duration()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if loadErr == nil {
		if needLoad {
			e.boundRef = track.AudioRef
			e.position = 0
		}
		e.duration = duration
	}
	if gen != e.generation {
		return 0, false
	}
	if loadErr != nil {
		e.failLocked(previous, fmt.Errorf("ошибка загрузки %q: %w", track.AudioRef, loadErr))
		return 0, false
	}

	e.emit(Loaded{Index: i, Track: track})
	return gen, true
}

// failLocked переводит движок в состояние ошибки трека. Источник вывода не меняется.
func (e *Engine) failLocked(previous Status, err error) {
	if previous == StatusPlaying || previous == StatusLoading {
		e.transport.Pause()
	}
	e.status = StatusIdle
	e.display = errorDisplay()
	e.position = 0
	e.duration = 0
	e.emit(LoadFailed{Index: e.index, Err: err})
	e.logger.Warn().Err(err).Int("index", e.index).Msg("трек не загружен")
}

// start запускает вывод. Результат может прийти синхронно, тогда события
// отправит вызывающий метод.
func (e *Engine) start(gen uint64) {
	var inline atomic.Bool
	inline.Store(true)
	e.transport.Play(func(err error) {
		e.finishStart(gen, err)
		if !inline.Load() {
			e.flush()
		}
	})
	inline.Store(false)
}

// finishStart применяет результат запуска. Счетчик прослушиваний растет
// только при первом успешном запуске выбранного трека.
func (e *Engine) finishStart(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || e.status != StatusLoading || e.index < 0 {
		return
	}
	if err != nil {
		e.status = StatusPaused
		e.emit(Pause{Index: e.index})
		e.logger.Warn().Err(err).Int("index", e.index).Msg("запуск воспроизведения отклонен")
		return
	}

	track := e.playlist[e.index]
	resumed := e.started
	e.started = true
	e.status = StatusPlaying
	if !resumed && e.counter != nil {
		e.counter.IncrementPlayCount(track.ID)
	}
	e.emit(Play{Index: e.index, Track: track, Resumed: resumed})
}

// PlayPause переключает паузу. Без выбранного трека запускает первый трек плейлиста.
func (e *Engine) PlayPause() {
	e.loadMu.Lock()
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		e.loadMu.Unlock()
		return
	}

	if e.index == -1 {
		empty := len(e.playlist) == 0
		e.mu.Unlock()
		e.loadMu.Unlock()
		if !empty {
			e.PlayIndex(0)
		}
		return
	}

	switch e.status {
	case StatusPlaying:
		e.transport.Pause()
		e.status = StatusPaused
		e.emit(Pause{Index: e.index})
		e.mu.Unlock()
		e.loadMu.Unlock()

	case StatusPaused, StatusEnded:
		if e.status == StatusEnded {
			if err := e.transport.Seek(0); err != nil {
				e.logger.Warn().Err(err).Msg("не удалось перемотать трек в начало")
			}
			e.position = 0
		}
		e.status = StatusLoading
		gen := e.generation
		e.mu.Unlock()
		e.start(gen)
		e.loadMu.Unlock()

	case StatusIdle:
		// Повторяем прерванную загрузку
		index := e.index
		e.mu.Unlock()
		e.loadMu.Unlock()
		e.PlayIndex(index)
		return

	default:
		e.mu.Unlock()
		e.loadMu.Unlock()
	}

	e.flush()
}

// PlayNext переходит к следующему треку. В конце плейлиста без повтора
// ставит вывод на паузу и сбрасывает текущий трек.
func (e *Engine) PlayNext() {
	e.mu.Lock()
	n := len(e.playlist)
	if n == 0 || e.closed {
		e.mu.Unlock()
		return
	}

	next := e.index + 1
	if next >= n {
		if !e.loop {
			previous := e.index
			e.transport.Pause()
			e.index = -1
			e.status = StatusIdle
			e.position = 0
			e.generation++
			e.emit(Pause{Index: previous})
			e.mu.Unlock()
			e.flush()
			return
		}
		next = 0
	}
	e.mu.Unlock()

	e.PlayIndex(next)
}

// PlayPrev переходит к предыдущему треку. С первого трека всегда переходит
// на последний, независимо от режима повтора.
func (e *Engine) PlayPrev() {
	e.mu.Lock()
	n := len(e.playlist)
	if n == 0 || e.closed {
		e.mu.Unlock()
		return
	}

	prev := e.index - 1
	if prev < 0 {
		prev = n - 1
	}
	e.mu.Unlock()

	e.PlayIndex(prev)
}

// ToggleLoop переключает повтор плейлиста и возвращает новое значение
func (e *Engine) ToggleLoop() bool {
	e.mu.Lock()
	e.loop = !e.loop
	loop := e.loop
	e.emit(LoopChanged{Loop: loop})
	e.mu.Unlock()

	e.flush()
	return loop
}

// SetVolume задает громкость, ограничивая ее диапазоном [0, 1]
func (e *Engine) SetVolume(volume float64) {
	e.mu.Lock()
	e.volume = clamp(volume)
	e.applyVolumeLocked()
	e.mu.Unlock()

	e.flush()
}

// ToggleMute переключает режим без звука, не меняя громкость
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	e.muted = !e.muted
	muted := e.muted
	e.applyVolumeLocked()
	e.mu.Unlock()

	e.flush()
	return muted
}

func (e *Engine) applyVolumeLocked() {
	e.transport.SetVolume(e.volume, e.muted)
	e.emit(VolumeChanged{
		Volume: e.volume,
		Muted:  e.muted,
		Level:  levelFor(e.volume, e.muted),
	})
}

// Seek перематывает текущий трек на долю его длительности.
// Если длительность неизвестна, ничего не делает.
func (e *Engine) Seek(fraction float64) {
	e.mu.Lock()
	if e.duration <= 0 || e.index < 0 || e.display.Failed {
		e.mu.Unlock()
		return
	}

	pos := time.Duration(clamp(fraction) * float64(e.duration))
	if err := e.transport.Seek(pos); err != nil {
		e.logger.Warn().Err(err).Dur("position", pos).Msg("ошибка перемотки")
		e.mu.Unlock()
		return
	}
	e.position = pos
	e.emit(TimeUpdate{Current: pos, Duration: e.duration})
	e.mu.Unlock()

	e.flush()
}

// State возвращает копию текущего состояния
func (e *Engine) State() PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return PlaybackState{
		Playlist:     slices.Clone(e.playlist),
		CurrentIndex: e.index,
		Status:       e.status,
		Loop:         e.loop,
		Volume:       e.volume,
		Muted:        e.muted,
		Level:        levelFor(e.volume, e.muted),
		Display:      e.display,
		Position:     e.position,
		Duration:     e.duration,
	}
}

// Current возвращает выбранный трек
func (e *Engine) Current() (data.Track, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index < 0 || e.index >= len(e.playlist) {
		return data.Track{}, false
	}
	return e.playlist[e.index], true
}

// Subscribe регистрирует обработчик событий и возвращает функцию отписки.
// Обработчики вызываются по порядку событий, вне блокировки движка.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	e.nextSub++
	id := e.nextSub
	e.handlers = append(e.handlers, subscription{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.handlers = lo.Reject(e.handlers, func(s subscription, _ int) bool {
				return s.id == id
			})
			e.mu.Unlock()
		})
	}
}

// Events возвращает канал событий. Медленный читатель не блокирует движок:
// события накапливаются в очереди. Канал закрывается после отписки.
func (e *Engine) Events(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	signal := make(chan struct{}, 1)
	done := make(chan struct{})

	var (
		mu    sync.Mutex
		queue []Event
	)
	unsubscribe := e.Subscribe(func(ev Event) {
		mu.Lock()
		queue = append(queue, ev)
		mu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(ch)
		for {
			mu.Lock()
			batch := queue
			queue = nil
			mu.Unlock()

			for _, ev := range batch {
				select {
				case ch <- ev:
				case <-done:
					return
				}
			}

			select {
			case <-signal:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}
}

// Close останавливает вывод и отписывает всех подписчиков
func (e *Engine) Close() error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.generation++
	e.status = StatusIdle
	e.handlers = nil
	e.pending = nil
	e.mu.Unlock()

	e.transport.Stop()
	return e.transport.Close()
}

// handleProgress принимает обновления позиции от вывода
func (e *Engine) handleProgress(p Progress) {
	e.mu.Lock()
	if e.status != StatusPlaying && e.status != StatusPaused {
		e.mu.Unlock()
		return
	}
	e.position = p.Current
	if p.Total > 0 {
		e.duration = p.Total
	}
	e.emit(TimeUpdate{Current: e.position, Duration: e.duration, StuckCount: p.StuckCount})
	e.mu.Unlock()

	e.flush()
}

// handleEnded вызывается выводом, когда трек доиграл до конца
func (e *Engine) handleEnded() {
	e.mu.Lock()
	if e.status != StatusPlaying {
		e.mu.Unlock()
		return
	}
	e.status = StatusEnded
	e.position = e.duration
	gen := e.generation
	e.emit(Ended{Index: e.index})
	e.mu.Unlock()

	e.flush()

	// Обработчик Ended мог сам выбрать другой трек
	e.mu.Lock()
	advance := gen == e.generation && e.status == StatusEnded
	e.mu.Unlock()
	if advance {
		e.PlayNext()
	}
}

// emit ставит событие в очередь. Вызывается под mu.
func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

// flush отправляет накопленные события. Если очередь уже разбирается
// другим вызовом, новые события отправит он.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.flushing {
		e.mu.Unlock()
		return
	}
	e.flushing = true

	for len(e.pending) > 0 {
		ev := e.pending[0]
		e.pending = e.pending[1:]
		handlers := slices.Clone(e.handlers)
		e.mu.Unlock()

		for _, h := range handlers {
			h.fn(ev)
		}

		e.mu.Lock()
	}

	e.flushing = false
	e.mu.Unlock()
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

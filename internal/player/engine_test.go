package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hazadus/nayuta/internal/data"
)

// fakeTransport записывает вызовы движка вместо вывода звука
type fakeTransport struct {
	mu sync.Mutex

	bound    string
	playing  bool
	loads    []string
	plays    int
	pauses   int
	seeks    []time.Duration
	volume   float64
	muted    bool
	duration time.Duration
	closed   bool

	failRefs  map[string]error
	denyPlay  error
	asyncPlay bool
	pending   []func(error)

	onProgress func(Progress)
	onEnded    func()
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		duration: 3 * time.Minute,
		failRefs: make(map[string]error),
	}
}

func (f *fakeTransport) Load(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRefs[ref]; err != nil {
		return err
	}
	f.loads = append(f.loads, ref)
	f.bound = ref
	f.playing = false
	return nil
}

func (f *fakeTransport) Play(result func(error)) {
	f.mu.Lock()
	f.plays++
	if f.asyncPlay {
		f.pending = append(f.pending, result)
		f.mu.Unlock()
		return
	}
	err := f.denyPlay
	if err == nil {
		f.playing = true
	}
	f.mu.Unlock()
	result(err)
}

// resolve завершает отложенные запуски
func (f *fakeTransport) resolve(err error) {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	if err == nil && len(pending) > 0 {
		f.playing = true
	}
	f.mu.Unlock()
	for _, result := range pending {
		result(err)
	}
}

func (f *fakeTransport) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.playing = false
}

func (f *fakeTransport) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.bound = ""
}

func (f *fakeTransport) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bound == "" {
		return ErrNoSource
	}
	f.seeks = append(f.seeks, pos)
	return nil
}

func (f *fakeTransport) SetVolume(volume float64, muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
	f.muted = muted
}

func (f *fakeTransport) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bound == "" {
		return 0
	}
	return f.duration
}

func (f *fakeTransport) SetHandlers(onProgress func(Progress), onEnded func()) {
	f.onProgress = onProgress
	f.onEnded = onEnded
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) snapshot() fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeTransport{
		bound:   f.bound,
		playing: f.playing,
		loads:   append([]string(nil), f.loads...),
		plays:   f.plays,
		pauses:  f.pauses,
		seeks:   append([]time.Duration(nil), f.seeks...),
		volume:  f.volume,
		muted:   f.muted,
		closed:  f.closed,
	}
}

// countingCatalog считает вызовы IncrementPlayCount
type countingCatalog struct {
	mu     sync.Mutex
	counts map[int]int
}

func (c *countingCatalog) IncrementPlayCount(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[int]int)
	}
	c.counts[id]++
}

func (c *countingCatalog) count(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[id]
}

// eventLog собирает события движка
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	types := make([]EventType, len(l.events))
	for i, ev := range l.events {
		types[i] = ev.Type()
	}
	return types
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func (l *eventLog) last() Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return nil
	}
	return l.events[len(l.events)-1]
}

func abc() []data.Track {
	return []data.Track{
		{ID: 1, Title: "A", Artist: "Artist A", AudioRef: "a.mp3", Cover: "a.jpg"},
		{ID: 2, Title: "B", Artist: "Artist B", AudioRef: "b.mp3"},
		{ID: 3, Title: "C", AudioRef: "c.mp3"},
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeTransport, *countingCatalog, *eventLog) {
	t.Helper()
	transport := newFakeTransport()
	counter := &countingCatalog{}
	engine := New(transport, counter, opts...)
	log := &eventLog{}
	engine.Subscribe(log.add)
	t.Cleanup(func() { engine.Close() })
	return engine, transport, counter, log
}

func assertTypes(t *testing.T, got []EventType, expected ...EventType) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("Ожидались события %v, получено %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Ожидались события %v, получено %v", expected, got)
		}
	}
}

func TestNewPushesDefaultVolume(t *testing.T) {
	engine, transport, _, _ := newTestEngine(t)

	state := engine.State()
	if state.Volume != DefaultVolume || state.CurrentIndex != -1 || state.Status != StatusIdle {
		t.Errorf("Неожиданное начальное состояние: %+v", state)
	}
	if snap := transport.snapshot(); snap.volume != DefaultVolume {
		t.Errorf("Громкость %v не передана выводу, получено %v", DefaultVolume, snap.volume)
	}
}

func TestPlayIndexValid(t *testing.T) {
	for i, track := range abc() {
		engine, transport, counter, log := newTestEngine(t)
		engine.LoadList(abc())
		log.reset()

		engine.PlayIndex(i)

		state := engine.State()
		expected := track.Normalized()
		if state.CurrentIndex != i {
			t.Errorf("Ожидался индекс %d, получено %d", i, state.CurrentIndex)
		}
		if state.Display.Title != expected.Title || state.Display.Artist != expected.Artist {
			t.Errorf("Отображается %+v, ожидался трек %+v", state.Display, expected)
		}
		if state.Status != StatusPlaying {
			t.Errorf("Ожидался статус Playing, получено %s", state.Status)
		}
		if snap := transport.snapshot(); snap.bound != track.AudioRef || !snap.playing {
			t.Errorf("Вывод должен играть %s: %+v", track.AudioRef, &snap)
		}
		if counter.count(track.ID) != 1 {
			t.Errorf("Счетчик трека %d должен увеличиться один раз", track.ID)
		}
		assertTypes(t, log.types(), EventLoaded, EventPlay)

		play := log.last().(Play)
		if play.Index != i || play.Resumed || play.Track.ID != track.ID {
			t.Errorf("Неожиданное событие Play: %+v", play)
		}
	}
}

func TestPlayIndexOutOfRange(t *testing.T) {
	for _, i := range []int{-5, -1, 3, 100} {
		engine, transport, counter, log := newTestEngine(t)
		engine.LoadList(abc())
		log.reset()

		engine.PlayIndex(i)

		if state := engine.State(); state.CurrentIndex != -1 {
			t.Errorf("PlayIndex(%d): ожидался индекс -1, получено %d", i, state.CurrentIndex)
		}
		snap := transport.snapshot()
		if len(snap.loads) != 0 || snap.plays != 0 || snap.pauses != 0 || len(snap.seeks) != 0 {
			t.Errorf("PlayIndex(%d) не должен обращаться к выводу: %+v", i, &snap)
		}
		if len(counter.counts) != 0 {
			t.Errorf("PlayIndex(%d) не должен менять счетчики", i)
		}
		assertTypes(t, log.types())
	}
}

func TestPlayNextAtEndWithoutLoop(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)
	engine.LoadList(abc())
	engine.PlayIndex(2)
	log.reset()

	engine.PlayNext()

	state := engine.State()
	if state.CurrentIndex != -1 || state.Status != StatusIdle {
		t.Errorf("Ожидался индекс -1 и статус Idle, получено %d и %s", state.CurrentIndex, state.Status)
	}
	if snap := transport.snapshot(); snap.playing || snap.pauses != 1 {
		t.Errorf("Вывод должен быть на паузе: %+v", &snap)
	}
	assertTypes(t, log.types(), EventPause)
	if pause := log.last().(Pause); pause.Index != 2 {
		t.Errorf("Событие Pause должно содержать прежний индекс 2, получено %d", pause.Index)
	}
}

func TestPlayNextAtEndWithLoop(t *testing.T) {
	engine, transport, _, _ := newTestEngine(t)
	engine.LoadList(abc())
	if !engine.ToggleLoop() {
		t.Fatal("Повтор должен включиться")
	}
	engine.PlayIndex(2)

	engine.PlayNext()

	state := engine.State()
	if state.CurrentIndex != 0 || state.Status != StatusPlaying {
		t.Errorf("Ожидался индекс 0 и статус Playing, получено %d и %s", state.CurrentIndex, state.Status)
	}
	if snap := transport.snapshot(); snap.bound != "a.mp3" || !snap.playing {
		t.Errorf("Вывод должен играть трек A: %+v", &snap)
	}
}

func TestPlayNextAdvances(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	engine.LoadList(abc())

	engine.PlayNext()
	if idx := engine.State().CurrentIndex; idx != 0 {
		t.Errorf("С индекса -1 ожидался переход на 0, получено %d", idx)
	}
	engine.PlayNext()
	if idx := engine.State().CurrentIndex; idx != 1 {
		t.Errorf("Ожидался индекс 1, получено %d", idx)
	}
}

func TestPlayPrevWraps(t *testing.T) {
	for _, loop := range []bool{false, true} {
		engine, _, _, _ := newTestEngine(t, WithLoop(loop))
		engine.LoadList(abc())
		engine.PlayIndex(0)

		engine.PlayPrev()

		if idx := engine.State().CurrentIndex; idx != 2 {
			t.Errorf("loop=%v: ожидался индекс 2, получено %d", loop, idx)
		}
	}

	engine, _, _, _ := newTestEngine(t)
	engine.LoadList(abc())
	engine.PlayIndex(2)
	engine.PlayPrev()
	if idx := engine.State().CurrentIndex; idx != 1 {
		t.Errorf("Ожидался индекс 1, получено %d", idx)
	}
}

func TestPlayIndexSameRefDoesNotRestart(t *testing.T) {
	engine, transport, counter, _ := newTestEngine(t)
	tracks := abc()
	tracks = append(tracks, data.Track{ID: 4, Title: "A again", AudioRef: "a.mp3"})
	engine.LoadList(tracks)

	engine.PlayIndex(0)
	engine.Seek(0.5)
	engine.PlayIndex(0)
	engine.PlayIndex(3)

	snap := transport.snapshot()
	if len(snap.loads) != 1 {
		t.Errorf("Источник должен загружаться один раз, загрузок: %v", snap.loads)
	}
	if len(snap.seeks) != 1 {
		t.Errorf("Позиция не должна сбрасываться, перемоток: %v", snap.seeks)
	}
	if pos := engine.State().Position; pos != 90*time.Second {
		t.Errorf("Позиция должна сохраниться, получено %v", pos)
	}
	if counter.count(1) != 2 || counter.count(4) != 1 {
		t.Errorf("Каждый запуск учитывается один раз: %v", counter.counts)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
		level    VolumeLevel
	}{
		{-1, 0, LevelMute},
		{2, 1, LevelFull},
		{0.3, 0.3, LevelLow},
		{0.5, 0.5, LevelFull},
		{0, 0, LevelMute},
	}

	for _, test := range tests {
		engine, transport, _, log := newTestEngine(t)
		engine.SetVolume(test.input)

		state := engine.State()
		if state.Volume != test.expected || state.Level != test.level {
			t.Errorf("SetVolume(%v): громкость %v уровень %s, ожидалось %v %s",
				test.input, state.Volume, state.Level, test.expected, test.level)
		}
		if snap := transport.snapshot(); snap.volume != test.expected {
			t.Errorf("SetVolume(%v): вывод получил %v", test.input, snap.volume)
		}
		ev, ok := log.last().(VolumeChanged)
		if !ok || ev.Volume != test.expected || ev.Level != test.level {
			t.Errorf("SetVolume(%v): неожиданное событие %+v", test.input, log.last())
		}
	}
}

func TestToggleMuteKeepsVolume(t *testing.T) {
	engine, transport, _, _ := newTestEngine(t)
	engine.SetVolume(0.8)

	if !engine.ToggleMute() {
		t.Fatal("Звук должен выключиться")
	}
	state := engine.State()
	if state.Volume != 0.8 || !state.Muted || state.Level != LevelMute {
		t.Errorf("Неожиданное состояние без звука: %+v", state)
	}
	if snap := transport.snapshot(); !snap.muted || snap.volume != 0.8 {
		t.Errorf("Вывод должен получить режим без звука: %+v", &snap)
	}

	engine.ToggleMute()
	if state := engine.State(); state.Muted || state.Level != LevelFull {
		t.Errorf("Звук должен включиться: %+v", state)
	}
}

func TestToggleLoopRoundTrip(t *testing.T) {
	for _, initial := range []bool{false, true} {
		engine, _, _, log := newTestEngine(t, WithLoop(initial))

		engine.ToggleLoop()
		engine.ToggleLoop()

		if engine.State().Loop != initial {
			t.Errorf("Двойное переключение должно вернуть %v", initial)
		}
		assertTypes(t, log.types(), EventLoopChanged, EventLoopChanged)
	}
}

func TestLoadListEmptyUsesFallback(t *testing.T) {
	engine, transport, counter, log := newTestEngine(t)

	engine.LoadList(nil)

	state := engine.State()
	if len(state.Playlist) != 1 || state.Playlist[0].Title != FallbackTrack.Title {
		t.Fatalf("Ожидался встроенный трек, получено %+v", state.Playlist)
	}
	if state.CurrentIndex != -1 || state.Status != StatusIdle {
		t.Errorf("Воспроизведение не должно начинаться: %+v", state)
	}
	loaded, ok := log.last().(PlaylistLoaded)
	if !ok || !loaded.Fallback || loaded.Tracks != 1 {
		t.Errorf("Неожиданное событие: %+v", log.last())
	}

	engine.PlayPause()

	if snap := transport.snapshot(); snap.bound != FallbackTrack.AudioRef || !snap.playing {
		t.Errorf("Должен играть встроенный трек: %+v", &snap)
	}
	if counter.count(FallbackTrack.ID) != 1 {
		t.Error("Запуск встроенного трека должен учитываться")
	}
}

func TestEmptyAudioRef(t *testing.T) {
	engine, transport, counter, log := newTestEngine(t)
	tracks := abc()
	tracks[1].AudioRef = "   "
	engine.LoadList(tracks)
	engine.PlayIndex(0)
	log.reset()

	engine.PlayIndex(1)

	state := engine.State()
	if state.CurrentIndex != 1 {
		t.Errorf("Индекс должен указывать на выбранный трек, получено %d", state.CurrentIndex)
	}
	if !state.Display.Failed || state.Display.Title != ErrorTitle || state.Display.Artist != ErrorArtist {
		t.Errorf("Ожидалась заглушка ошибки, получено %+v", state.Display)
	}
	if state.Status != StatusIdle {
		t.Errorf("Ожидался статус Idle, получено %s", state.Status)
	}

	snap := transport.snapshot()
	if snap.bound != "a.mp3" || len(snap.loads) != 1 {
		t.Errorf("Источник вывода не должен меняться: %+v", &snap)
	}
	if snap.playing {
		t.Error("Прежний трек должен встать на паузу")
	}
	if counter.count(2) != 0 {
		t.Error("Трек с ошибкой не должен учитываться")
	}

	assertTypes(t, log.types(), EventLoadFailed)
	failed := log.last().(LoadFailed)
	if failed.Index != 1 || !errors.Is(failed.Err, ErrEmptyAudioRef) {
		t.Errorf("Неожиданное событие LoadFailed: %+v", failed)
	}

	// Перемотка без источника ничего не делает
	engine.Seek(0.5)
	if snap := transport.snapshot(); len(snap.seeks) != 0 {
		t.Errorf("Перемотка трека с ошибкой не должна доходить до вывода: %v", snap.seeks)
	}
}

func TestLoadErrorKeepsSource(t *testing.T) {
	engine, transport, counter, log := newTestEngine(t)
	transport.failRefs["b.mp3"] = errors.New("файл не найден")
	engine.LoadList(abc())
	engine.PlayIndex(0)
	log.reset()

	engine.PlayIndex(1)

	state := engine.State()
	if state.CurrentIndex != 1 || state.Status != StatusIdle || !state.Display.Failed {
		t.Errorf("Неожиданное состояние после ошибки загрузки: %+v", state)
	}
	if snap := transport.snapshot(); snap.bound != "a.mp3" {
		t.Errorf("Источник не должен меняться, привязан %s", snap.bound)
	}
	if counter.count(2) != 0 {
		t.Error("Трек с ошибкой не должен учитываться")
	}
	assertTypes(t, log.types(), EventLoadFailed)

	// Следующий трек загружается как обычно
	engine.PlayNext()
	if state := engine.State(); state.CurrentIndex != 2 || state.Status != StatusPlaying {
		t.Errorf("После ошибки следующий трек должен играть: %+v", state)
	}
}

func TestPlayPauseToggles(t *testing.T) {
	engine, transport, counter, log := newTestEngine(t)
	engine.LoadList(abc())

	engine.PlayPause()
	if state := engine.State(); state.CurrentIndex != 0 || state.Status != StatusPlaying {
		t.Fatalf("Первое нажатие должно запустить трек 0: %+v", state)
	}

	engine.PlayPause()
	if state := engine.State(); state.Status != StatusPaused {
		t.Errorf("Ожидалась пауза, получено %s", state.Status)
	}
	if snap := transport.snapshot(); snap.playing {
		t.Error("Вывод должен быть на паузе")
	}

	log.reset()
	engine.PlayPause()
	if state := engine.State(); state.Status != StatusPlaying {
		t.Errorf("Ожидалось воспроизведение, получено %s", state.Status)
	}
	play, ok := log.last().(Play)
	if !ok || !play.Resumed {
		t.Errorf("Возобновление должно отправлять Play с Resumed: %+v", log.last())
	}
	if counter.count(1) != 1 {
		t.Errorf("Возобновление не должно увеличивать счетчик: %d", counter.count(1))
	}
	if snap := transport.snapshot(); len(snap.loads) != 1 {
		t.Errorf("Возобновление не должно перезагружать источник: %v", snap.loads)
	}
}

func TestPlayPauseRetriesAfterDenial(t *testing.T) {
	engine, transport, counter, log := newTestEngine(t)
	transport.denyPlay = errors.New("автовоспроизведение запрещено")
	engine.LoadList(abc())

	engine.PlayIndex(0)
	if state := engine.State(); state.Status != StatusPaused || state.CurrentIndex != 0 {
		t.Fatalf("Отказ в запуске должен оставить паузу: %+v", state)
	}
	if _, ok := log.last().(Pause); !ok {
		t.Errorf("Ожидалось событие Pause, получено %+v", log.last())
	}
	if counter.count(1) != 0 {
		t.Error("Отклоненный запуск не должен учитываться")
	}

	transport.mu.Lock()
	transport.denyPlay = nil
	transport.mu.Unlock()

	engine.PlayPause()
	if state := engine.State(); state.Status != StatusPlaying {
		t.Errorf("Повторный запуск должен пройти, получено %s", state.Status)
	}
	play, ok := log.last().(Play)
	if !ok || play.Resumed {
		t.Errorf("Первый успешный запуск не является возобновлением: %+v", log.last())
	}
	if counter.count(1) != 1 {
		t.Errorf("Успешный запуск должен учитываться один раз, получено %d", counter.count(1))
	}
}

func TestPlayPauseRetriesFailedLoad(t *testing.T) {
	engine, transport, _, _ := newTestEngine(t)
	transport.failRefs["a.mp3"] = errors.New("нет сети")
	engine.LoadList(abc())

	engine.PlayIndex(0)
	if state := engine.State(); state.Status != StatusIdle || state.CurrentIndex != 0 {
		t.Fatalf("Ожидался статус Idle на треке 0: %+v", state)
	}

	delete(transport.failRefs, "a.mp3")
	engine.PlayPause()

	if state := engine.State(); state.Status != StatusPlaying || state.Display.Failed {
		t.Errorf("Повтор загрузки должен запустить трек: %+v", state)
	}
}

func TestPlayPauseEmptyPlaylist(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)

	engine.PlayPause()
	engine.PlayNext()
	engine.PlayPrev()

	if snap := transport.snapshot(); snap.plays != 0 || snap.pauses != 0 {
		t.Errorf("Без плейлиста вывод не должен вызываться: %+v", &snap)
	}
	assertTypes(t, log.types())
}

func TestAsyncStartSupersededByNewLoad(t *testing.T) {
	engine, transport, counter, log := newTestEngine(t)
	transport.asyncPlay = true
	engine.LoadList(abc())

	engine.PlayIndex(0)
	if state := engine.State(); state.Status != StatusLoading {
		t.Fatalf("До ответа вывода ожидался статус Loading, получено %s", state.Status)
	}

	// Новый выбор делает прежний запуск устаревшим
	engine.PlayIndex(1)
	log.reset()
	transport.resolve(nil)

	state := engine.State()
	if state.CurrentIndex != 1 || state.Status != StatusPlaying {
		t.Errorf("Должен играть трек 1: %+v", state)
	}
	if counter.count(1) != 0 || counter.count(2) != 1 {
		t.Errorf("Учитывается только актуальный запуск: %v", counter.counts)
	}
	assertTypes(t, log.types(), EventPlay)
}

func TestLoadListSupersedesPendingStart(t *testing.T) {
	engine, transport, counter, _ := newTestEngine(t)
	transport.asyncPlay = true
	engine.LoadList(abc())
	engine.PlayIndex(0)

	engine.LoadList(abc()[1:])
	transport.resolve(nil)

	state := engine.State()
	if state.CurrentIndex != -1 || state.Status != StatusIdle {
		t.Errorf("Новый плейлист не должен запускаться: %+v", state)
	}
	if counter.count(1) != 0 {
		t.Error("Устаревший запуск не должен учитываться")
	}
}

func TestNaturalEndAdvances(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)
	engine.LoadList(abc())
	engine.PlayIndex(0)
	log.reset()

	transport.onEnded()

	types := log.types()
	assertTypes(t, types, EventEnded, EventLoaded, EventPlay)
	if state := engine.State(); state.CurrentIndex != 1 || state.Status != StatusPlaying {
		t.Errorf("После окончания должен играть следующий трек: %+v", state)
	}

	// В конце плейлиста без повтора движок останавливается
	engine.PlayIndex(2)
	transport.onEnded()
	if state := engine.State(); state.CurrentIndex != -1 || state.Status != StatusIdle {
		t.Errorf("В конце плейлиста ожидался статус Idle: %+v", state)
	}

	// Окончание без воспроизведения игнорируется
	log.reset()
	transport.onEnded()
	assertTypes(t, log.types())
}

func TestProgressUpdatesPosition(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)
	engine.LoadList(abc())

	// До запуска обновления игнорируются
	transport.onProgress(Progress{Current: time.Second, Total: time.Minute})
	assertTypes(t, log.types(), EventPlaylistLoaded)

	engine.PlayIndex(0)
	transport.onProgress(Progress{Current: 10 * time.Second, Total: 2 * time.Minute, IsPlaying: true, StuckCount: 2})

	update, ok := log.last().(TimeUpdate)
	if !ok || update.Current != 10*time.Second || update.Duration != 2*time.Minute || update.StuckCount != 2 {
		t.Errorf("Неожиданное событие TimeUpdate: %+v", log.last())
	}
	if state := engine.State(); state.Position != 10*time.Second || state.Duration != 2*time.Minute {
		t.Errorf("Позиция не обновилась: %+v", state)
	}
}

func TestSeek(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)
	engine.LoadList(abc())

	engine.Seek(0.5)
	if snap := transport.snapshot(); len(snap.seeks) != 0 {
		t.Errorf("Без трека перемотка не выполняется: %v", snap.seeks)
	}

	engine.PlayIndex(0)
	engine.Seek(0.25)
	engine.Seek(7)
	engine.Seek(-1)

	expected := []time.Duration{45 * time.Second, 3 * time.Minute, 0}
	snap := transport.snapshot()
	if len(snap.seeks) != len(expected) {
		t.Fatalf("Ожидались перемотки %v, получено %v", expected, snap.seeks)
	}
	for i := range expected {
		if snap.seeks[i] != expected[i] {
			t.Errorf("Перемотка %d: ожидалось %v, получено %v", i, expected[i], snap.seeks[i])
		}
	}
	if _, ok := log.last().(TimeUpdate); !ok {
		t.Errorf("Перемотка должна отправлять TimeUpdate: %+v", log.last())
	}
}

func TestSeekUnknownDuration(t *testing.T) {
	engine, transport, _, _ := newTestEngine(t)
	transport.duration = 0
	engine.LoadList(abc())
	engine.PlayIndex(0)

	engine.Seek(0.5)

	if snap := transport.snapshot(); len(snap.seeks) != 0 {
		t.Errorf("При неизвестной длительности перемотка не выполняется: %v", snap.seeks)
	}
}

func TestHandlersMayCallBack(t *testing.T) {
	engine, transport, _, _ := newTestEngine(t)
	engine.LoadList(abc())

	// Обработчик, пропускающий трек с индексом 0
	engine.Subscribe(func(ev Event) {
		if play, ok := ev.(Play); ok && play.Index == 0 {
			engine.PlayNext()
		}
	})

	engine.PlayIndex(0)

	if state := engine.State(); state.CurrentIndex != 1 || state.Status != StatusPlaying {
		t.Errorf("Обработчик должен был переключить трек: %+v", state)
	}
	if snap := transport.snapshot(); snap.bound != "b.mp3" {
		t.Errorf("Должен играть трек B, привязан %s", snap.bound)
	}
}

func TestUnsubscribe(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	received := 0
	unsubscribe := engine.Subscribe(func(Event) { received++ })
	engine.ToggleLoop()
	unsubscribe()
	unsubscribe()
	engine.ToggleLoop()

	if received != 1 {
		t.Errorf("Ожидалось 1 событие до отписки, получено %d", received)
	}
}

func TestEventsChannel(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	events, cancel := engine.Events(0)
	engine.LoadList(abc())
	engine.PlayIndex(0)

	expected := []EventType{EventPlaylistLoaded, EventLoaded, EventPlay}
	for _, want := range expected {
		select {
		case ev := <-events:
			if ev.Type() != want {
				t.Fatalf("Ожидалось событие %s, получено %s", want, ev.Type())
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Событие %s не получено", want)
		}
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			// Допустимо получить событие, отправленное до отписки
			for range events {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Канал должен закрыться после отписки")
	}
}

func TestCurrentAndStateCopy(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	engine.LoadList(abc())

	if _, ok := engine.Current(); ok {
		t.Error("До выбора трека Current должен вернуть false")
	}

	engine.PlayIndex(1)
	track, ok := engine.Current()
	if !ok || track.ID != 2 {
		t.Errorf("Ожидался трек 2, получено %+v", track)
	}

	state := engine.State()
	state.Playlist[0].Title = "changed"
	if engine.State().Playlist[0].Title != "A" {
		t.Error("State должен возвращать копию плейлиста")
	}
}

func TestLoadListPausesActivePlayback(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)
	engine.LoadList(abc())
	engine.PlayIndex(0)
	log.reset()

	engine.LoadList(abc())

	assertTypes(t, log.types(), EventPause, EventPlaylistLoaded)
	if snap := transport.snapshot(); snap.playing {
		t.Error("Замена плейлиста должна остановить воспроизведение")
	}
}

func TestClose(t *testing.T) {
	engine, transport, _, log := newTestEngine(t)
	engine.LoadList(abc())
	engine.PlayIndex(0)

	if err := engine.Close(); err != nil {
		t.Fatalf("Ошибка закрытия: %v", err)
	}
	if snap := transport.snapshot(); !snap.closed || snap.bound != "" {
		t.Errorf("Вывод должен быть остановлен и закрыт: %+v", &snap)
	}

	log.reset()
	engine.PlayPause()
	engine.LoadList(abc())
	engine.PlayIndex(1)
	assertTypes(t, log.types())

	if err := engine.Close(); err != nil {
		t.Errorf("Повторное закрытие не должно возвращать ошибку: %v", err)
	}
}

func TestStatusStrings(t *testing.T) {
	if StatusPlaying.String() != "Playing" || Status(42).String() != "Unknown" {
		t.Error("Неожиданные названия статусов")
	}
	if LevelLow.String() != "low" || EventTimeUpdate.String() != "timeupdate" {
		t.Error("Неожиданные названия уровней или событий")
	}
}

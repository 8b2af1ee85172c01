package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazadus/nayuta/internal/data"
)

func testTracks() []data.Track {
	return []data.Track{
		{ID: 1, Title: "Alpha", Artist: "First", AudioRef: "a.mp3", Genre: "Rock", TimesPlayed: 10},
		{ID: 2, Title: "Beta", Artist: "Second", AudioRef: "b.mp3", Genre: "Pop", TimesPlayed: 30},
		{ID: 3, Title: "Gamma", Artist: "alpha fan", AudioRef: "c.mp3", Genre: "pop", TimesPlayed: 30},
		{ID: 4, Title: "Delta", AudioRef: "d.mp3", TimesPlayed: 5},
	}
}

func TestNewNormalizesTracks(t *testing.T) {
	p := New(testTracks())

	track, ok := p.ByID(4)
	if !ok {
		t.Fatal("Трек с ID 4 должен существовать")
	}
	if track.Artist != data.UnknownArtist {
		t.Errorf("Ожидался исполнитель %q, получено %q", data.UnknownArtist, track.Artist)
	}
	if track.Genre != data.DefaultGenre {
		t.Errorf("Ожидался жанр %q, получено %q", data.DefaultGenre, track.Genre)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	p := New(testTracks())

	all := p.All()
	all[0].Title = "Changed"

	track, _ := p.ByID(1)
	if track.Title != "Alpha" {
		t.Errorf("Изменение копии не должно влиять на каталог, получено %q", track.Title)
	}
	if p.Len() != 4 {
		t.Errorf("Ожидалось 4 трека, получено %d", p.Len())
	}
}

func TestByIDUnknown(t *testing.T) {
	p := New(testTracks())
	if _, ok := p.ByID(99); ok {
		t.Error("Неизвестный ID не должен находиться")
	}
}

func TestSearch(t *testing.T) {
	p := New(testTracks())

	tests := []struct {
		name     string
		query    string
		expected []int
	}{
		{"пустой запрос", "", []int{1, 2, 3, 4}},
		{"по названию без учета регистра", "BETA", []int{2}},
		{"по названию и исполнителю", "alpha", []int{1, 3}},
		{"нет совпадений", "zzz", []int{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assertIDs(t, p.Search(test.query), test.expected)
		})
	}
}

func TestFilter(t *testing.T) {
	p := New(testTracks())

	assertIDs(t, p.Filter("", "Pop"), []int{2, 3})
	assertIDs(t, p.Filter("gamma", "pop"), []int{3})
	assertIDs(t, p.Filter("alpha", "Rock"), []int{1})
	assertIDs(t, p.Filter("", "Other"), []int{4})
}

func TestTopN(t *testing.T) {
	p := New(testTracks())

	// При равных счетчиках сохраняется исходный порядок
	assertIDs(t, p.TopN(3), []int{2, 3, 1})
	assertIDs(t, p.TopN(10), []int{2, 3, 1, 4})
	assertIDs(t, p.TopN(0), []int{})
	assertIDs(t, p.TopN(-1), []int{})
}

func TestTopNWith(t *testing.T) {
	p := New(testTracks())

	// Сохраненные прослушивания поднимают трек 4 на первое место
	assertIDs(t, p.TopNWith(2, map[int]int{4: 40, 99: 100}), []int{4, 2})
	assertIDs(t, p.TopNWith(4, map[int]int{1: 20}), []int{1, 2, 3, 4})
	assertIDs(t, p.TopNWith(3, nil), []int{2, 3, 1})
}

func TestIncrementPlayCount(t *testing.T) {
	p := New(testTracks())

	p.IncrementPlayCount(4)
	p.IncrementPlayCount(99)

	track, _ := p.ByID(4)
	if track.TimesPlayed != 6 {
		t.Errorf("Ожидалось 6 прослушиваний, получено %d", track.TimesPlayed)
	}
}

func TestGenres(t *testing.T) {
	p := New(testTracks())

	genres := p.Genres()
	expected := []string{"Other", "Pop", "Rock", "pop"}
	if len(genres) != len(expected) {
		t.Fatalf("Ожидалось %v, получено %v", expected, genres)
	}
	for i := range expected {
		if genres[i] != expected[i] {
			t.Errorf("Ожидалось %v, получено %v", expected, genres)
			break
		}
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	if p.Len() != 12 {
		t.Fatalf("Ожидалось 12 треков, получено %d", p.Len())
	}

	top := p.TopN(5)
	assertIDs(t, top, []int{11, 10, 9, 3, 12})

	undead, ok := p.ByID(9)
	if !ok || undead.Title != "UNDEAD" || undead.Artist != "YOASOBI" {
		t.Errorf("Неожиданный трек 9: %+v", undead)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	p, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	if p.Len() != 12 {
		t.Errorf("Без файла ожидался встроенный каталог, получено %d треков", p.Len())
	}

	path := filepath.Join(dir, "catalog.yaml")
	appData := data.NewAppData()
	appData.AddTrack(data.Track{Title: "Only", AudioRef: "only.mp3"})
	if err := appData.SaveData(path); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	p, err = Load(path)
	if err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	assertIDs(t, p.All(), []int{1})
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	appData := data.NewAppData()
	appData.AddTrack(data.Track{Title: "One", AudioRef: "1.mp3"})
	if err := appData.SaveData(path); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	err = Watch(ctx, path, func() {
		if err := p.Reload(path); err != nil {
			t.Errorf("Ошибка перезагрузки: %v", err)
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Ошибка запуска наблюдателя: %v", err)
	}

	// Посторонние файлы в каталоге не вызывают перезагрузку
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Ошибка записи: %v", err)
	}

	appData.AddTrack(data.Track{Title: "Two", AudioRef: "2.mp3"})
	if err := appData.SaveData(path); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("Наблюдатель не сообщил об изменении файла")
	}
	if p.Len() != 2 {
		t.Errorf("После перезагрузки ожидалось 2 трека, получено %d", p.Len())
	}
}

func assertIDs(t *testing.T, tracks []data.Track, expected []int) {
	t.Helper()
	if len(tracks) != len(expected) {
		t.Fatalf("Ожидалось %d треков %v, получено %d", len(expected), expected, len(tracks))
	}
	for i, track := range tracks {
		if track.ID != expected[i] {
			t.Errorf("Позиция %d: ожидался ID %d, получено %d", i, expected[i], track.ID)
		}
	}
}

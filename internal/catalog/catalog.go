// Package catalog предоставляет потокобезопасный доступ к каталогу треков
package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/hazadus/nayuta/internal/data"
)

// Provider хранит каталог в памяти и отдает только копии треков
type Provider struct {
	mu     sync.RWMutex
	tracks []data.Track
}

// New создает каталог из переданных треков
func New(tracks []data.Track) *Provider {
	p := &Provider{}
	p.Replace(tracks)
	return p
}

// Replace полностью заменяет содержимое каталога
func (p *Provider) Replace(tracks []data.Track) {
	normalized := lo.Map(tracks, func(t data.Track, _ int) data.Track {
		return t.Normalized()
	})

	p.mu.Lock()
	p.tracks = normalized
	p.mu.Unlock()
}

// Len возвращает количество треков в каталоге
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tracks)
}

// All возвращает копию всех треков
func (p *Provider) All() []data.Track {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.tracks)
}

// ByID возвращает трек по идентификатору
func (p *Provider) ByID(id int) (data.Track, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Find(p.tracks, func(t data.Track) bool {
		return t.ID == id
	})
}

// Search ищет треки по подстроке в названии или имени исполнителя без учета регистра.
// Пустой запрос возвращает весь каталог.
func (p *Provider) Search(query string) []data.Track {
	return p.Filter(query, "")
}

// Filter сочетает поиск по подстроке с фильтром по жанру. Пустой жанр означает любой.
func (p *Provider) Filter(query, genre string) []data.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	g := strings.TrimSpace(genre)

	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Filter(p.tracks, func(t data.Track, _ int) bool {
		if g != "" && !strings.EqualFold(t.Genre, g) {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Artist), q)
	})
}

// TopN возвращает n самых прослушиваемых треков.
// При равенстве счетчиков сохраняется порядок каталога.
func (p *Provider) TopN(n int) []data.Track {
	return p.TopNWith(n, nil)
}

// TopNWith ранжирует треки по сумме TimesPlayed и extra[ID].
// extra - прослушивания, сохраненные вне каталога, например в настройках пользователя.
func (p *Provider) TopNWith(n int, extra map[int]int) []data.Track {
	if n <= 0 {
		return []data.Track{}
	}

	sorted := p.All()
	slices.SortStableFunc(sorted, func(a, b data.Track) int {
		return (b.TimesPlayed + extra[b.ID]) - (a.TimesPlayed + extra[a.ID])
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// IncrementPlayCount увеличивает счетчик прослушиваний. Неизвестный ID игнорируется.
func (p *Provider) IncrementPlayCount(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.tracks {
		if p.tracks[i].ID == id {
			p.tracks[i].TimesPlayed++
			return
		}
	}
}

// Genres возвращает отсортированный список различных жанров каталога
func (p *Provider) Genres() []string {
	p.mu.RLock()
	genres := lo.Uniq(lo.Map(p.tracks, func(t data.Track, _ int) string {
		return t.Genre
	}))
	p.mu.RUnlock()

	slices.Sort(genres)
	return genres
}

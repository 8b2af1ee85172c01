// Package library связывает движок воспроизведения с пользовательскими данными
package library

import (
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/player"
)

// Store - часть хранилища настроек, которую обновляет Recorder
type Store interface {
	IncrementPlayCount(id int) map[int]int
	RecordRecent(id int) []int
}

// Catalog - источник треков для Resolve
type Catalog interface {
	ByID(id int) (data.Track, bool)
}

// EventSource - движок, на события которого подписывается Recorder
type EventSource interface {
	Subscribe(fn func(player.Event)) func()
}

// Recorder учитывает каждый успешный запуск трека в счетчиках и истории пользователя
type Recorder struct {
	store       Store
	logger      zerolog.Logger
	unsubscribe func()
}

// NewRecorder создает Recorder и подписывает его на события движка
func NewRecorder(source EventSource, store Store, logger zerolog.Logger) *Recorder {
	r := &Recorder{
		store:  store,
		logger: logger,
	}
	r.unsubscribe = source.Subscribe(r.handle)
	return r
}

func (r *Recorder) handle(ev player.Event) {
	play, ok := ev.(player.Play)
	if !ok || play.Resumed {
		return
	}
	r.store.IncrementPlayCount(play.Track.ID)
	history := r.store.RecordRecent(play.Track.ID)
	r.logger.Debug().
		Int("track_id", play.Track.ID).
		Ints("recent", history).
		Msg("прослушивание учтено")
}

// Close отписывает Recorder от движка
func (r *Recorder) Close() {
	r.unsubscribe()
}

// Resolve превращает сохраненные ID в треки каталога. Неизвестные ID пропускаются.
func Resolve(catalog Catalog, ids []int) []data.Track {
	return lo.FilterMap(ids, func(id int, _ int) (data.Track, bool) {
		return catalog.ByID(id)
	})
}

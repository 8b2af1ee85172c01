// Package prefs хранит пользовательские настройки между сеансами:
// профиль, счетчики прослушиваний, плейлисты и историю.
package prefs

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Ключи хранилища
const (
	KeyUser        = "nayuta_user"
	KeyPlayCounts  = "nayuta_play_counts"
	KeyLastSection = "nayuta_last_section"
	KeyPlaylists   = "nayuta_playlists"
	KeyRecent      = "nayuta_recent"
)

// DefaultRecentCapacity - размер истории прослушиваний по умолчанию
const DefaultRecentCapacity = 10

// DefaultPlaylistName используется при создании плейлиста без названия
const DefaultPlaylistName = "New playlist"

// Profile - профиль пользователя
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Playlist - пользовательский плейлист
type Playlist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Songs []int  `json:"songs"`
}

// Store - хранилище настроек поверх Backend.
// Ошибки чтения заменяются значениями по умолчанию, ошибки записи логируются.
type Store struct {
	mu             sync.Mutex
	backend        Backend
	logger         zerolog.Logger
	recentCapacity int
}

// Option настраивает Store
type Option func(*Store)

// WithLogger задает логгер хранилища
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRecentCapacity задает размер истории прослушиваний
func WithRecentCapacity(capacity int) Option {
	return func(s *Store) {
		if capacity > 0 {
			s.recentCapacity = capacity
		}
	}
}

// New создает хранилище настроек
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:        backend,
		logger:         zerolog.Nop(),
		recentCapacity: DefaultRecentCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile возвращает сохраненный профиль или nil
func (s *Store) Profile() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile Profile
	if !s.load(KeyUser, &profile) {
		return nil
	}
	return &profile
}

// SaveProfile сохраняет профиль
func (s *Store) SaveProfile(profile Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(KeyUser, profile)
}

// PlayCounts возвращает счетчики прослушиваний по ID трека
func (s *Store) PlayCounts() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playCounts()
}

// IncrementPlayCount увеличивает счетчик трека и возвращает обновленные счетчики
func (s *Store) IncrementPlayCount(id int) map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := s.playCounts()
	counts[id]++

	stored := make(map[string]int, len(counts))
	for trackID, count := range counts {
		stored[strconv.Itoa(trackID)] = count
	}
	s.save(KeyPlayCounts, stored)
	return counts
}

func (s *Store) playCounts() map[int]int {
	var stored map[string]int
	counts := make(map[int]int)
	if !s.load(KeyPlayCounts, &stored) {
		return counts
	}
	for key, count := range stored {
		id, err := strconv.Atoi(key)
		if err != nil {
			s.logger.Warn().Str("key", key).Msg("пропущен некорректный ID в счетчиках")
			continue
		}
		counts[id] = count
	}
	return counts
}

// LastSection возвращает последний открытый раздел
func (s *Store) LastSection() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var section string
	if !s.load(KeyLastSection, &section) {
		return ""
	}
	return section
}

// SaveLastSection запоминает последний открытый раздел
func (s *Store) SaveLastSection(section string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(KeyLastSection, section)
}

// Playlists возвращает все плейлисты
func (s *Store) Playlists() []Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playlists()
}

// SavePlaylists перезаписывает список плейлистов
func (s *Store) SavePlaylists(playlists []Playlist) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(KeyPlaylists, playlists)
}

// PlaylistByID возвращает плейлист по идентификатору
func (s *Store) PlaylistByID(id string) (Playlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Find(s.playlists(), func(p Playlist) bool {
		return p.ID == id
	})
}

// CreatePlaylist создает пустой плейлист
func (s *Store) CreatePlaylist(name string) Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlaylistName
	}
	playlist := Playlist{
		ID:    "P" + uuid.New().String(),
		Name:  name,
		Songs: []int{},
	}

	playlists := append(s.playlists(), playlist)
	s.save(KeyPlaylists, playlists)
	return playlist
}

// DeletePlaylist удаляет плейлист. Возвращает false, если плейлист не найден.
func (s *Store) DeletePlaylist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlists := s.playlists()
	remaining := lo.Reject(playlists, func(p Playlist, _ int) bool {
		return p.ID == id
	})
	if len(remaining) == len(playlists) {
		return false
	}
	return s.save(KeyPlaylists, remaining)
}

// RenamePlaylist меняет название плейлиста
func (s *Store) RenamePlaylist(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return s.updatePlaylist(id, func(p *Playlist) bool {
		p.Name = name
		return true
	})
}

// AddSongToPlaylist добавляет трек в плейлист.
// Возвращает false, если плейлист не найден или трек уже добавлен.
func (s *Store) AddSongToPlaylist(playlistID string, songID int) bool {
	return s.updatePlaylist(playlistID, func(p *Playlist) bool {
		if lo.Contains(p.Songs, songID) {
			return false
		}
		p.Songs = append(p.Songs, songID)
		return true
	})
}

// RemoveSongFromPlaylist удаляет трек из плейлиста
func (s *Store) RemoveSongFromPlaylist(playlistID string, songID int) bool {
	return s.updatePlaylist(playlistID, func(p *Playlist) bool {
		if !lo.Contains(p.Songs, songID) {
			return false
		}
		p.Songs = lo.Without(p.Songs, songID)
		return true
	})
}

func (s *Store) updatePlaylist(id string, update func(*Playlist) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlists := s.playlists()
	for i := range playlists {
		if playlists[i].ID != id {
			continue
		}
		if !update(&playlists[i]) {
			return false
		}
		return s.save(KeyPlaylists, playlists)
	}
	return false
}

func (s *Store) playlists() []Playlist {
	var playlists []Playlist
	if !s.load(KeyPlaylists, &playlists) || playlists == nil {
		return []Playlist{}
	}
	for i := range playlists {
		if playlists[i].Songs == nil {
			playlists[i].Songs = []int{}
		}
	}
	return playlists
}

// RecentHistory возвращает историю прослушиваний, начиная с последнего трека
func (s *Store) RecentHistory() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recent()
}

// RecordRecent переносит трек в начало истории и возвращает обновленную историю
func (s *Store) RecordRecent(id int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append([]int{id}, lo.Without(s.recent(), id)...)
	if len(history) > s.recentCapacity {
		history = history[:s.recentCapacity]
	}
	s.save(KeyRecent, history)
	return history
}

// ClearRecent очищает историю прослушиваний
func (s *Store) ClearRecent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(KeyRecent); err != nil {
		s.logger.Warn().Err(err).Str("key", KeyRecent).Msg("не удалось очистить историю")
		return false
	}
	return true
}

func (s *Store) recent() []int {
	var history []int
	if !s.load(KeyRecent, &history) || history == nil {
		return []int{}
	}
	if len(history) > s.recentCapacity {
		history = history[:s.recentCapacity]
	}
	return history
}

// load читает JSON-значение ключа. Возвращает false, если значения нет или оно повреждено.
func (s *Store) load(key string, target any) bool {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("ошибка чтения хранилища")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("поврежденное значение в хранилище")
		return false
	}
	return true
}

func (s *Store) save(key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("ошибка сериализации значения")
		return false
	}
	if err := s.backend.Set(key, string(raw)); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("ошибка записи хранилища")
		return false
	}
	return true
}

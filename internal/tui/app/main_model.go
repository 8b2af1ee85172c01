// Package app содержит основную логику TUI приложения
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/library"
	"github.com/hazadus/nayuta/internal/player"
	"github.com/hazadus/nayuta/internal/prefs"
	tuiPlayer "github.com/hazadus/nayuta/internal/tui/player"
	"github.com/hazadus/nayuta/internal/tui/playlists"
	"github.com/hazadus/nayuta/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// TracklistScreen - экран списка треков
	TracklistScreen ScreenType = iota
	// PlayerScreen - экран плеера
	PlayerScreen
	// PlaylistsScreen - экран плейлистов
	PlaylistsScreen
)

// Названия разделов, которые сохраняются как последний открытый раздел
const (
	SectionTracks    = "tracks"
	SectionPlayer    = "player"
	SectionPlaylists = "playlists"
)

var sections = map[ScreenType]string{
	TracklistScreen: SectionTracks,
	PlayerScreen:    SectionPlayer,
	PlaylistsScreen: SectionPlaylists,
}

// Engine - операции движка, нужные интерфейсу
type Engine interface {
	tuiPlayer.Controller
	LoadList(tracks []data.Track)
	PlayIndex(i int)
}

// Catalog - каталог треков
type Catalog interface {
	tracklist.Source
	library.Catalog
}

// Store - пользовательские настройки
type Store interface {
	playlists.Store
	AddSongToPlaylist(playlistID string, songID int) bool
	RecentHistory() []int
	LastSection() string
	SaveLastSection(section string) bool
}

// PlayerEventMsg доставляет событие движка в цикл bubbletea
type PlayerEventMsg struct {
	Event player.Event
}

// CatalogChangedMsg отправляется после перезагрузки каталога
type CatalogChangedMsg struct{}

// MainModel представляет главную модель TUI
type MainModel struct {
	engine         Engine
	store          Store
	events         <-chan player.Event
	currentScreen  ScreenType
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	playlistsModel *playlists.Model
}

// NewMainModel создает новую главную модель. Открывается раздел,
// сохраненный в прошлом сеансе.
func NewMainModel(engine Engine, catalog Catalog, store Store, events <-chan player.Event) *MainModel {
	recent := func() []data.Track {
		return library.Resolve(catalog, store.RecentHistory())
	}

	m := &MainModel{
		engine:         engine,
		store:          store,
		events:         events,
		tracklistModel: tracklist.NewModel(catalog, recent),
		playerModel:    tuiPlayer.NewModel(engine),
		playlistsModel: playlists.NewModel(store, catalog),
	}

	switch store.LastSection() {
	case SectionPlayer:
		m.currentScreen = PlayerScreen
	case SectionPlaylists:
		m.currentScreen = PlaylistsScreen
	default:
		m.currentScreen = TracklistScreen
	}
	return m
}

// CurrentScreen возвращает активный экран
func (m *MainModel) CurrentScreen() ScreenType {
	return m.currentScreen
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(m.tracklistModel.Init(), m.waitForEvent())
}

// waitForEvent ждет следующее событие движка
func (m *MainModel) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return PlayerEventMsg{Event: ev}
	}
}

// switchTo открывает экран и запоминает раздел
func (m *MainModel) switchTo(screen ScreenType) {
	m.currentScreen = screen
	m.store.SaveLastSection(sections[screen])
}

// capturingInput сообщает, что активный экран принимает текстовый ввод
func (m *MainModel) capturingInput() bool {
	switch m.currentScreen {
	case TracklistScreen:
		return m.tracklistModel.Filtering()
	case PlaylistsScreen:
		return m.playlistsModel.Editing()
	}
	return false
}

// play загружает очередь в движок и открывает экран плеера
func (m *MainModel) play(tracks []data.Track, index int) tea.Cmd {
	m.engine.LoadList(tracks)
	m.engine.PlayIndex(index)
	m.switchTo(PlayerScreen)
	return m.playerModel.Refresh()
}

// addToPlaylist добавляет трек в выбранный плейлист, создавая плейлист при необходимости
func (m *MainModel) addToPlaylist(track data.Track) {
	id, ok := m.playlistsModel.SelectedID()
	if !ok {
		id = m.store.CreatePlaylist("").ID
	}

	name := ""
	for _, p := range m.store.Playlists() {
		if p.ID == id {
			name = p.Name
		}
	}

	if m.store.AddSongToPlaylist(id, track.ID) {
		m.playerModel.SetNotice(fmt.Sprintf("✅ «%s» добавлен в «%s»", track.Title, name))
	} else {
		m.playerModel.SetNotice(fmt.Sprintf("«%s» уже есть в «%s»", track.Title, name))
	}
	m.playlistsModel.RefreshData()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.capturingInput() {
			switch msg.String() {
			case "1":
				m.switchTo(TracklistScreen)
				return m, nil
			case "2":
				m.switchTo(PlayerScreen)
				return m, m.playerModel.Refresh()
			case "3":
				m.playlistsModel.RefreshData()
				m.switchTo(PlaylistsScreen)
				return m, nil
			}
		}

	case tracklist.TrackSelectedMsg:
		return m, m.play(msg.Tracks, msg.Index)

	case playlists.PlayPlaylistMsg:
		return m, m.play(msg.Tracks, msg.Index)

	case tuiPlayer.GoBackMsg:
		m.switchTo(TracklistScreen)
		return m, nil

	case tuiPlayer.AddToPlaylistMsg:
		m.addToPlaylist(msg.Track)
		return m, nil

	case PlayerEventMsg:
		switch ev := msg.Event.(type) {
		case player.Loaded:
			m.tracklistModel.SetPlaying(ev.Track.ID)
		case player.Play:
			if !ev.Resumed {
				m.tracklistModel.RefreshData()
			}
		}
		var cmd tea.Cmd
		m.playerModel, cmd = m.playerModel.Update(tuiPlayer.EventMsg{Event: msg.Event})
		return m, tea.Batch(cmd, m.waitForEvent())

	case CatalogChangedMsg:
		m.tracklistModel.RefreshData()
		m.playlistsModel.RefreshData()
		return m, nil

	case tea.WindowSizeMsg:
		// Размер нужен всем экранам, а не только активному
		var cmds [3]tea.Cmd
		m.tracklistModel, cmds[0] = m.tracklistModel.Update(msg)
		m.playerModel, cmds[1] = m.playerModel.Update(msg)
		m.playlistsModel, cmds[2] = m.playlistsModel.Update(msg)
		return m, tea.Batch(cmds[:]...)
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
	case PlayerScreen:
		m.playerModel, cmd = m.playerModel.Update(msg)
	case PlaylistsScreen:
		m.playlistsModel, cmd = m.playlistsModel.Update(msg)
	}
	return m, cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case TracklistScreen:
		return m.tracklistModel.View()
	case PlayerScreen:
		return m.playerModel.View()
	case PlaylistsScreen:
		return m.playlistsModel.View()
	default:
		return "Неизвестный экран"
	}
}

// *prefs.Store реализует Store
var _ Store = (*prefs.Store)(nil)

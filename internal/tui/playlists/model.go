// Package playlists содержит модель экрана плейлистов для TUI
package playlists

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/library"
	"github.com/hazadus/nayuta/internal/prefs"
	"github.com/hazadus/nayuta/internal/utils"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
)

// Store - операции хранилища, которые использует экран
type Store interface {
	Playlists() []prefs.Playlist
	CreatePlaylist(name string) prefs.Playlist
	RenamePlaylist(id, name string) bool
	DeletePlaylist(id string) bool
	RemoveSongFromPlaylist(playlistID string, songID int) bool
}

// PlayPlaylistMsg отправляется, когда пользователь запускает плейлист
type PlayPlaylistMsg struct {
	Tracks []data.Track
	Index  int
}

type focus int

const (
	focusPlaylists focus = iota
	focusSongs
)

type inputMode int

const (
	inputNone inputMode = iota
	inputCreate
	inputRename
)

// Model представляет модель экрана плейлистов
type Model struct {
	store     Store
	catalog   library.Catalog
	playlists []prefs.Playlist
	songs     []data.Track
	cursor    int
	songIndex int
	focus     focus
	mode      inputMode
	input     textinput.Model
	err       string
	success   string
}

// NewModel создает модель экрана плейлистов
func NewModel(store Store, catalog library.Catalog) *Model {
	input := textinput.New()
	input.Placeholder = "Название плейлиста"
	input.CharLimit = 64
	input.PromptStyle = focusedStyle
	input.TextStyle = focusedStyle

	m := &Model{
		store:   store,
		catalog: catalog,
		input:   input,
	}
	m.RefreshData()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Editing сообщает, вводит ли пользователь название
func (m *Model) Editing() bool {
	return m.mode != inputNone
}

// SelectedID возвращает ID выбранного плейлиста
func (m *Model) SelectedID() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.playlists) {
		return "", false
	}
	return m.playlists[m.cursor].ID, true
}

// RefreshData перечитывает плейлисты из хранилища
func (m *Model) RefreshData() {
	m.playlists = m.store.Playlists()
	m.cursor = clampIndex(m.cursor, len(m.playlists))
	m.refreshSongs()
}

func (m *Model) refreshSongs() {
	m.songs = nil
	if m.cursor < len(m.playlists) {
		m.songs = library.Resolve(m.catalog, m.playlists[m.cursor].Songs)
	}
	m.songIndex = clampIndex(m.songIndex, len(m.songs))
	if len(m.songs) == 0 {
		m.focus = focusPlaylists
	}
}

func (m *Model) startInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.err = ""
	m.success = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

// submit применяет введенное название
func (m *Model) submit() {
	name := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case inputCreate:
		created := m.store.CreatePlaylist(name)
		m.RefreshData()
		for i, p := range m.playlists {
			if p.ID == created.ID {
				m.cursor = i
			}
		}
		m.refreshSongs()
		m.success = fmt.Sprintf("Плейлист «%s» создан", created.Name)
	case inputRename:
		id, ok := m.SelectedID()
		if !ok {
			break
		}
		if !m.store.RenamePlaylist(id, name) {
			m.err = "Название не может быть пустым"
			return
		}
		m.RefreshData()
		m.success = "Плейлист переименован"
	}
	m.stopInput()
}

func (m *Model) updateInput(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopInput()
		return m, nil
	case "enter":
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 20
		return m, nil

	case tea.KeyMsg:
		if m.Editing() {
			return m.updateInput(msg)
		}

		m.err = ""
		switch msg.String() {
		case "up", "k":
			if m.focus == focusSongs {
				m.songIndex = clampIndex(m.songIndex-1, len(m.songs))
			} else {
				m.cursor = clampIndex(m.cursor-1, len(m.playlists))
				m.songIndex = 0
				m.refreshSongs()
			}

		case "down", "j":
			if m.focus == focusSongs {
				m.songIndex = clampIndex(m.songIndex+1, len(m.songs))
			} else {
				m.cursor = clampIndex(m.cursor+1, len(m.playlists))
				m.songIndex = 0
				m.refreshSongs()
			}

		case "tab":
			if m.focus == focusPlaylists && len(m.songs) > 0 {
				m.focus = focusSongs
			} else {
				m.focus = focusPlaylists
			}

		case "n":
			return m, m.startInput(inputCreate, "")

		case "r":
			if m.cursor < len(m.playlists) {
				return m, m.startInput(inputRename, m.playlists[m.cursor].Name)
			}

		case "d":
			if id, ok := m.SelectedID(); ok && m.focus == focusPlaylists {
				name := m.playlists[m.cursor].Name
				if m.store.DeletePlaylist(id) {
					m.success = fmt.Sprintf("Плейлист «%s» удален", name)
				} else {
					m.err = "Не удалось удалить плейлист"
				}
				m.RefreshData()
			}

		case "x":
			if id, ok := m.SelectedID(); ok && m.focus == focusSongs && m.songIndex < len(m.songs) {
				m.store.RemoveSongFromPlaylist(id, m.songs[m.songIndex].ID)
				m.RefreshData()
			}

		case "enter":
			if len(m.songs) == 0 {
				m.err = "Плейлист пуст"
				return m, nil
			}
			tracks := m.songs
			index := 0
			if m.focus == focusSongs {
				index = m.songIndex
			}
			return m, func() tea.Msg {
				return PlayPlaylistMsg{Tracks: tracks, Index: index}
			}
		}
	}

	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📂 Плейлисты"))
	b.WriteString("\n")

	if len(m.playlists) == 0 {
		b.WriteString(blurredStyle.Render("Плейлистов пока нет. Нажмите n, чтобы создать."))
		b.WriteString("\n")
	}
	for i, p := range m.playlists {
		line := fmt.Sprintf("%s (%d)", p.Name, len(p.Songs))
		if i == m.cursor {
			style := blurredStyle
			if m.focus == focusPlaylists {
				style = focusedStyle
			}
			b.WriteString(style.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.cursor < len(m.playlists) {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Треки:"))
		b.WriteString("\n")
		if len(m.songs) == 0 {
			b.WriteString(blurredStyle.Render("  Пусто. Добавьте треки клавишей a на экране плеера."))
			b.WriteString("\n")
		}
		for i, t := range m.songs {
			line := fmt.Sprintf("%-4d %s - %s", t.ID,
				utils.TruncateString(t.Title, 40), utils.TruncateString(t.Artist, 20))
			if m.focus == focusSongs && i == m.songIndex {
				b.WriteString(focusedStyle.Render("  > " + line))
			} else {
				b.WriteString("    " + line)
			}
			b.WriteString("\n")
		}
	}

	if m.Editing() {
		label := "Новый плейлист:"
		if m.mode == inputRename {
			label = "Переименовать:"
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(label))
		b.WriteString(" ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.success != "" {
		b.WriteString(successStyle.Render(m.success))
		b.WriteString("\n")
	}

	if m.Editing() {
		b.WriteString(helpStyle.Render("Enter: сохранить • Esc: отмена"))
	} else {
		b.WriteString(helpStyle.Render("Enter: воспроизвести • Tab: треки/плейлисты • n: создать • r: переименовать • d: удалить • x: убрать трек"))
	}

	return b.String()
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/utils"
)

// TrendingSize - сколько треков показывает подборка популярного
const TrendingSize = 5

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	playingItemStyle  = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("42"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// Source - каталог, из которого строится список
type Source interface {
	Filter(query, genre string) []data.Track
	TopN(n int) []data.Track
	Genres() []string
}

// TrackSelectedMsg отправляется при выборе трека. Tracks - видимый список,
// который становится очередью воспроизведения.
type TrackSelectedMsg struct {
	Tracks []data.Track
	Index  int
}

// View определяет, какие треки показаны
type View int

const (
	ViewAll View = iota
	ViewTrending
	ViewRecent
)

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	track data.Track
}

func (i trackItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.track.Title, i.track.Artist, i.track.Genre)
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct {
	playingID *int
}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	// ID | Исполнитель | Название | Жанр | Прослушивания
	str := fmt.Sprintf("%-4d %-20s %-40s %-12s %6d",
		i.track.ID,
		utils.TruncateString(i.track.Artist, 20),
		utils.TruncateString(i.track.Title, 40),
		utils.TruncateString(i.track.Genre, 12),
		i.track.TimesPlayed)

	fn := itemStyle.Render
	if d.playingID != nil && *d.playingID == i.track.ID {
		fn = func(s ...string) string {
			return playingItemStyle.Render("♪ " + strings.Join(s, " "))
		}
	}
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка треков
type Model struct {
	list      list.Model
	source    Source
	recent    func() []data.Track
	view      View
	genre     string
	playingID *int
	quitting  bool
}

// NewModel создает новую модель списка треков. recent может быть nil.
func NewModel(source Source, recent func() []data.Track) *Model {
	playingID := new(int)

	l := list.New(nil, trackItemDelegate{playingID: playingID}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{
		list:      l,
		source:    source,
		recent:    recent,
		playingID: playingID,
	}
	m.RefreshData()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// RefreshData перечитывает треки из каталога без пересоздания модели
func (m *Model) RefreshData() {
	tracks := m.tracks()
	items := lo.Map(tracks, func(t data.Track, _ int) list.Item {
		return trackItem{track: t}
	})
	m.list.SetItems(items)
	m.list.Title = m.title()
}

// SetPlaying отмечает трек, который сейчас выбран в плеере
func (m *Model) SetPlaying(id int) {
	*m.playingID = id
}

// Filtering сообщает, вводит ли пользователь строку поиска
func (m *Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// CurrentView возвращает текущий режим списка
func (m *Model) CurrentView() View {
	return m.view
}

// Genre возвращает выбранный жанр, пустая строка означает все жанры
func (m *Model) Genre() string {
	return m.genre
}

// Items возвращает видимые треки
func (m *Model) Items() []data.Track {
	return lo.FilterMap(m.list.VisibleItems(), func(item list.Item, _ int) (data.Track, bool) {
		ti, ok := item.(trackItem)
		return ti.track, ok
	})
}

func (m *Model) tracks() []data.Track {
	switch m.view {
	case ViewTrending:
		return m.source.TopN(TrendingSize)
	case ViewRecent:
		if m.recent == nil {
			return nil
		}
		return m.recent()
	default:
		return m.source.Filter("", m.genre)
	}
}

func (m *Model) title() string {
	switch m.view {
	case ViewTrending:
		return "🔥 Популярное"
	case ViewRecent:
		return "🕘 Недавно прослушанные"
	default:
		if m.genre != "" {
			return "Треки · " + m.genre
		}
		return "Треки"
	}
}

// nextGenre переключает фильтр по жанру по кругу: все жанры, затем каждый жанр
func (m *Model) nextGenre() {
	genres := m.source.Genres()
	if len(genres) == 0 {
		m.genre = ""
		return
	}
	_, idx, found := lo.FindIndexOf(genres, func(g string) bool {
		return strings.EqualFold(g, m.genre)
	})
	switch {
	case m.genre == "" || !found:
		m.genre = genres[0]
	case idx == len(genres)-1:
		m.genre = ""
	default:
		m.genre = genres[idx+1]
	}
}

func (m *Model) toggleView(view View) {
	if m.view == view {
		m.view = ViewAll
	} else {
		m.view = view
	}
	m.list.ResetFilter()
	m.RefreshData()
	m.list.Select(0)
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4) // Оставляем место для заголовка и справки
		return m, nil

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			tracks := m.Items()
			index := m.list.Index()
			if index < 0 || index >= len(tracks) {
				return m, nil
			}
			return m, func() tea.Msg {
				return TrackSelectedMsg{Tracks: tracks, Index: index}
			}

		case "g":
			m.view = ViewAll
			m.nextGenre()
			m.list.ResetFilter()
			m.RefreshData()
			m.list.Select(0)
			return m, nil

		case "t":
			m.toggleView(ViewTrending)
			return m, nil

		case "h":
			m.toggleView(ViewRecent)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	view := m.list.View()
	extraHelp := helpStyle.Render("Enter: воспроизвести • /: поиск • g: жанр • t: популярное • h: история • 1/2/3: экраны • q: выход")
	return view + "\n" + extraHelp
}

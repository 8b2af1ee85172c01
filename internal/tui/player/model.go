// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/nayuta/internal/data"
	playback "github.com/hazadus/nayuta/internal/player"
	"github.com/hazadus/nayuta/internal/streaming"
	"github.com/hazadus/nayuta/internal/utils"
)

const (
	// VolumeStep - шаг изменения громкости клавишами +/-
	VolumeStep = 0.1
	// SeekStep - шаг перемотки стрелками
	SeekStep = 5 * time.Second
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// Controller - операции движка, которые вызывает экран
type Controller interface {
	PlayPause()
	PlayNext()
	PlayPrev()
	ToggleLoop() bool
	SetVolume(volume float64)
	ToggleMute() bool
	Seek(fraction float64)
	State() playback.PlaybackState
}

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// AddToPlaylistMsg просит добавить текущий трек в плейлист
type AddToPlaylistMsg struct {
	Track data.Track
}

// EventMsg доставляет событие движка на экран
type EventMsg struct {
	Event playback.Event
}

// Model представляет модель экрана воспроизведения
type Model struct {
	controller  Controller
	state       playback.PlaybackState
	progressBar progress.Model
	stuckCount  int
	lastError   error
	notice      string
	width       int
	height      int
}

// NewModel создает модель экрана воспроизведения
func NewModel(controller Controller) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		controller:  controller,
		state:       controller.State(),
		progressBar: prog,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// State возвращает последний полученный снимок состояния
func (m *Model) State() playback.PlaybackState {
	return m.state
}

// SetNotice показывает короткое сообщение под элементами управления
func (m *Model) SetNotice(notice string) {
	m.notice = notice
}

// Refresh перечитывает состояние движка
func (m *Model) Refresh() tea.Cmd {
	m.state = m.controller.State()
	return m.progressBar.SetPercent(m.percent())
}

// currentTrack возвращает выбранный трек из снимка состояния
func (m *Model) currentTrack() (data.Track, bool) {
	i := m.state.CurrentIndex
	if i < 0 || i >= len(m.state.Playlist) {
		return data.Track{}, false
	}
	return m.state.Playlist[i], true
}

func (m *Model) percent() float64 {
	if m.state.Duration <= 0 {
		return 0
	}
	return float64(m.state.Position) / float64(m.state.Duration)
}

// seekBy сдвигает позицию на delta относительно текущей
func (m *Model) seekBy(delta time.Duration) {
	if m.state.Duration <= 0 {
		return
	}
	m.controller.Seek(float64(m.state.Position+delta) / float64(m.state.Duration))
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}
		case " ":
			m.controller.PlayPause()
		case "n":
			m.controller.PlayNext()
		case "p":
			m.controller.PlayPrev()
		case "l":
			m.controller.ToggleLoop()
		case "+", "=":
			m.controller.SetVolume(m.state.Volume + VolumeStep)
		case "-":
			m.controller.SetVolume(m.state.Volume - VolumeStep)
		case "m":
			m.controller.ToggleMute()
		case "left":
			m.seekBy(-SeekStep)
		case "right":
			m.seekBy(SeekStep)
		case "a":
			track, ok := m.currentTrack()
			if !ok || m.state.Display.Failed {
				return m, nil
			}
			return m, func() tea.Msg {
				return AddToPlaylistMsg{Track: track}
			}
		default:
			return m, nil
		}
		return m, m.Refresh()

	case EventMsg:
		switch ev := msg.Event.(type) {
		case playback.TimeUpdate:
			m.stuckCount = ev.StuckCount
		case playback.LoadFailed:
			m.lastError = ev.Err
		case playback.Loaded:
			m.lastError = nil
			m.stuckCount = 0
		}
		return m, m.Refresh()

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	title := titleStyle.Render("🎵 Сейчас играет")

	if m.state.CurrentIndex < 0 {
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			title,
			trackInfoStyle.Render("Ничего не выбрано. Выберите трек в списке."),
			controlsStyle.Render("Пробел: начать очередь • q/esc: назад к списку"),
		)
	}

	display := m.state.Display
	var trackInfo string
	if display.Failed {
		trackInfo = errorStyle.Render(fmt.Sprintf("❌ %s\n   %s", display.Title, display.Artist))
		if m.lastError != nil {
			trackInfo += "\n" + trackInfoStyle.Render(m.lastError.Error())
		}
	} else {
		track, _ := m.currentTrack()
		trackInfo = trackInfoStyle.Render(fmt.Sprintf(
			"🎤 %s\n🎵 %s\n🏷  %s",
			display.Artist,
			display.Title,
			track.Genre,
		))
	}

	statusText := statusStyle.Render(fmt.Sprintf("%s %s   %s   %s",
		statusIcon(m.state.Status),
		formatStatus(m.state.Status),
		volumeIcon(m.state),
		loopText(m.state.Loop),
	))

	timeText := fmt.Sprintf(
		"%s / %s   [%d/%d]",
		utils.FormatClock(m.state.Position),
		utils.FormatClock(m.state.Duration),
		m.state.CurrentIndex+1,
		len(m.state.Playlist),
	)
	if m.state.Status == playback.StatusPlaying && m.stuckCount > 0 {
		timeText += "   " + streaming.StreamStatus(m.stuckCount)
	}

	controls := controlsStyle.Render(
		"Пробел: пауза • n/p: следующий/предыдущий • l: повтор • +/-: громкость • m: без звука\n" +
			"←/→: перемотка • a: в плейлист • q/esc: назад к списку",
	)

	view := fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s\n\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		timeText,
		controls,
	)
	if m.notice != "" {
		view += "\n\n" + noticeStyle.Render(m.notice)
	}
	return view
}

// Вспомогательные функции

func formatStatus(status playback.Status) string {
	switch status {
	case playback.StatusPlaying:
		return "Воспроизведение"
	case playback.StatusPaused:
		return "Пауза"
	case playback.StatusLoading:
		return "Загрузка..."
	case playback.StatusEnded:
		return "Завершено"
	default:
		return "Остановлено"
	}
}

func statusIcon(status playback.Status) string {
	switch status {
	case playback.StatusPlaying:
		return "▶️"
	case playback.StatusLoading:
		return "⏳"
	default:
		return "⏸️"
	}
}

func volumeIcon(state playback.PlaybackState) string {
	switch state.Level {
	case playback.LevelMute:
		return "🔇"
	case playback.LevelLow:
		return fmt.Sprintf("🔉 %d%%", int(state.Volume*100+0.5))
	default:
		return fmt.Sprintf("🔊 %d%%", int(state.Volume*100+0.5))
	}
}

func loopText(loop bool) string {
	if loop {
		return "🔁 повтор"
	}
	return "➡️ без повтора"
}

// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hazadus/nayuta/internal/catalog"
	"github.com/hazadus/nayuta/internal/player"
	"github.com/hazadus/nayuta/internal/prefs"
	"github.com/hazadus/nayuta/internal/tui/app"
)

// eventBuffer - размер буфера канала событий движка
const eventBuffer = 64

// App представляет основное TUI приложение
type App struct {
	engine   *player.Engine
	catalog  *catalog.Provider
	store    *prefs.Store
	dataFile string
	logger   zerolog.Logger
}

// NewApp создает новый экземпляр TUI приложения. Если dataFile не пуст,
// каталог перечитывается при изменении файла.
func NewApp(engine *player.Engine, catalog *catalog.Provider, store *prefs.Store, dataFile string, logger zerolog.Logger) *App {
	return &App{
		engine:   engine,
		catalog:  catalog,
		store:    store,
		dataFile: dataFile,
		logger:   logger,
	}
}

// Run запускает TUI приложение и блокируется до выхода
func (tuiApp *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, unsubscribe := tuiApp.engine.Events(eventBuffer)
	defer unsubscribe()

	model := app.NewMainModel(tuiApp.engine, tuiApp.catalog, tuiApp.store, events)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if tuiApp.dataFile != "" {
		err := catalog.Watch(ctx, tuiApp.dataFile, func() {
			if err := tuiApp.catalog.Reload(tuiApp.dataFile); err != nil {
				tuiApp.logger.Warn().Err(err).Str("path", tuiApp.dataFile).Msg("не удалось перечитать каталог")
				return
			}
			tuiApp.logger.Info().Int("tracks", tuiApp.catalog.Len()).Msg("каталог перечитан")
			p.Send(app.CatalogChangedMsg{})
		}, catalog.WithWatchLogger(tuiApp.logger))
		if err != nil {
			// Без наблюдателя интерфейс работает, просто не видит внешних изменений
			tuiApp.logger.Warn().Err(err).Msg("наблюдатель каталога не запущен")
		}
	}

	_, err := p.Run()

	// Останавливаем вывод звука перед выходом
	if tuiApp.engine.State().Status == player.StatusPlaying {
		tuiApp.engine.PlayPause()
	}
	return err
}

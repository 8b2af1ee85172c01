package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for browsing, playing tracks and editing playlists.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(ctx)
		},
	}
}

func (app *Application) launchTUI(ctx context.Context) error {
	engine, closeEngine := app.newEngine()
	defer closeEngine()

	return tui.NewApp(engine, app.Catalog, app.Prefs, app.Config.DataFile, app.Logger).Run(ctx)
}

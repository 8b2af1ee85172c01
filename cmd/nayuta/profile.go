package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/library"
	"github.com/hazadus/nayuta/internal/prefs"
)

// createProfileCommand создает команду profile
func (app *Application) createProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the user profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the user profile",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.showProfile()
		},
	})

	var name, avatar string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update the user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile := prefs.Profile{}
			if current := app.Prefs.Profile(); current != nil {
				profile = *current
			}
			if cmd.Flags().Changed("name") {
				profile.Name = name
			}
			if cmd.Flags().Changed("avatar") {
				profile.Avatar = avatar
			}
			if !app.Prefs.SaveProfile(profile) {
				return fmt.Errorf("не удалось сохранить профиль")
			}
			fmt.Println("✅ Профиль сохранен")
			return nil
		},
	}
	setCmd.Flags().StringVar(&name, "name", "", "Display name")
	setCmd.Flags().StringVar(&avatar, "avatar", "", "Avatar image path or URL")
	cmd.AddCommand(setCmd)

	return cmd
}

func (app *Application) showProfile() {
	profile := app.Prefs.Profile()
	if profile == nil {
		fmt.Println("👤 Профиль не задан. Используйте 'nayuta profile set --name ...'")
		return
	}

	fmt.Printf("👤 %s\n", profile.Name)
	if profile.Avatar != "" {
		fmt.Printf("   Аватар: %s\n", profile.Avatar)
	}

	total := 0
	for _, count := range app.Prefs.PlayCounts() {
		total += count
	}
	fmt.Printf("   Прослушиваний: %d\n", total)
	fmt.Printf("   Плейлистов: %d\n", len(app.Prefs.Playlists()))
}

// createHistoryCommand создает команду history
func (app *Application) createHistoryCommand() *cobra.Command {
	var clearHistory bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently played tracks",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if clearHistory {
				if !app.Prefs.ClearRecent() {
					return fmt.Errorf("не удалось очистить историю")
				}
				fmt.Println("🗑️  История очищена")
				return nil
			}
			app.showHistory()
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearHistory, "clear", false, "Clear the history")
	return cmd
}

func (app *Application) showHistory() {
	tracks := library.Resolve(app.Catalog, app.Prefs.RecentHistory())
	if len(tracks) == 0 {
		fmt.Println("🕘 История пуста")
		return
	}

	fmt.Println("🕘 Недавно прослушанные")
	fmt.Println()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "ID", "Исполнитель", "Название"})
	for i, track := range tracks {
		t.AppendRow(table.Row{i + 1, track.ID, track.Artist, track.Title})
	}
	t.Render()
}

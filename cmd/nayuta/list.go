package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/utils"
)

// defaultTopSize - размер списка популярных треков по умолчанию
const defaultTopSize = 5

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracks from the catalog",
		Long:  `Display all tracks of the catalog with play counts.`,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.listTracks()
		},
	}
}

func (app *Application) listTracks() {
	tracks := app.Catalog.All()
	if len(tracks) == 0 {
		fmt.Println("📚 Библиотека пуста. Добавьте треки с помощью команды 'add'.")
		return
	}

	fmt.Printf("📚 Найдено треков: %d\n\n", len(tracks))
	app.renderTracks(tracks)
	fmt.Println()
	fmt.Println("💡 Используйте 'nayuta play [ID]' для воспроизведения трека")
}

// createSearchCommand создает команду search
func (app *Application) createSearchCommand() *cobra.Command {
	var genre string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search tracks by title or artist",
		Long:  `Search the catalog by a case-insensitive substring of title or artist, optionally within one genre.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			app.searchTracks(query, genre)
		},
	}
	cmd.Flags().StringVarP(&genre, "genre", "g", "", "Show only tracks of this genre")
	return cmd
}

func (app *Application) searchTracks(query, genre string) {
	tracks := app.Catalog.Filter(query, genre)
	if len(tracks) == 0 {
		fmt.Println("🔍 Ничего не найдено")
		return
	}

	fmt.Printf("🔍 Найдено треков: %d\n\n", len(tracks))
	app.renderTracks(tracks)
}

// createGenresCommand создает команду genres
func (app *Application) createGenresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genres of the catalog",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.listGenres()
		},
	}
}

func (app *Application) listGenres() {
	tracks := app.Catalog.All()
	counts := make(map[string]int)
	for _, track := range tracks {
		counts[track.Genre]++
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Жанр", "Треков"})
	for _, genre := range app.Catalog.Genres() {
		t.AppendRow(table.Row{genre, counts[genre]})
	}
	t.Render()
}

// createTopCommand создает команду top
func (app *Application) createTopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "top [n]",
		Short: "Show the most played tracks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n := defaultTopSize
			if len(args) > 0 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed <= 0 {
					return fmt.Errorf("неверное количество треков: %s", args[0])
				}
				n = parsed
			}
			app.topTracks(n)
			return nil
		},
	}
}

func (app *Application) topTracks(n int) {
	fmt.Println("🔥 Популярное")
	fmt.Println()
	// Счетчики каталога живут в памяти процесса, поэтому учитываем сохраненные прослушивания
	app.renderTracks(app.Catalog.TopNWith(n, app.Prefs.PlayCounts()))
}

// renderTracks выводит треки таблицей. Колонка "Мои" - прослушивания текущего пользователя.
func (app *Application) renderTracks(tracks []data.Track) {
	counts := app.Prefs.PlayCounts()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Исполнитель", "Название", "Альбом", "Жанр", "Длительность", "Размер", "Всего", "Мои"})
	for _, track := range tracks {
		t.AppendRow(table.Row{
			track.ID,
			utils.TruncateString(track.Artist, 28),
			utils.TruncateString(track.Title, 28),
			utils.TruncateString(track.Album, 18),
			track.Genre,
			formatLength(track.Length),
			formatSize(track.FileSize),
			track.TimesPlayed,
			counts[track.ID],
		})
	}
	t.Render()
}

// formatSize форматирует размер файла, если он известен
func formatSize(size int64) string {
	if size <= 0 {
		return "N/A"
	}
	return utils.FormatFileSize(size)
}

// formatLength форматирует длительность трека, если она известна
func formatLength(seconds int) string {
	if seconds <= 0 {
		return "N/A"
	}
	return utils.FormatDurationFromSeconds(seconds)
}

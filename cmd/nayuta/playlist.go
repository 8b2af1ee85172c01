package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/library"
	"github.com/hazadus/nayuta/internal/prefs"
)

// createPlaylistCommand создает команду playlist с подкомандами
func (app *Application) createPlaylistCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage playlists",
		Long:  `Create, edit and play playlists. A playlist is referenced by its name, ID or ID prefix.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List playlists",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.listPlaylists()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create an empty playlist",
		Args:  cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			playlist := app.Prefs.CreatePlaylist(name)
			fmt.Printf("✅ Плейлист «%s» создан (ID: %s)\n", playlist.Name, playlist.ID)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [playlist]",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			playlist, err := app.findPlaylist(args[0])
			if err != nil {
				return err
			}
			if !app.Prefs.DeletePlaylist(playlist.ID) {
				return fmt.Errorf("не удалось удалить плейлист «%s»", playlist.Name)
			}
			fmt.Printf("🗑️  Плейлист «%s» удален\n", playlist.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [playlist] [name]",
		Short: "Rename a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			playlist, err := app.findPlaylist(args[0])
			if err != nil {
				return err
			}
			if !app.Prefs.RenamePlaylist(playlist.ID, args[1]) {
				return fmt.Errorf("не удалось переименовать плейлист «%s»", playlist.Name)
			}
			fmt.Printf("✅ Плейлист «%s» переименован в «%s»\n", playlist.Name, strings.TrimSpace(args[1]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [playlist] [trackid...]",
		Short: "Add tracks to a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.addToPlaylist(args[0], args[1:])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [playlist] [trackid...]",
		Short: "Remove tracks from a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.removeFromPlaylist(args[0], args[1:])
		},
	})

	var loop bool
	playCmd := &cobra.Command{
		Use:   "play [playlist]",
		Short: "Play a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			playlist, err := app.findPlaylist(args[0])
			if err != nil {
				return err
			}
			tracks := library.Resolve(app.Catalog, playlist.Songs)
			if len(tracks) == 0 {
				fmt.Printf("📭 Плейлист «%s» пуст\n", playlist.Name)
				return nil
			}
			fmt.Printf("🎶 Плейлист «%s»: %d треков\n", playlist.Name, len(tracks))
			return app.playTracks(ctx, tracks, loop, os.Stdin)
		},
	}
	playCmd.Flags().BoolVarP(&loop, "loop", "l", false, "Repeat the playlist")
	cmd.AddCommand(playCmd)

	return cmd
}

// findPlaylist ищет плейлист по ID, названию или однозначному префиксу ID
func (app *Application) findPlaylist(ref string) (prefs.Playlist, error) {
	playlists := app.Prefs.Playlists()

	if p, ok := lo.Find(playlists, func(p prefs.Playlist) bool {
		return p.ID == ref
	}); ok {
		return p, nil
	}
	if p, ok := lo.Find(playlists, func(p prefs.Playlist) bool {
		return strings.EqualFold(p.Name, ref)
	}); ok {
		return p, nil
	}

	matches := lo.Filter(playlists, func(p prefs.Playlist, _ int) bool {
		return strings.HasPrefix(p.ID, ref)
	})
	switch len(matches) {
	case 0:
		return prefs.Playlist{}, fmt.Errorf("плейлист %q не найден", ref)
	case 1:
		return matches[0], nil
	default:
		return prefs.Playlist{}, fmt.Errorf("под %q подходит несколько плейлистов, уточните ID", ref)
	}
}

func (app *Application) listPlaylists() {
	playlists := app.Prefs.Playlists()
	if len(playlists) == 0 {
		fmt.Println("📭 Плейлистов нет. Создайте плейлист командой 'playlist create'.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Название", "Треков", "Состав"})
	for _, p := range playlists {
		songs := lo.Map(p.Songs, func(id int, _ int) string {
			return strconv.Itoa(id)
		})
		t.AppendRow(table.Row{p.ID, p.Name, len(p.Songs), strings.Join(songs, ", ")})
	}
	t.Render()
}

func (app *Application) addToPlaylist(ref string, args []string) error {
	playlist, err := app.findPlaylist(ref)
	if err != nil {
		return err
	}
	ids, err := parseTrackIDs(args)
	if err != nil {
		return err
	}

	for _, id := range ids {
		track, ok := app.Catalog.ByID(id)
		if !ok {
			fmt.Printf("⚠️  Трек с ID %d не найден в каталоге\n", id)
			continue
		}
		if app.Prefs.AddSongToPlaylist(playlist.ID, id) {
			fmt.Printf("✅ «%s» добавлен в «%s»\n", track.Title, playlist.Name)
		} else {
			fmt.Printf("«%s» уже есть в «%s»\n", track.Title, playlist.Name)
		}
	}
	return nil
}

func (app *Application) removeFromPlaylist(ref string, args []string) error {
	playlist, err := app.findPlaylist(ref)
	if err != nil {
		return err
	}
	ids, err := parseTrackIDs(args)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if app.Prefs.RemoveSongFromPlaylist(playlist.ID, id) {
			fmt.Printf("🗑️  Трек %d удален из «%s»\n", id, playlist.Name)
		} else {
			fmt.Printf("⚠️  Трека %d нет в «%s»\n", id, playlist.Name)
		}
	}
	return nil
}

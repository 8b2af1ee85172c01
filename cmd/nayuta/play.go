package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/player"
	"github.com/hazadus/nayuta/internal/streaming"
	"github.com/hazadus/nayuta/internal/utils"
)

// volumeStep - шаг изменения громкости клавишами +/-
const volumeStep = 0.1

// errNothingPlayable возвращается, если ни один трек очереди не удалось загрузить
var errNothingPlayable = errors.New("не удалось воспроизвести ни один трек")

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var loop bool

	cmd := &cobra.Command{
		Use:   "play [trackid...]",
		Short: "Play tracks by their IDs",
		Long:  `Play tracks by their IDs in the given order. Without arguments the whole catalog is played.`,
		RunE: func(_ *cobra.Command, args []string) error {
			tracks, err := app.tracksForPlay(args)
			if err != nil {
				return err
			}
			return app.playTracks(ctx, tracks, loop, os.Stdin)
		},
	}
	cmd.Flags().BoolVarP(&loop, "loop", "l", false, "Repeat the queue")
	return cmd
}

// tracksForPlay находит треки по аргументам команды
func (app *Application) tracksForPlay(args []string) ([]data.Track, error) {
	if len(args) == 0 {
		return app.Catalog.All(), nil
	}

	ids, err := parseTrackIDs(args)
	if err != nil {
		return nil, err
	}

	tracks := make([]data.Track, 0, len(ids))
	for _, id := range ids {
		track, ok := app.Catalog.ByID(id)
		if !ok {
			return nil, fmt.Errorf("трек с ID %d не найден", id)
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Игнорируем ошибку, так как это не критично для работы плеера
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readKeys читает одиночные символы из input. Канал закрывается при ошибке чтения
// или после закрытия done.
func readKeys(done <-chan struct{}, input io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buffer := make([]byte, 1)
		for {
			n, err := input.Read(buffer)
			if err != nil {
				return
			}
			if n == 1 {
				select {
				case keys <- buffer[0]:
				case <-done:
					return
				}
			}
		}
	}()
	return keys
}

// playTracks воспроизводит очередь треков и управляет ей с клавиатуры
func (app *Application) playTracks(ctx context.Context, tracks []data.Track, loop bool, input io.Reader) error {
	if len(tracks) == 0 {
		fmt.Println("📚 Нечего воспроизводить")
		return nil
	}

	engine, closeEngine := app.newEngine()
	defer closeEngine()

	events, unsubscribe := engine.Events(64)
	defer unsubscribe()

	if loop && !engine.State().Loop {
		engine.ToggleLoop()
	}

	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [n/p] - следующий/предыдущий трек\n")
	fmt.Printf("   [l] - повтор, [m] - без звука, [+/-] - громкость\n")
	fmt.Printf("   [q] - остановить и выйти\n")

	if input == os.Stdin {
		enableRawMode()
		defer disableRawMode()
	}
	done := make(chan struct{})
	defer close(done)
	keys := readKeys(done, input)

	engine.LoadList(tracks)
	engine.PlayIndex(0)

	failures := 0
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case player.Loaded:
				fmt.Printf("\n🎵 Сейчас играет [%d/%d]: %s - %s\n", ev.Index+1, len(tracks), ev.Track.Artist, ev.Track.Title)
			case player.Play:
				failures = 0
				if ev.Resumed {
					fmt.Printf("\r\033[K▶️  Воспроизведение\n")
				}
			case player.Pause:
				if engine.State().CurrentIndex == -1 {
					fmt.Println("\n✅ Воспроизведение завершено")
					return nil
				}
				fmt.Printf("\r\033[K⏸️  Пауза\n")
			case player.VolumeChanged:
				if ev.Muted {
					fmt.Printf("\r\033[K🔇 Без звука\n")
				} else {
					fmt.Printf("\r\033[K🔊 Громкость: %d%%\n", int(ev.Volume*100+0.5))
				}
			case player.LoopChanged:
				if ev.Loop {
					fmt.Printf("\r\033[K🔁 Повтор включен\n")
				} else {
					fmt.Printf("\r\033[K➡️  Повтор выключен\n")
				}
			case player.TimeUpdate:
				displayProgress(ev)
			case player.LoadFailed:
				fmt.Printf("\n❌ Не удалось загрузить трек: %v\n", ev.Err)
				failures++
				if failures >= len(tracks) {
					return errNothingPlayable
				}
				engine.PlayNext()
			}

		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if quit := handlePlayKey(engine, key); quit {
				fmt.Println("\n⏹️  Воспроизведение остановлено пользователем")
				return nil
			}

		case <-ctx.Done():
			fmt.Println("\n🚫 Операция отменена")
			return nil
		}
	}
}

// handlePlayKey выполняет действие клавиши. Возвращает true, если нужно выйти.
func handlePlayKey(engine *player.Engine, key byte) bool {
	switch key {
	case ' ', '\n', '\r':
		engine.PlayPause()
	case 'n':
		engine.PlayNext()
	case 'p':
		engine.PlayPrev()
	case 'l':
		engine.ToggleLoop()
	case 'm':
		engine.ToggleMute()
	case '+', '=':
		engine.SetVolume(engine.State().Volume + volumeStep)
	case '-':
		engine.SetVolume(engine.State().Volume - volumeStep)
	case 'q':
		return true
	}
	return false
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(update player.TimeUpdate) {
	statusIcon := "✅"
	if update.StuckCount > 3 {
		statusIcon = "⚠️"
	}
	statusText := streaming.StreamStatus(update.StuckCount)

	if update.Duration > 0 {
		percent := float64(update.Current) / float64(update.Duration) * 100
		fmt.Printf("\r%s  %.1f%% | %s / %s | Статус: %s",
			statusIcon,
			percent,
			utils.FormatClock(update.Current),
			utils.FormatClock(update.Duration),
			statusText)
		return
	}
	fmt.Printf("\r%s  %s | Статус: %s", statusIcon, utils.FormatClock(update.Current), statusText)
}

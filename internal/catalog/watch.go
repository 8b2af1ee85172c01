package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/hazadus/nayuta/internal/data"
)

const defaultDebounce = 200 * time.Millisecond

type watchOptions struct {
	debounce time.Duration
	logger   zerolog.Logger
}

// WatchOption настраивает наблюдение за файлом каталога
type WatchOption func(*watchOptions)

// WithDebounce задает паузу, после которой изменения считаются завершенными
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// WithWatchLogger задает логгер наблюдателя
func WithWatchLogger(logger zerolog.Logger) WatchOption {
	return func(o *watchOptions) {
		o.logger = logger
	}
}

// Watch следит за файлом каталога и вызывает onChange после его изменения.
// Наблюдение идет за каталогом файла, поэтому атомарная перезапись тоже отслеживается.
// Функция возвращается сразу, наблюдение прекращается при отмене ctx.
func Watch(ctx context.Context, path string, onChange func(), opts ...WatchOption) error {
	options := watchOptions{
		debounce: defaultDebounce,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	expanded, err := data.ExpandHome(path)
	if err != nil {
		return fmt.Errorf("ошибка раскрытия пути: %w", err)
	}
	target, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("ошибка определения пути: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ошибка создания наблюдателя: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("ошибка наблюдения за %s: %w", target, err)
	}

	go func() {
		defer watcher.Close()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				options.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("изменение каталога")

				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(options.debounce, func() {
					if ctx.Err() == nil {
						onChange()
					}
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				options.logger.Warn().Err(err).Msg("ошибка наблюдателя каталога")
			}
		}
	}()

	return nil
}

// Reload перечитывает файл каталога в провайдер. Как и Load, при пустом
// или отсутствующем файле возвращается встроенный набор треков.
func (p *Provider) Reload(path string) error {
	appData := data.NewAppData()
	if err := appData.LoadData(path); err != nil {
		return err
	}
	if len(appData.Tracks) == 0 {
		p.Replace(defaultTracks)
		return nil
	}
	p.Replace(appData.Tracks)
	return nil
}

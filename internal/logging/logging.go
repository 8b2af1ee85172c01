// Package logging настраивает журнал приложения.
// Терминал занят интерфейсом, поэтому журнал пишется в файл.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// New создает логгер, пишущий в w с заданным уровнем.
// Неизвестный уровень заменяется на info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Open открывает файл журнала и возвращает логгер и функцию закрытия.
// Пустой путь отключает журнал.
func Open(path, level string) (zerolog.Logger, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return zerolog.Nop(), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ошибка создания каталога журнала: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ошибка открытия файла журнала: %w", err)
	}

	return New(file, level), file.Close, nil
}

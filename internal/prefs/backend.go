package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hazadus/nayuta/internal/data"
)

// Backend - строковое хранилище ключ-значение
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// ReplaceKeys одной записью задает ключи keys: присутствующие в values
	// записываются, остальные удаляются
	ReplaceKeys(keys []string, values map[string]string) error
}

// MemoryBackend хранит значения в памяти процесса
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend создает пустое хранилище в памяти
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) ReplaceKeys(keys []string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	replaceKeys(m.values, keys, values)
	return nil
}

// replaceKeys применяет к current значения ключей keys из values
func replaceKeys(current map[string]string, keys []string, values map[string]string) {
	for _, key := range keys {
		if value, ok := values[key]; ok {
			current[key] = value
		} else {
			delete(current, key)
		}
	}
}

// FileBackend хранит значения в YAML-файле. Каждая запись перезаписывает файл целиком.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFileBackend создает хранилище поверх файла. Файл создается при первой записи.
func NewFileBackend(filePath string) (*FileBackend, error) {
	path, err := data.ExpandHome(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка раскрытия пути хранилища: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Path возвращает путь к файлу хранилища
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileBackend) ReplaceKeys(keys []string, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	replaceKeys(current, keys, values)
	return f.write(current)
}

func (f *FileBackend) read() (map[string]string, error) {
	values := make(map[string]string)

	content, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла хранилища: %w", err)
	}
	if len(content) == 0 {
		return values, nil
	}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла хранилища: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (f *FileBackend) write(values map[string]string) error {
	content, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("ошибка сериализации хранилища: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить файл недописанным
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".nayuta-storage-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла хранилища: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла хранилища: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка замены файла хранилища: %w", err)
	}
	return nil
}

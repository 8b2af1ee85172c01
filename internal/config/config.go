// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath - путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.nayuta"

// Config структура для хранения конфигурации приложения
type Config struct {
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
	DownloadDir   string `yaml:"download_dir"`

	DataFile    string `yaml:"data_file"`    // Файл каталога треков
	StorageFile string `yaml:"storage_file"` // Файл пользовательских настроек
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`

	Volume         float64 `yaml:"volume"`
	Loop           bool    `yaml:"loop"`
	RecentCapacity int     `yaml:"recent_capacity"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		DownloadDir:    "~/Downloads",
		DataFile:       "~/.nayuta.yaml",
		StorageFile:    "~/.nayuta_storage.yaml",
		LogFile:        "~/.nayuta.log",
		LogLevel:       "info",
		Volume:         0.7,
		RecentCapacity: 10,
	}
}

// HasS3 сообщает, настроено ли хранилище S3
func (c *Config) HasS3() bool {
	return c.AwsBucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, возвращается конфигурация по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expand(filePath, home)

	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	default:
		// Незаданные в файле поля сохраняют значения по умолчанию
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	// Устанавливаем значения по умолчанию, если они заданы пустыми
	defaults := Default()
	if config.DownloadDir == "" {
		config.DownloadDir = defaults.DownloadDir
	}
	if config.DataFile == "" {
		config.DataFile = defaults.DataFile
	}
	if config.StorageFile == "" {
		config.StorageFile = defaults.StorageFile
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.RecentCapacity <= 0 {
		config.RecentCapacity = defaults.RecentCapacity
	}
	if config.Volume < 0 || config.Volume > 1 {
		config.Volume = defaults.Volume
	}

	// Раскрываем тильду в путях
	config.DownloadDir = expand(config.DownloadDir, home)
	config.DataFile = expand(config.DataFile, home)
	config.StorageFile = expand(config.StorageFile, home)
	config.LogFile = expand(config.LogFile, home)

	return config, nil
}

func expand(path, home string) string {
	if strings.HasPrefix(path, "~") {
		return strings.Replace(path, "~", home, 1)
	}
	return path
}

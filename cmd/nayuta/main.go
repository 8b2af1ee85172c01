package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hazadus/nayuta/internal/catalog"
	"github.com/hazadus/nayuta/internal/config"
	"github.com/hazadus/nayuta/internal/data"
	"github.com/hazadus/nayuta/internal/library"
	"github.com/hazadus/nayuta/internal/logging"
	"github.com/hazadus/nayuta/internal/player"
	"github.com/hazadus/nayuta/internal/prefs"
	"github.com/hazadus/nayuta/internal/s3"
)

var errS3NotConfigured = errors.New("хранилище S3 не настроено, укажите aws_bucket_name и ключи в ~/.nayuta")

// ObjectStorage - операции с S3, которые нужны командам
type ObjectStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// Application хранит состояние приложения, общее для всех команд
type Application struct {
	Config  *config.Config
	Data    *data.AppData
	Catalog *catalog.Provider
	Prefs   *prefs.Store
	Logger  zerolog.Logger

	// newTransport создает вывод звука для плеера
	newTransport func(logger zerolog.Logger) player.Transport
	// newStorage создает клиента S3
	newStorage func() (ObjectStorage, error)
	closeLog   func() error
}

// NewApplication загружает конфигурацию, каталог и пользовательские настройки
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия журнала: %w", err)
	}

	appData := data.NewAppData()
	if err := appData.LoadData(cfg.DataFile); err != nil {
		closeLog()
		return nil, fmt.Errorf("ошибка загрузки данных: %w", err)
	}

	backend, err := prefs.NewFileBackend(cfg.StorageFile)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("ошибка открытия хранилища настроек: %w", err)
	}

	app := &Application{
		Config: cfg,
		Data:   appData,
		Prefs: prefs.New(backend,
			prefs.WithLogger(logger.With().Str("component", "prefs").Logger()),
			prefs.WithRecentCapacity(cfg.RecentCapacity),
		),
		Logger:       logger,
		newTransport: newBeepTransport,
		closeLog:     closeLog,
	}
	app.newStorage = app.s3Storage
	app.refreshCatalog()

	logger.Info().
		Str("data_file", cfg.DataFile).
		Int("tracks", app.Catalog.Len()).
		Msg("приложение запущено")
	return app, nil
}

func newBeepTransport(logger zerolog.Logger) player.Transport {
	return player.NewBeepTransport(logger)
}

// s3Storage создает клиента S3 по настройкам из конфигурации
func (app *Application) s3Storage() (ObjectStorage, error) {
	if !app.Config.HasS3() {
		return nil, errS3NotConfigured
	}
	client, err := s3.NewClient(&s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания S3 клиента: %w", err)
	}
	return client, nil
}

// refreshCatalog перестраивает каталог из данных приложения.
// Пустой файл данных заменяется встроенным каталогом.
func (app *Application) refreshCatalog() {
	if len(app.Data.Tracks) == 0 {
		if app.Catalog == nil {
			app.Catalog = catalog.Default()
		} else {
			app.Catalog.Replace(catalog.Default().All())
		}
		return
	}
	if app.Catalog == nil {
		app.Catalog = catalog.New(app.Data.Tracks)
		return
	}
	app.Catalog.Replace(app.Data.Tracks)
}

// SaveData сохраняет данные приложения и обновляет каталог
func (app *Application) SaveData() error {
	if err := app.Data.SaveData(app.Config.DataFile); err != nil {
		return err
	}
	app.refreshCatalog()
	return nil
}

// newEngine создает движок воспроизведения и подключает к нему учет прослушиваний
func (app *Application) newEngine() (*player.Engine, func()) {
	logger := app.Logger.With().Str("component", "player").Logger()
	engine := player.New(app.newTransport(logger), app.Catalog,
		player.WithLogger(logger),
		player.WithVolume(app.Config.Volume),
		player.WithLoop(app.Config.Loop),
	)
	recorder := library.NewRecorder(engine, app.Prefs, logger)

	return engine, func() {
		recorder.Close()
		if err := engine.Close(); err != nil {
			app.Logger.Warn().Err(err).Msg("ошибка закрытия плеера")
		}
	}
}

// Close освобождает ресурсы приложения
func (app *Application) Close() {
	if app.closeLog != nil {
		_ = app.closeLog()
	}
}

func main() {
	app, err := NewApplication(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = app.createRootCommand(ctx).Execute()
	stop()
	app.Close()
	if err != nil {
		os.Exit(1)
	}
}

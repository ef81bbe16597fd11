package container

import (
	"fmt"
	"net/http"

	"go-image-translator/internal/config"
	"go-image-translator/internal/generation"
	"go-image-translator/internal/logger"
	"go-image-translator/internal/observer"
	"go-image-translator/internal/repository"
	"go-image-translator/internal/service"
	"go-image-translator/internal/storage"
	"go-image-translator/internal/transport"
	"go-image-translator/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config             *config.Config
	imageFetcher       storage.ImageFetcher
	imageRepository    repository.ImageRepository
	archiver           storage.Archiver
	engine             generation.Engine
	metrics            *observer.MetricsObserver
	translationService service.TranslationService
	handler            http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	imageFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxUploadBytes)
	urlValidator := validation.NewURLValidatorWithHosts(cfg.AllowedImageHosts)
	imageRepository := repository.NewHTTPImageRepository(imageFetcher, urlValidator)
	engine := generation.NewOpenAIEngine(cfg.GenerationAPIKey, cfg.GenerationModel, cfg.GenerationBaseURL, cfg.GenerationTimeout)

	archiver, err := buildArchiver(cfg)
	if err != nil {
		return nil, err
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	translationService := service.NewTranslationService(engine, imageRepository, archiver, publisher, cfg.MaxUploadBytes)
	handler := transport.NewHandler(translationService, metrics, cfg)

	return &Container{
		config:             cfg,
		imageFetcher:       imageFetcher,
		imageRepository:    imageRepository,
		archiver:           archiver,
		engine:             engine,
		metrics:            metrics,
		translationService: translationService,
		handler:            handler,
	}, nil
}

func buildArchiver(cfg *config.Config) (storage.Archiver, error) {
	if !cfg.ArchiveEnabled() {
		logger.Info("Attachment archiving disabled, storing nothing")
		return storage.NoopArchiver{}, nil
	}
	archiver, err := storage.NewAzureArchiver(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	if err != nil {
		return nil, fmt.Errorf("failed to build archiver: %w", err)
	}
	return archiver, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

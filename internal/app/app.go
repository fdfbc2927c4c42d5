package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/database"
	"github.com/RubachokBoss/classroom-gradebook/internal/delivery/httpd"
	"github.com/RubachokBoss/classroom-gradebook/internal/gradebook"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/internal/service"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/RubachokBoss/classroom-gradebook/internal/worker"
	"github.com/RubachokBoss/classroom-gradebook/internal/worker/queue"
	"github.com/RubachokBoss/classroom-gradebook/pkg/hash"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type App struct {
	server       *http.Server
	logger       zerolog.Logger
	config       *config.Config
	db           *sql.DB
	publisher    integration.EventPublisher
	exportWorker worker.ExportWorker
	stopWorker   context.CancelFunc
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// Брокер сообщений; без него экспорт выполняется в процессе
	var (
		publisher integration.EventPublisher
		consumer  queue.RabbitMQConsumer
	)
	rabbitmqClient, err := integration.NewRabbitMQClient(cfg.RabbitMQ, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client, events are disabled")
		publisher = integration.NewNoopPublisher(log)
	} else {
		publisher = rabbitmqClient
		consumer = queue.NewRabbitMQConsumer(
			rabbitmqClient.Channel(),
			rabbitmqClient.ExportQueue(),
			cfg.RabbitMQ.ConsumerTag,
			cfg.RabbitMQ.PrefetchCount,
			log,
		)
	}

	// Объектное хранилище
	storage, err := repository.NewMinIORepository(cfg.Storage, log)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}

	// Создаем репозитории
	teacherRepo := repository.NewTeacherRepository(db, log)
	classroomRepo := repository.NewClassroomRepository(db, log)
	rosterRepo := repository.NewRosterRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	quizRepo := repository.NewQuizRepository(db, log)
	settingsRepo := repository.NewSettingsRepository(db, log)
	exportRepo := repository.NewExportRepository(db, log)

	hasher := hash.NewContentHasher(hash.SHA256)
	defaults := DefaultSettings(cfg.Gradebook)

	// Создаем сервисы
	gradebookService := service.NewGradebookService(classroomRepo, rosterRepo, assignmentRepo, quizRepo, settingsRepo, defaults, log)
	exportProcessor := service.NewExportProcessor(exportRepo, gradebookService, storage, hasher, log)

	exportWorker := worker.NewExportWorker(
		worker.NewWorkerPool(cfg.Export.Workers, log),
		consumer,
		exportProcessor,
		cfg.Export.JobTimeout,
		log,
	)

	services := httpd.Services{
		Auth:        service.NewAuthService(teacherRepo, cfg.Auth, log),
		Classrooms:  service.NewClassroomService(classroomRepo, rosterRepo, log),
		Roster:      service.NewRosterService(classroomRepo, rosterRepo, storage, hasher, log),
		Assignments: service.NewAssignmentService(classroomRepo, rosterRepo, assignmentRepo, publisher, log),
		Quizzes:     service.NewQuizService(classroomRepo, rosterRepo, quizRepo, publisher, log),
		Gradebook:   gradebookService,
		Settings:    service.NewSettingsService(classroomRepo, settingsRepo, publisher, defaults, log),
		Exports:     service.NewExportService(classroomRepo, exportRepo, storage, publisher, exportWorker, cfg.Export.PresignTTL, log),
	}

	// Создаем обработчики
	handler := httpd.NewHandler(
		services,
		func(ctx context.Context) error { return database.Ping(ctx, db) },
		cfg.Export.MaxUploadSize,
		log,
	)

	// Создаем роутер
	router := chi.NewRouter()

	// Настраиваем middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Recovery(log))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Настраиваем CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Регистрируем маршруты
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:       server,
		logger:       log,
		config:       cfg,
		db:           db,
		publisher:    publisher,
		exportWorker: exportWorker,
	}, nil
}

// DefaultSettings are the gradebook settings used for classrooms that never
// saved their own.
func DefaultSettings(cfg config.GradebookConfig) gradebook.Settings {
	s := gradebook.Settings{
		UseWeights:        cfg.DefaultUseWeights,
		AssignmentsWeight: cfg.DefaultAssignmentsWeight,
		QuizzesWeight:     cfg.DefaultQuizzesWeight,
	}
	if s.AssignmentsWeight+s.QuizzesWeight != gradebook.WeightTotal {
		return gradebook.DefaultSettings()
	}
	return s
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWorker = cancel

	if err := a.exportWorker.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to start export worker: %w", err)
	}

	a.logger.Info().Msgf("Starting gradebook service on %s", a.config.Server.Address)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down gradebook service...")

	// Останавливаем сервер
	err := a.server.Shutdown(ctx)

	// Останавливаем воркер экспорта
	if a.stopWorker != nil {
		a.stopWorker()
	}
	if err := a.exportWorker.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop export worker")
	}

	// Закрываем RabbitMQ соединение
	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
	}

	return err
}

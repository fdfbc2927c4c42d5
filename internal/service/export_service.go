package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/repository"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/RubachokBoss/classroom-gradebook/pkg/hash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExportDispatcher runs an export job in-process when the broker cannot
// take it.
type ExportDispatcher interface {
	Dispatch(exportID string) error
}

type ExportService interface {
	RequestExport(ctx context.Context, teacherID, classroomID string) (*models.ExportResponse, error)
	GetExport(ctx context.Context, teacherID, exportID string) (*models.ExportResponse, error)
}

type ExportProcessor interface {
	Process(ctx context.Context, exportID string) error
}

type exportService struct {
	access     classroomAccess
	exportRepo repository.ExportRepository
	storage    repository.ObjectStorage
	publisher  integration.EventPublisher
	dispatcher ExportDispatcher
	presignTTL time.Duration
	logger     zerolog.Logger
}

func NewExportService(
	classroomRepo repository.ClassroomRepository,
	exportRepo repository.ExportRepository,
	storage repository.ObjectStorage,
	publisher integration.EventPublisher,
	dispatcher ExportDispatcher,
	presignTTL time.Duration,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		access:     classroomAccess{classroomRepo: classroomRepo},
		exportRepo: exportRepo,
		storage:    storage,
		publisher:  publisher,
		dispatcher: dispatcher,
		presignTTL: presignTTL,
		logger:     logger,
	}
}

func (s *exportService) RequestExport(ctx context.Context, teacherID, classroomID string) (*models.ExportResponse, error) {
	if _, err := s.access.owned(ctx, teacherID, classroomID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	export := &models.Export{
		ID:          uuid.New().String(),
		ClassroomID: classroomID,
		RequestedBy: teacherID,
		Status:      models.ExportStatusPending.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.exportRepo.Create(ctx, export); err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	if err := s.enqueue(ctx, export); err != nil {
		reason := err.Error()
		if markErr := s.exportRepo.MarkFailed(ctx, export.ID, reason); markErr != nil {
			s.logger.Error().Err(markErr).Str("export_id", export.ID).Msg("Failed to mark export as failed")
		}
		export.Status = models.ExportStatusFailed.String()
		export.Error = &reason
	}

	s.logger.Info().
		Str("export_id", export.ID).
		Str("classroom_id", classroomID).
		Str("status", export.Status).
		Msg("Export requested")

	return exportResponse(export, nil), nil
}

// enqueue publishes the job and falls back to the in-process dispatcher.
func (s *exportService) enqueue(ctx context.Context, export *models.Export) error {
	event := &models.ExportRequestedEvent{
		ExportID:    export.ID,
		ClassroomID: export.ClassroomID,
		Timestamp:   export.CreatedAt.Unix(),
	}

	var publishErr error
	if s.publisher != nil {
		if publishErr = s.publisher.PublishExportRequested(ctx, event); publishErr == nil {
			return nil
		}
		if !errors.Is(publishErr, integration.ErrBrokerUnavailable) {
			s.logger.Warn().Err(publishErr).Str("export_id", export.ID).Msg("Failed to publish export job, running locally")
		}
	}

	if s.dispatcher == nil {
		if publishErr == nil {
			publishErr = integration.ErrBrokerUnavailable
		}
		return fmt.Errorf("failed to enqueue export: %w", publishErr)
	}

	if err := s.dispatcher.Dispatch(export.ID); err != nil {
		return fmt.Errorf("failed to dispatch export: %w", err)
	}
	return nil
}

func (s *exportService) GetExport(ctx context.Context, teacherID, exportID string) (*models.ExportResponse, error) {
	export, err := s.exportRepo.GetByID(ctx, exportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	if export == nil {
		return nil, ErrExportNotFound
	}

	classroom, err := s.access.owned(ctx, teacherID, export.ClassroomID)
	if err != nil {
		if errors.Is(err, ErrClassroomNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}

	var downloadURL *string
	if export.Status == models.ExportStatusCompleted.String() && export.ObjectKey != nil {
		url, err := s.storage.PresignedURL(ctx, *export.ObjectKey, s.presignTTL, exportFileName(classroom.Name, export.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("failed to presign export: %w", err)
		}
		downloadURL = &url
	}

	return exportResponse(export, downloadURL), nil
}

func exportFileName(classroomName string, at time.Time) string {
	name := strings.TrimSpace(classroomName)
	if name == "" {
		name = "classroom"
	}
	return fmt.Sprintf("%s gradebook %s.xlsx", name, at.Format(models.DateLayout))
}

func exportResponse(e *models.Export, downloadURL *string) *models.ExportResponse {
	return &models.ExportResponse{
		ID:          e.ID,
		ClassroomID: e.ClassroomID,
		Status:      e.Status,
		DownloadURL: downloadURL,
		Checksum:    e.Checksum,
		Error:       e.Error,
		CreatedAt:   e.CreatedAt,
		CompletedAt: e.CompletedAt,
	}
}

type exportProcessor struct {
	exportRepo repository.ExportRepository
	gradebook  GradebookService
	storage    repository.ObjectStorage
	hasher     hash.Hasher
	logger     zerolog.Logger
}

func NewExportProcessor(
	exportRepo repository.ExportRepository,
	gradebook GradebookService,
	storage repository.ObjectStorage,
	hasher hash.Hasher,
	logger zerolog.Logger,
) ExportProcessor {
	return &exportProcessor{
		exportRepo: exportRepo,
		gradebook:  gradebook,
		storage:    storage,
		hasher:     hasher,
		logger:     logger,
	}
}

// Process renders one export job. Jobs that already finished are skipped so
// a redelivered message is harmless.
func (p *exportProcessor) Process(ctx context.Context, exportID string) error {
	export, err := p.exportRepo.GetByID(ctx, exportID)
	if err != nil {
		return fmt.Errorf("failed to get export: %w", err)
	}
	if export == nil {
		return ErrExportNotFound
	}

	switch export.Status {
	case models.ExportStatusCompleted.String(), models.ExportStatusFailed.String():
		p.logger.Debug().Str("export_id", exportID).Str("status", export.Status).Msg("Export already finished, skipping")
		return nil
	}

	if err := p.exportRepo.UpdateStatus(ctx, exportID, models.ExportStatusProcessing.String()); err != nil {
		return fmt.Errorf("failed to update export status: %w", err)
	}

	key, checksum, err := p.render(ctx, export)
	if err != nil {
		p.logger.Error().Err(err).Str("export_id", exportID).Msg("Export failed")
		if markErr := p.exportRepo.MarkFailed(ctx, exportID, err.Error()); markErr != nil {
			return fmt.Errorf("failed to mark export as failed: %w", markErr)
		}
		return nil
	}

	if err := p.exportRepo.MarkCompleted(ctx, exportID, key, checksum); err != nil {
		return fmt.Errorf("failed to mark export as completed: %w", err)
	}

	p.logger.Info().
		Str("export_id", exportID).
		Str("classroom_id", export.ClassroomID).
		Str("object_key", key).
		Msg("Export completed")

	return nil
}

func (p *exportProcessor) render(ctx context.Context, export *models.Export) (string, string, error) {
	gb, err := p.gradebook.Build(ctx, export.ClassroomID)
	if err != nil {
		return "", "", fmt.Errorf("failed to build gradebook: %w", err)
	}

	data, err := RenderGradebook(gb)
	if err != nil {
		return "", "", err
	}

	checksum, err := p.hasher.Calculate(data)
	if err != nil {
		return "", "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	key := repository.ExportObjectKey(export.ClassroomID, export.ID)
	if err := p.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), xlsxContentType); err != nil {
		return "", "", fmt.Errorf("failed to upload export: %w", err)
	}

	return key, checksum, nil
}

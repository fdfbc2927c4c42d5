package service

import (
	"context"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/RubachokBoss/classroom-gradebook/internal/service/integration"
	"github.com/rs/zerolog"
)

// publishGradesChanged logs and swallows publish errors.
func publishGradesChanged(ctx context.Context, publisher integration.EventPublisher, logger zerolog.Logger, classroomID, studentID, itemType, itemID string) {
	if publisher == nil {
		return
	}

	event := &models.GradesChangedEvent{
		ClassroomID: classroomID,
		StudentID:   studentID,
		ItemType:    itemType,
		ItemID:      itemID,
		Timestamp:   time.Now().Unix(),
	}
	if err := publisher.PublishGradesChanged(ctx, event); err != nil {
		logger.Warn().Err(err).
			Str("classroom_id", classroomID).
			Str("student_id", studentID).
			Str("item_id", itemID).
			Msg("Failed to publish grades changed event")
	}
}

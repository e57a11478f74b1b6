package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pageza/vinoteca/backend/internal/model"
	"gorm.io/gorm"
)

const auditWriteTimeout = 5 * time.Second

// AuditRecorder persists the prompt and response of every recommendation request.
type AuditRecorder interface {
	RecordPrompt(ctx context.Context, prompt, username string) error
	RecordResponse(ctx context.Context, prompt, username, response string) error
}

// AuditLog writes audit rows with gorm. Writes are single attempts detached from the
// request's cancellation, so a client hanging up never leaves a half-recorded request.
type AuditLog struct {
	db *gorm.DB
}

var _ AuditRecorder = (*AuditLog)(nil)

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db}
}

func (a *AuditLog) RecordPrompt(ctx context.Context, prompt, username string) error {
	ctx, cancel := detached(ctx)
	defer cancel()

	row := model.SearchPrompt{Prompt: prompt, Username: username, CreatedAt: time.Now().UTC()}
	if err := a.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record search prompt: %w", err)
	}
	return nil
}

func (a *AuditLog) RecordResponse(ctx context.Context, prompt, username, response string) error {
	ctx, cancel := detached(ctx)
	defer cancel()

	row := model.AIResponse{Prompt: prompt, Username: username, Response: response, CreatedAt: time.Now().UTC()}
	if err := a.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record ai response: %w", err)
	}
	return nil
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
}

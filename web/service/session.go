package service

import (
	"context"
	"time"

	"github.com/sessiontodo/todo/database/model"
	"github.com/sessiontodo/todo/web/entity"

	"gorm.io/gorm"
)

// SessionService manages persisted login sessions in bulk.
type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// LogoutAll deletes every session whose user snapshot carries username.
func (s *SessionService) LogoutAll(ctx context.Context, username string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&model.Session{})
	if res.Error != nil {
		return 0, entity.WrapError(entity.KindStore, "errors.database", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeExpired deletes sessions that expired at or before now.
func (s *SessionService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", now.Unix()).
		Delete(&model.Session{})
	return res.RowsAffected, res.Error
}

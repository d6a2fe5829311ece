package service

import (
	"context"
	"time"

	"github.com/sessiontodo/todo/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessWindow is the minimum spacing between two permitted rate-limited
// requests of one user.
const AccessWindow = 5 * time.Second

// AccessLimiter decides whether a user may make a rate-limited request at
// now. A permitted request moves the user's anchor to now; a rejected one
// leaves it untouched.
type AccessLimiter interface {
	Allow(ctx context.Context, userId string, now time.Time) (bool, error)
}

// AccessService keeps access records in the database.
type AccessService struct {
	db     *gorm.DB
	window time.Duration
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db, window: AccessWindow}
}

func (s *AccessService) Allow(ctx context.Context, userId string, now time.Time) (bool, error) {
	db := s.db.WithContext(ctx)
	nowMs := now.UnixMilli()

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.AccessRecord{UserId: userId, LastRequest: nowMs})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	res = db.Model(&model.AccessRecord{}).
		Where("user_id = ? AND last_request <= ?", userId, nowMs-s.window.Milliseconds()).
		Update("last_request", nowMs)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

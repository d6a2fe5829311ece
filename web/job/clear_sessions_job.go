package job

import (
	"context"
	"time"

	"github.com/sessiontodo/todo/logger"
	"github.com/sessiontodo/todo/util/common"
	"github.com/sessiontodo/todo/web/service"
)

// ClearSessionsJob deletes login sessions whose lifetime has ended.
type ClearSessionsJob struct {
	sessionService *service.SessionService
	now            func() time.Time
}

func NewClearSessionsJob(sessionService *service.SessionService) *ClearSessionsJob {
	return &ClearSessionsJob{
		sessionService: sessionService,
		now:            time.Now,
	}
}

// Here Run is an interface method of the Job interface
func (j *ClearSessionsJob) Run() {
	defer common.Recover("clear sessions job")

	removed, err := j.sessionService.PurgeExpired(context.Background(), j.now())
	if err != nil {
		logger.Warning("clear sessions job err:", err)
		return
	}
	if removed > 0 {
		logger.Debugf("cleared %d expired sessions", removed)
	}
}

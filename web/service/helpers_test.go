package service

import (
	"path/filepath"
	"testing"

	"github.com/sessiontodo/todo/config"
	"github.com/sessiontodo/todo/database"
	"github.com/sessiontodo/todo/web/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(config.DatabaseConfig{
		Type: config.DatabaseTypeSQLite,
		DSN:  filepath.Join(t.TempDir(), "todo.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return db
}

func assertErrorKey(t *testing.T, err error, kind entity.ErrorKind, key string) {
	t.Helper()
	require.Error(t, err)
	e := entity.AsError(err)
	assert.Equal(t, kind, e.Kind, "kind of %v", err)
	assert.Equal(t, key, e.Key)
}

// Package testutil wires real repositories onto a throwaway in-memory
// SQLite database for package tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"online-library/internal/core/database"
	"online-library/internal/domain"
)

// NewDB returns a migrated database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), "silent")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Logger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// Publisher records published book events in order.
type Publisher struct {
	mu     sync.Mutex
	events []domain.BookEvent
}

func (p *Publisher) Publish(ev domain.BookEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *Publisher) Events() []domain.BookEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.BookEvent(nil), p.events...)
}

func Ptr[T any](v T) *T { return &v }

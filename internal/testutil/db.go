package testutil

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/infrastructure/sqlite"
	"github.com/zjrosen/gridstate/internal/snapshot"
	"github.com/zjrosen/gridstate/internal/views/domain"
)

// NewViewsDB opens a views database in a temp dir, closed on cleanup.
func NewViewsDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "views.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SaveView stores s under name and returns the saved view.
func SaveView(t *testing.T, repo domain.ViewRepository, name, dataset string, s snapshot.Snapshot) *domain.View {
	t.Helper()
	v := domain.NewView(uuid.NewString(), name, dataset, s)
	require.NoError(t, repo.Save(v))
	return v
}

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/views/domain"
)

const viewColumns = `id, guid, name, description, dataset, snapshot, fingerprint, created_at, updated_at`

type viewRepository struct {
	db *sql.DB
}

func newViewRepository(db *sql.DB) *viewRepository {
	return &viewRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(row scanner) (*domain.View, error) {
	var m ViewModel
	if err := row.Scan(
		&m.ID, &m.GUID, &m.Name, &m.Description, &m.Dataset,
		&m.Snapshot, &m.Fingerprint, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return m.toDomain()
}

// Save upserts by name and rewrites the view's filter index.
func (r *viewRepository) Save(view *domain.View) error {
	if err := domain.ValidateName(view.Name()); err != nil {
		return err
	}
	m, err := toViewModel(view)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRow(`
		INSERT INTO views (guid, name, description, dataset, snapshot, fingerprint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			dataset     = excluded.dataset,
			snapshot    = excluded.snapshot,
			fingerprint = excluded.fingerprint,
			updated_at  = excluded.updated_at
		RETURNING id`,
		m.GUID, m.Name, m.Description, m.Dataset, m.Snapshot, m.Fingerprint, m.CreatedAt, m.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM view_filters WHERE view_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear view filters: %w", err)
	}
	for _, f := range filterRows(view.Snapshot()) {
		if _, err := tx.Exec(
			`INSERT INTO view_filters (view_id, position, kind, filter_key) VALUES (?, ?, ?, ?)`,
			id, f.Position, f.Kind, f.Key,
		); err != nil {
			return fmt.Errorf("failed to save view filter: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit view: %w", err)
	}
	view.SetID(id)
	log.Debug(log.CatDB, "Saved view", "name", m.Name, "id", id, "fingerprint", m.Fingerprint)
	return nil
}

func (r *viewRepository) FindByName(name string) (*domain.View, error) {
	row := r.db.QueryRow(`SELECT `+viewColumns+` FROM views WHERE name = ?`, name)
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ViewNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find view: %w", err)
	}
	return v, nil
}

func (r *viewRepository) Delete(name string) error {
	res, err := r.db.Exec(`DELETE FROM views WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &domain.ViewNotFoundError{Name: name}
	}
	log.Debug(log.CatDB, "Deleted view", "name", name)
	return nil
}

func (r *viewRepository) List(filter domain.ListFilter) ([]*domain.View, error) {
	var (
		where []string
		args  []any
	)
	if filter.Dataset != "" {
		where = append(where, "dataset = ?")
		args = append(args, filter.Dataset)
	}
	if filter.FilterKind != "" {
		where = append(where, "id IN (SELECT view_id FROM view_filters WHERE kind = ?)")
		args = append(args, filter.FilterKind)
	}
	if filter.FilterKey != "" {
		where = append(where, "id IN (SELECT view_id FROM view_filters WHERE filter_key = ?)")
		args = append(args, filter.FilterKey)
	}

	query := `SELECT ` + viewColumns + ` FROM views`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var views []*domain.View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate views: %w", err)
	}
	return views, nil
}

// Close is a no-op; the connection belongs to DB.
func (r *viewRepository) Close() error {
	return nil
}

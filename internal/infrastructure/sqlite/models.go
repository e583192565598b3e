package sqlite

import (
	"fmt"
	"time"

	"github.com/zjrosen/gridstate/internal/snapshot"
	"github.com/zjrosen/gridstate/internal/views/domain"
)

// ViewModel is the row shape of the views table.
type ViewModel struct {
	ID          int64
	GUID        string
	Name        string
	Description *string
	Dataset     *string
	Snapshot    string
	Fingerprint string
	CreatedAt   int64
	UpdatedAt   int64
}

// filterRow is one entry of view_filters, which List uses to find views by
// the filters they carry without decoding snapshots.
type filterRow struct {
	Position int
	Kind     string
	Key      string
}

func toViewModel(v *domain.View) (*ViewModel, error) {
	s := v.Snapshot()
	data, err := s.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return &ViewModel{
		ID:          v.ID(),
		GUID:        v.GUID(),
		Name:        v.Name(),
		Description: nullable(v.Description()),
		Dataset:     nullable(v.Dataset()),
		Snapshot:    string(data),
		Fingerprint: s.FingerprintHex(),
		CreatedAt:   v.CreatedAt().Unix(),
		UpdatedAt:   v.UpdatedAt().Unix(),
	}, nil
}

func (m *ViewModel) toDomain() (*domain.View, error) {
	s, err := snapshot.ParseJSON([]byte(m.Snapshot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of view %s: %w", m.Name, err)
	}
	return domain.Reconstitute(
		m.ID,
		m.GUID,
		m.Name,
		deref(m.Description),
		deref(m.Dataset),
		s,
		time.Unix(m.CreatedAt, 0),
		time.Unix(m.UpdatedAt, 0),
	), nil
}

func filterRows(s snapshot.Snapshot) []filterRow {
	rows := make([]filterRow, 0, len(s.Filters))
	for i, f := range s.Filters {
		key := f.Key()
		rows = append(rows, filterRow{Position: i, Kind: string(key.Kind), Key: key.String()})
	}
	return rows
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

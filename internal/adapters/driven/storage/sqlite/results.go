package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

const resultColumns = `id, project_id, base_summary, amendment_summaries, clause_change_log,
	final_contract, document_incorporation_log, fallback, created_at`

// Save inserts a new result row. Earlier rows are never updated.
func (s *resultStore) Save(ctx context.Context, projectID string, result *domain.MergeResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("%w: result id is required", domain.ErrInvalidInput)
	}

	amendments, err := marshalList(result.AmendmentSummaries)
	if err != nil {
		return fmt.Errorf("marshalling amendment summaries: %w", err)
	}
	changes, err := marshalList(result.ClauseChangeLog)
	if err != nil {
		return fmt.Errorf("marshalling clause change log: %w", err)
	}
	incorporation, err := marshalList(result.DocumentIncorporationLog)
	if err != nil {
		return fmt.Errorf("marshalling incorporation log: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO merge_results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ID, projectID, result.BaseSummary, amendments, changes,
		result.FinalContract, incorporation, result.Fallback, createdAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// Load returns the newest result for a project.
func (s *resultStore) Load(ctx context.Context, projectID string) (*domain.MergeResult, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+resultColumns+`
		FROM merge_results WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1
	`, projectID)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History returns all results for a project, newest first.
func (s *resultStore) History(ctx context.Context, projectID string) ([]domain.MergeResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+resultColumns+`
		FROM merge_results WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	results := []domain.MergeResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*domain.MergeResult, error) {
	var r domain.MergeResult
	var amendments, changes, incorporation string
	var createdAt int64

	if err := row.Scan(&r.ID, &r.ProjectID, &r.BaseSummary, &amendments, &changes,
		&r.FinalContract, &incorporation, &r.Fallback, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning result: %w", err)
	}

	r.AmendmentSummaries = []domain.AmendmentSummary{}
	if err := json.Unmarshal([]byte(amendments), &r.AmendmentSummaries); err != nil {
		return nil, fmt.Errorf("unmarshaling amendment summaries: %w", err)
	}
	r.ClauseChangeLog = []domain.ClauseChange{}
	if err := json.Unmarshal([]byte(changes), &r.ClauseChangeLog); err != nil {
		return nil, fmt.Errorf("unmarshaling clause change log: %w", err)
	}
	r.DocumentIncorporationLog = []string{}
	if err := json.Unmarshal([]byte(incorporation), &r.DocumentIncorporationLog); err != nil {
		return nil, fmt.Errorf("unmarshaling incorporation log: %w", err)
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()

	return &r, nil
}

// marshalList encodes a slice, writing nil as an empty array.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

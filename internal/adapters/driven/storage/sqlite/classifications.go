package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// classificationStore implements driven.ClassificationStore.
type classificationStore struct {
	store *Store
}

var _ driven.ClassificationStore = (*classificationStore)(nil)

// SaveBatch replaces the stored batch for a project in one transaction.
// Document text is not stored; it is read again from the project files.
func (s *classificationStore) SaveBatch(ctx context.Context, projectID string, batch *domain.ClassificationBatch) error {
	if batch == nil {
		return fmt.Errorf("%w: batch is required", domain.ErrInvalidInput)
	}

	chrono := make(map[string]int, len(batch.ChronologicalOrder))
	for i, name := range batch.ChronologicalOrder {
		if _, ok := chrono[name]; !ok {
			chrono[name] = i
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM classifications WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("clearing classification: %w", err)
	}

	now := time.Now().UTC().UnixNano()
	for i, doc := range batch.Documents {
		doc.Text = ""
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshalling document %s: %w", doc.Filename, err)
		}

		pos, ok := chrono[doc.Filename]
		if !ok {
			pos = len(batch.ChronologicalOrder) + i
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO classifications (project_id, filename, position, chronological_position, document, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(project_id, filename) DO UPDATE SET
				position = excluded.position,
				chronological_position = excluded.chronological_position,
				document = excluded.document,
				updated_at = excluded.updated_at
		`, projectID, doc.Filename, i, pos, string(data), now)
		if err != nil {
			return fmt.Errorf("saving document %s: %w", doc.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing classification: %w", err)
	}
	return nil
}

// LoadBatch returns the stored batch for a project.
func (s *classificationStore) LoadBatch(ctx context.Context, projectID string) (*domain.ClassificationBatch, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT filename, chronological_position, document
		FROM classifications WHERE project_id = ?
		ORDER BY position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying classification: %w", err)
	}
	defer rows.Close()

	type ranked struct {
		filename string
		pos      int
	}

	batch := &domain.ClassificationBatch{}
	var order []ranked
	for rows.Next() {
		var filename, data string
		var pos int
		if err := rows.Scan(&filename, &pos, &data); err != nil {
			return nil, fmt.Errorf("scanning classification: %w", err)
		}

		doc, err := decodeDocument([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("decoding document %s: %w", filename, err)
		}
		doc.Filename = filename
		batch.Documents = append(batch.Documents, doc)
		order = append(order, ranked{filename: filename, pos: pos})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating classification: %w", err)
	}

	if len(batch.Documents) == 0 {
		return nil, domain.ErrNotFound
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].pos < order[j].pos })
	batch.ChronologicalOrder = make([]string, len(order))
	for i, r := range order {
		batch.ChronologicalOrder[i] = r.filename
	}
	return batch, nil
}

// storedDocument accepts both the current top-level layout and the older
// layout that nested classification fields under "metadata".
type storedDocument struct {
	domain.Document
	Metadata *legacyMetadata `json:"metadata,omitempty"`
}

type legacyMetadata struct {
	Role          string  `json:"role"`
	ExecutionDate string  `json:"execution_date"`
	EffectiveDate string  `json:"effective_date"`
	Amends        string  `json:"amends"`
	Confidence    float64 `json:"confidence"`
}

// decodeDocument decodes a stored document, lifting legacy metadata fields
// into the top-level fields when those are empty.
func decodeDocument(data []byte) (domain.Document, error) {
	var stored storedDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.Document{}, err
	}

	doc := stored.Document
	if m := stored.Metadata; m != nil {
		if doc.Role == "" {
			doc.Role = domain.Role(m.Role)
		}
		if doc.ExecutionDate == nil {
			doc.ExecutionDate = domain.ParseDate(m.ExecutionDate)
		}
		if doc.EffectiveDate == nil {
			doc.EffectiveDate = domain.ParseDate(m.EffectiveDate)
		}
		if doc.Amends == "" {
			doc.Amends = m.Amends
		}
		if doc.Confidence == 0 {
			doc.Confidence = m.Confidence
		}
	}
	doc.Role = domain.ParseRole(string(doc.Role))
	return doc, nil
}

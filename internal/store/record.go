// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lightwork/internal/models"
)

// RecordOrder selects the sort order of published listings.
type RecordOrder string

const (
	// OrderDate sorts newest first.
	OrderDate RecordOrder = "date"
	// OrderTitle sorts alphabetically.
	OrderTitle RecordOrder = "title"
)

func (o RecordOrder) clause() string {
	if o == OrderTitle {
		return "title ASC, created_at DESC"
	}
	return "created_at DESC, title ASC"
}

const recordColumns = `id, type, title, slug, body, status, version, created_at, updated_at`

// RecordStore handles content records and their custom field values.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore creates a new RecordStore with the given database connection.
func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc rowScanner) (*models.Record, error) {
	r := &models.Record{}
	err := sc.Scan(&r.ID, &r.Type, &r.Title, &r.Slug, &r.Body, &r.Status,
		&r.Version, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// ListByType returns every record of a type regardless of status,
// newest first, with their field values.
func (s *RecordStore) ListByType(typ string) ([]models.Record, error) {
	rows, err := s.db.Query(`SELECT `+recordColumns+`
		FROM records WHERE type = $1
		ORDER BY created_at DESC`, typ)
	if err != nil {
		return nil, fmt.Errorf("list records by type: %w", err)
	}
	defer rows.Close()

	var items []models.Record
	var ids []uuid.UUID
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		items = append(items, *r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fields, err := s.fieldsFor(ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Fields = fields[items[i].ID]
	}
	return items, nil
}

// ListPublished returns one page of published records of a type along with
// the total number of published records. Pages are 1-based; field values
// are loaded for every returned record. A page past the last one is empty.
func (s *RecordStore) ListPublished(typ string, order RecordOrder, page, perPage int) ([]models.Record, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE type = $1 AND status = 'published'`,
		typ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count published records: %w", err)
	}
	if perPage < 1 || page > (total+perPage-1)/perPage {
		return nil, total, nil
	}

	rows, err := s.db.Query(`SELECT `+recordColumns+`
		FROM records WHERE type = $1 AND status = 'published'
		ORDER BY `+order.clause()+`
		LIMIT $2 OFFSET $3`, typ, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list published records: %w", err)
	}
	defer rows.Close()

	var items []models.Record
	var ids []uuid.UUID
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		items = append(items, *r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	fields, err := s.fieldsFor(ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Fields = fields[items[i].ID]
	}
	return items, total, nil
}

// FindByID retrieves a record with its field values. Returns nil if not found.
func (s *RecordStore) FindByID(id uuid.UUID) (*models.Record, error) {
	r, err := scanRecord(s.db.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	if r.Fields, err = s.Fields(r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// FindPublished retrieves a published record of a type by slug, with its
// field values. Used for public rendering. Returns nil if not found.
func (s *RecordStore) FindPublished(typ, slug string) (*models.Record, error) {
	r, err := scanRecord(s.db.QueryRow(`SELECT `+recordColumns+`
		FROM records WHERE type = $1 AND slug = $2 AND status = 'published'`, typ, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published record: %w", err)
	}
	if r.Fields, err = s.Fields(r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// SlugExists checks whether a slug is taken within a type, optionally
// excluding one record (for updates).
func (s *RecordStore) SlugExists(typ, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excludeID != nil {
		err = s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM records WHERE type = $1 AND slug = $2 AND id != $3)`,
			typ, slug, *excludeID).Scan(&exists)
	} else {
		err = s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM records WHERE type = $1 AND slug = $2)`,
			typ, slug).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check record slug: %w", err)
	}
	return exists, nil
}

// Create inserts a record together with its field values and returns it
// with the generated ID and timestamps.
func (s *RecordStore) Create(r *models.Record) (*models.Record, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create record: %w", err)
	}
	defer tx.Rollback()

	if r.Status == "" {
		r.Status = models.RecordDraft
	}
	result, err := scanRecord(tx.QueryRow(`
		INSERT INTO records (type, title, slug, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+recordColumns,
		r.Type, r.Title, r.Slug, r.Body, r.Status))
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	if err := setFields(tx, result.ID, r.Fields); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create record: %w", err)
	}
	result.Fields = r.Fields
	return result, nil
}

// Update saves the record's columns and upserts its field values. The
// version counter is bumped on every save.
func (s *RecordStore) Update(r *models.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update record: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE records SET
			title = $1, slug = $2, body = $3, status = $4,
			version = version + 1, updated_at = NOW()
		WHERE id = $5`,
		r.Title, r.Slug, r.Body, r.Status, r.ID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := setFields(tx, r.ID, r.Fields); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateBody replaces only the body of a record. Used when the server
// rewrites a template page (for example to anchor an element).
func (s *RecordStore) UpdateBody(id uuid.UUID, body string) error {
	_, err := s.db.Exec(`UPDATE records SET body = $1, version = version + 1, updated_at = NOW() WHERE id = $2`,
		body, id)
	if err != nil {
		return fmt.Errorf("update record body: %w", err)
	}
	return nil
}

// Delete removes a record and, by cascade, its field values.
func (s *RecordStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// CountByType returns the number of records of every type that has any.
func (s *RecordStore) CountByType() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM records GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan record count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}

// Fields returns the custom field values of a record keyed by field name.
func (s *RecordStore) Fields(id uuid.UUID) (map[string]string, error) {
	all, err := s.fieldsFor([]uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return all[id], nil
}

// SetFields upserts the given field values of a record.
func (s *RecordStore) SetFields(id uuid.UUID, fields map[string]string) error {
	return setFields(s.db, id, fields)
}

// OverwriteFields writes value into each named field of every record of
// the type, creating missing field rows. Returns the number of field
// values written.
func (s *RecordStore) OverwriteFields(typ string, names []string, value string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	res, err := s.db.Exec(`
		INSERT INTO record_fields (record_id, name, value, updated_at)
		SELECT r.id, n.name, $3, NOW()
		FROM records r CROSS JOIN unnest($2::text[]) AS n(name)
		WHERE r.type = $1
		ON CONFLICT (record_id, name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		typ, names, value)
	if err != nil {
		return 0, fmt.Errorf("overwrite fields of %s: %w", typ, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *RecordStore) fieldsFor(ids []uuid.UUID) (map[uuid.UUID]map[string]string, error) {
	out := make(map[uuid.UUID]map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := s.db.Query(`SELECT record_id, name, value FROM record_fields
		WHERE record_id = ANY($1::uuid[]) ORDER BY name`, keys)
	if err != nil {
		return nil, fmt.Errorf("load record fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name, value string
		if err := rows.Scan(&id, &name, &value); err != nil {
			return nil, fmt.Errorf("scan record field: %w", err)
		}
		if out[id] == nil {
			out[id] = make(map[string]string)
		}
		out[id][name] = value
	}
	return out, rows.Err()
}

func setFields(q execer, id uuid.UUID, fields map[string]string) error {
	for name, value := range fields {
		_, err := q.Exec(`
			INSERT INTO record_fields (record_id, name, value, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (record_id, name)
			DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			id, name, value)
		if err != nil {
			return fmt.Errorf("set field %s: %w", name, err)
		}
	}
	return nil
}

func renameType(q execer, oldSlug, newSlug string) error {
	if _, err := q.Exec(`UPDATE records SET type = $1, updated_at = NOW() WHERE type = $2`,
		newSlug, oldSlug); err != nil {
		return fmt.Errorf("rename records %s -> %s: %w", oldSlug, newSlug, err)
	}
	return nil
}

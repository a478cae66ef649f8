package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// ErrNotFound is returned for unknown or pruned session IDs
var ErrNotFound = errors.New("session not found")

// ErrConflict is returned by UpdateAt when the session changed since it was read
var ErrConflict = errors.New("session was modified concurrently")

// Audit actions
const (
	ActionCreate   = "create"
	ActionSelect   = "select"
	ActionDeselect = "deselect"
	ActionReset    = "reset"
	ActionExport   = "export"
)

// Session is one configurator session
type Session struct {
	ID         string      `json:"id"`
	State      stack.State `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ExportedAs string      `json:"exported_as,omitempty"`
	Revision   int64       `json:"revision"` // incremented by every write
	Events     []Event     `json:"events,omitempty"`
}

// Event is one audit trail entry
type Event struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"`
	Category  string          `json:"category,omitempty"`
	Value     string          `json:"value,omitempty"`
	Changes   []models.Change `json:"changes"`
	CreatedAt time.Time       `json:"created_at"`
}

// Create stores a new session holding s
func (st *Store) Create(ctx context.Context, s stack.State) (*Session, error) {
	now := st.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		State:     s.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	stateJSON, err := encodeState(s)
	if err != nil {
		return nil, err
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, stateJSON, now.UnixMilli(), now.UnixMilli()); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	event := Event{Action: ActionCreate, CreatedAt: now}
	if err := insertEvent(ctx, tx, sess.ID, &event); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}

	sess.Events = []Event{event}
	return sess, nil
}

// Get loads a session with its audit trail, oldest event first
func (st *Store) Get(ctx context.Context, id string) (*Session, error) {
	sess := &Session{ID: id}
	var stateJSON string
	var created, updated int64
	var exported sql.NullString

	err := st.db.QueryRowContext(ctx,
		`SELECT state, created_at, updated_at, exported_as, revision FROM sessions WHERE id = ?`, id).
		Scan(&stateJSON, &created, &updated, &exported, &sess.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	sess.State, err = decodeState(stateJSON)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	sess.CreatedAt = time.UnixMilli(created).UTC()
	sess.UpdatedAt = time.UnixMilli(updated).UTC()
	sess.ExportedAs = exported.String

	sess.Events, err = st.Events(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Update replaces the session state and appends event to the audit trail
// in one transaction
func (st *Store) Update(ctx context.Context, id string, s stack.State, event Event) (*Event, error) {
	return st.update(ctx, id, nil, s, event)
}

// UpdateAt is Update conditioned on the session still being at revision.
// It returns ErrConflict when another write got there first.
func (st *Store) UpdateAt(ctx context.Context, id string, revision int64, s stack.State, event Event) (*Event, error) {
	return st.update(ctx, id, &revision, s, event)
}

func (st *Store) update(ctx context.Context, id string, revision *int64, s stack.State, event Event) (*Event, error) {
	stateJSON, err := encodeState(s)
	if err != nil {
		return nil, err
	}
	now := st.now().UTC()
	event.CreatedAt = now

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE sessions SET state = ?, updated_at = ?, revision = revision + 1 WHERE id = ?`
	args := []interface{}{stateJSON, now.UnixMilli(), id}
	if revision != nil {
		query += ` AND revision = ?`
		args = append(args, *revision)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	} else if n == 0 {
		return nil, missingOrConflict(ctx, tx, id, revision)
	}

	if err := insertEvent(ctx, tx, id, &event); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}
	return &event, nil
}

// MarkExported records the project name a session was exported as
func (st *Store) MarkExported(ctx context.Context, id, projectName string) error {
	now := st.now().UTC()

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET exported_as = ?, updated_at = ?, revision = revision + 1 WHERE id = ?`,
		projectName, now.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	event := Event{Action: ActionExport, Value: projectName, CreatedAt: now}
	if err := insertEvent(ctx, tx, id, &event); err != nil {
		return err
	}
	return tx.Commit()
}

// Events returns a session's audit trail, oldest first
func (st *Store) Events(ctx context.Context, id string) ([]Event, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT id, action, category, value, changes, created_at
		FROM session_events WHERE session_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var category, value sql.NullString
		var changesJSON string
		var created int64
		if err := rows.Scan(&e.ID, &e.Action, &category, &value, &changesJSON, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Category = category.String
		e.Value = value.String
		e.CreatedAt = time.UnixMilli(created).UTC()
		if err := json.Unmarshal([]byte(changesJSON), &e.Changes); err != nil {
			return nil, fmt.Errorf("unmarshal changes: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune deletes sessions not updated since before. Their events go with them.
func (st *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	cutoff := before.UnixMilli()

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_events WHERE session_id IN (SELECT id FROM sessions WHERE updated_at < ?)`,
		cutoff); err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return n, nil
}

// Count returns the number of stored sessions
func (st *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// missingOrConflict explains an update that matched no row
func missingOrConflict(ctx context.Context, tx *sql.Tx, id string, revision *int64) error {
	if revision == nil {
		return ErrNotFound
	}
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return ErrConflict
}

func insertEvent(ctx context.Context, tx *sql.Tx, sessionID string, e *Event) error {
	if e.Changes == nil {
		e.Changes = []models.Change{}
	}
	changesJSON, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO session_events (session_id, action, category, value, changes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, e.Action, nullString(e.Category), nullString(e.Value), string(changesJSON), e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	return nil
}

func encodeState(s stack.State) (string, error) {
	data, err := json.Marshal(s.ToMap())
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

func decodeState(data string) (stack.State, error) {
	var m map[string][]string
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return stack.FromMap(m)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

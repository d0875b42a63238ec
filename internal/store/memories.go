package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Memory node kinds.
const (
	KindAtomic    = "atomic"
	KindComposite = "composite"
	KindPattern   = "pattern"
	KindInsight   = "insight"
)

// Memory lifecycle statuses. Deleted is a tombstone: rows are never
// physically removed.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

// Memory is one stored memory node.
type Memory struct {
	ID              string            `json:"id"`
	Content         string            `json:"content"`
	Kind            string            `json:"kind"`
	Importance      float64           `json:"importance"`
	CreatedAt       int64             `json:"created_at"`
	LastAccessed    *int64            `json:"last_accessed,omitempty"`
	AccessCount     int               `json:"access_count"`
	Tags            []string          `json:"tags,omitempty"`
	Context         map[string]string `json:"context,omitempty"`
	Status          string            `json:"status"`
	Version         int               `json:"version"`
	EvolutionReason string            `json:"evolution_reason,omitempty"`
	ReplacedBy      string            `json:"replaced_by,omitempty"`
	ProjectRef      string            `json:"project_ref,omitempty"`
	SessionRef      string            `json:"session_ref,omitempty"`
}

// memoryColumns is the canonical select list shared by all scans.
const memoryColumns = `id, content, kind, importance, created_at, last_accessed, access_count,
	tags, context, status, version, evolution_reason, replaced_by, project_ref, session_ref`

// MemoryID derives the stable node id from content and creation time:
// the first 16 hex chars of SHA-256 over both.
func MemoryID(content string, createdAt int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", content, createdAt)))
	return hex.EncodeToString(sum[:])[:16]
}

// Insert stores a new memory node. Fills ID, CreatedAt, Status, Version and
// defaults the kind to atomic.
func (db *DB) Insert(m *Memory) error {
	now := time.Now().UnixMilli()
	if m.Kind == "" {
		m.Kind = KindAtomic
	}
	m.ID = MemoryID(m.Content, now)
	m.CreatedAt = now
	m.Status = StatusActive
	m.Version = 1

	tags, err := marshalTags(m.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	context, err := marshalContext(m.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO memories (id, content, kind, importance, created_at, access_count,
			tags, context, status, version, project_ref, session_ref)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, 1, NULLIF(?, ''), NULLIF(?, ''))
	`, m.ID, m.Content, m.Kind, m.Importance, now, tags, context, StatusActive,
		m.ProjectRef, m.SessionRef)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// Get returns a memory by id, or nil if not found. Tombstoned rows are
// returned too; callers filtering by status use Retrieve.
func (db *DB) Get(id string) (*Memory, error) {
	row := db.QueryRow(`SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

// RetrieveQuery filters Retrieve results. The text filter is a coarse
// token-wise LIKE match, not ranked search; ranking happens in the graph.
type RetrieveQuery struct {
	Text           string
	Kind           string
	ProjectRef     string
	MinImportance  float64
	Limit          int
	IncludeDeleted bool
}

// Retrieve returns memory records matching the query, ordered by importance
// descending. Tombstoned rows are excluded unless IncludeDeleted is set.
func (db *DB) Retrieve(q RetrieveQuery) ([]Memory, error) {
	where := []string{"1=1"}
	var args []any

	if !q.IncludeDeleted {
		where = append(where, "status != ?")
		args = append(args, StatusDeleted)
	}
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, q.Kind)
	}
	if q.ProjectRef != "" {
		where = append(where, "project_ref = ?")
		args = append(args, q.ProjectRef)
	}
	if q.MinImportance > 0 {
		where = append(where, "importance >= ?")
		args = append(args, q.MinImportance)
	}
	if clause, tokenArgs := textFilter(q.Text); clause != "" {
		where = append(where, clause)
		args = append(args, tokenArgs...)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)

	rows, err := db.Query(`
		SELECT `+memoryColumns+` FROM memories
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY importance DESC, created_at DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("retrieve memories: %w", err)
	}
	defer rows.Close()
	return scanMemories(rows)
}

// textFilter builds an OR-joined LIKE clause over up to five query tokens.
func textFilter(text string) (string, []any) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return "", nil
	}
	if len(fields) > 5 {
		fields = fields[:5]
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		clauses[i] = "lower(content) LIKE ?"
		args[i] = "%" + f + "%"
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

// ListActive returns all non-tombstoned, non-archived memories. Used to
// rebuild the in-memory graph and by the decay job.
func (db *DB) ListActive() ([]Memory, error) {
	rows, err := db.Query(`
		SELECT `+memoryColumns+` FROM memories WHERE status = ?
		ORDER BY created_at
	`, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}
	defer rows.Close()
	return scanMemories(rows)
}

// MemoryUpdate carries the optional fields of an Update. Nil fields are left
// untouched.
type MemoryUpdate struct {
	Content         *string
	Importance      *float64
	Status          *string
	EvolutionReason *string
	ReplacedBy      *string
}

// Update mutates a memory in place. A content change bumps the version.
// Returns false if the id does not exist.
func (db *DB) Update(id string, u MemoryUpdate) (bool, error) {
	set := []string{}
	var args []any

	if u.Content != nil {
		set = append(set, "content = ?", "version = version + 1")
		args = append(args, *u.Content)
	}
	if u.Importance != nil {
		set = append(set, "importance = ?")
		args = append(args, *u.Importance)
	}
	if u.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *u.Status)
	}
	if u.EvolutionReason != nil {
		set = append(set, "evolution_reason = ?")
		args = append(args, *u.EvolutionReason)
	}
	if u.ReplacedBy != nil {
		set = append(set, "replaced_by = ?")
		args = append(args, *u.ReplacedBy)
	}
	if len(set) == 0 {
		return false, nil
	}
	args = append(args, id)

	result, err := db.Exec(`UPDATE memories SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("update memory: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// SoftDelete tombstones a memory, optionally recording its replacement.
// The row stays retrievable by id. Returns false if the id does not exist.
func (db *DB) SoftDelete(id, replacedBy string) (bool, error) {
	result, err := db.Exec(`
		UPDATE memories SET status = ?, replaced_by = NULLIF(?, '') WHERE id = ?
	`, StatusDeleted, replacedBy, id)
	if err != nil {
		return false, fmt.Errorf("soft delete memory: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// Touch updates last_accessed and increments access_count (retrieval signal).
func (db *DB) Touch(id string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE memories SET last_accessed = ?, access_count = access_count + 1 WHERE id = ?
	`, now, id)
	if err != nil {
		return fmt.Errorf("touch memory: %w", err)
	}
	return nil
}

// SetImportance overwrites the stored importance. Used by the decay job.
func (db *DB) SetImportance(id string, importance float64) error {
	_, err := db.Exec(`UPDATE memories SET importance = ? WHERE id = ?`, importance, id)
	if err != nil {
		return fmt.Errorf("set importance: %w", err)
	}
	return nil
}

func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func marshalContext(context map[string]string) (string, error) {
	if len(context) == 0 {
		return "", nil
	}
	b, err := json.Marshal(context)
	return string(b), err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*Memory, error) {
	var m Memory
	var lastAccessed sql.NullInt64
	var tags, context, reason, replacedBy, projectRef, sessionRef sql.NullString

	err := row.Scan(&m.ID, &m.Content, &m.Kind, &m.Importance, &m.CreatedAt,
		&lastAccessed, &m.AccessCount, &tags, &context, &m.Status, &m.Version,
		&reason, &replacedBy, &projectRef, &sessionRef)
	if err != nil {
		return nil, err
	}

	if lastAccessed.Valid {
		m.LastAccessed = &lastAccessed.Int64
	}
	if tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &m.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if context.String != "" {
		if err := json.Unmarshal([]byte(context.String), &m.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
	}
	m.EvolutionReason = reason.String
	m.ReplacedBy = replacedBy.String
	m.ProjectRef = projectRef.String
	m.SessionRef = sessionRef.String
	return &m, nil
}

func scanMemories(rows *sql.Rows) ([]Memory, error) {
	var memories []Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

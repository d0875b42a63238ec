package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Relationship kinds for links between memories.
const (
	RelSemantic      = "semantic"
	RelCausal        = "causal"
	RelTemporal      = "temporal"
	RelSpatial       = "spatial"
	RelHierarchical  = "hierarchical"
	RelContradictory = "contradictory"
	RelSupportive    = "supportive"
)

// Link is one directed half of a bidirectional association. Creating a link
// always writes the mirror record too, so traversal is direction-agnostic.
type Link struct {
	ID         string  `json:"id"`
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	Kind       string  `json:"kind"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
	CreatedAt  int64   `json:"created_at"`
	Auto       bool    `json:"auto"`
}

// CreateLink writes the link pair A->B and B->A with identical kind, strength
// and confidence. Self-links and duplicates of the same ordered pair+kind are
// no-ops returning an empty id. Both endpoints must exist; a link is never
// written against a missing node.
func (db *DB) CreateLink(sourceID, targetID, kind string, strength, confidence float64, auto bool) (string, error) {
	if sourceID == targetID {
		return "", nil
	}

	for _, id := range []string{sourceID, targetID} {
		m, err := db.Get(id)
		if err != nil {
			return "", err
		}
		if m == nil {
			return "", fmt.Errorf("link endpoint %s does not exist", id)
		}
	}

	var existing int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM links WHERE source_id = ? AND target_id = ? AND kind = ?
	`, sourceID, targetID, kind).Scan(&existing)
	if err != nil {
		return "", fmt.Errorf("check duplicate link: %w", err)
	}
	if existing > 0 {
		return "", nil
	}

	now := time.Now().UnixMilli()
	autoFlag := 0
	if auto {
		autoFlag = 1
	}

	forwardID := uuid.NewString()
	mirrorID := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin link tx: %w", err)
	}
	for _, l := range []struct {
		id, src, dst string
	}{
		{forwardID, sourceID, targetID},
		{mirrorID, targetID, sourceID},
	} {
		if _, err := tx.Exec(`
			INSERT INTO links (id, source_id, target_id, kind, strength, confidence, created_at, auto)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.id, l.src, l.dst, kind, strength, confidence, now, autoFlag); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert link %s->%s: %w", l.src, l.dst, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit link tx: %w", err)
	}

	return forwardID, nil
}

// GetLinks returns all links whose source is the given node. Because every
// link is written as a mirrored pair, this covers the node's full
// neighborhood.
func (db *DB) GetLinks(nodeID string) ([]Link, error) {
	rows, err := db.Query(`
		SELECT id, source_id, target_id, kind, strength, confidence, created_at, auto
		FROM links WHERE source_id = ?
		ORDER BY strength DESC
	`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("get links: %w", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

// AllLinks returns every link record. Used to rebuild the in-memory graph.
func (db *DB) AllLinks() ([]Link, error) {
	rows, err := db.Query(`
		SELECT id, source_id, target_id, kind, strength, confidence, created_at, auto
		FROM links
	`)
	if err != nil {
		return nil, fmt.Errorf("all links: %w", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

func scanLinks(rows *sql.Rows) ([]Link, error) {
	var links []Link
	for rows.Next() {
		var l Link
		var auto int
		if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.Kind,
			&l.Strength, &l.Confidence, &l.CreatedAt, &auto); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		l.Auto = auto != 0
		links = append(links, l)
	}
	return links, rows.Err()
}

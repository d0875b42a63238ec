package store

import "fmt"

// Stats aggregates counts over the whole database.
type Stats struct {
	TotalMemories int            `json:"total_memories"`
	ByStatus      map[string]int `json:"by_status"`
	ByKind        map[string]int `json:"by_kind"`
	TotalLinks    int            `json:"total_links"`
	AvgImportance float64        `json:"avg_importance"`
	SchemaVersion int            `json:"schema_version"`
}

// GetStats computes aggregate counts across memories and links. Kind counts
// cover active memories only; status counts cover everything.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{
		ByStatus: map[string]int{},
		ByKind:   map[string]int{},
	}

	rows, err := db.Query(`SELECT status, COUNT(*) FROM memories GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		s.ByStatus[status] = n
		s.TotalMemories += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT kind, COUNT(*) FROM memories WHERE status = ? GROUP BY kind`, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("stats by kind: %w", err)
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		s.ByKind[kind] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&s.TotalLinks); err != nil {
		return nil, fmt.Errorf("stats link count: %w", err)
	}
	if err := db.QueryRow(`
		SELECT COALESCE(AVG(importance), 0) FROM memories WHERE status = ?
	`, StatusActive).Scan(&s.AvgImportance); err != nil {
		return nil, fmt.Errorf("stats avg importance: %w", err)
	}

	version, err := db.SchemaVersion()
	if err != nil {
		return nil, fmt.Errorf("stats schema version: %w", err)
	}
	s.SchemaVersion = version

	return s, nil
}

package store

// Stats summarizes the database content for reporting.
type Stats struct {
	Rows      map[string]int64  // per data table
	LastLoads map[string]string // source -> completion time of last successful load
}

// Stats returns row counts per data table and the last successful load per
// source. A missing table counts as zero rows.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{
		Rows:      make(map[string]int64),
		LastLoads: make(map[string]string),
	}
	for _, table := range DataTables {
		var n int64
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			continue
		}
		stats.Rows[table] = n
	}

	rows, err := s.db.Query(`
		SELECT source, MAX(completed_at)
		FROM etl_loads
		WHERE status = ?
		GROUP BY source`, StatusSuccess)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var source, last string
		if err := rows.Scan(&source, &last); err != nil {
			return nil, err
		}
		stats.LastLoads[source] = last
	}
	return stats, rows.Err()
}

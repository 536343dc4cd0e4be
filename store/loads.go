package store

import (
	"time"

	"github.com/google/uuid"
)

// Load statuses recorded in etl_loads.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// StartLoad records the beginning of a load run and returns its run id.
func (s *Store) StartLoad(source, loadType, sourceFile string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO etl_loads (id, source, load_type, started_at, status, source_file)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, source, loadType, time.Now().UTC().Format(time.RFC3339), StatusRunning, sourceFile)
	if err != nil {
		return "", err
	}
	return runID, nil
}

// FinishLoad transitions a run to its terminal state. etl_loads is append-only
// apart from this single update.
func (s *Store) FinishLoad(runID, status string, processed, inserted int64, errMsg string) error {
	_, err := s.db.Exec(`
		UPDATE etl_loads
		SET completed_at = ?, status = ?, rows_processed = ?, rows_inserted = ?, error_message = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), status, processed, inserted, nullable(errMsg), runID)
	return err
}

// RecordDownload audits a fetched source file.
func (s *Store) RecordDownload(source, url, filename string, size int64) error {
	_, err := s.db.Exec(`
		INSERT INTO etl_downloads (source, url, filename, downloaded_at, file_size_bytes, status)
		VALUES (?, ?, ?, ?, ?, 'complete')`,
		source, url, filename, time.Now().UTC().Format(time.RFC3339), size)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

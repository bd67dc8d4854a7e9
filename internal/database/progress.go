// file: internal/database/progress.go
// version: 1.2.0
// guid: 0b5e8d3c-7f2a-4b9e-8c1d-4a6f0e2b9d5c

package database

import (
	"database/sql"
	"fmt"

	"github.com/novelshelf/novelshelf/internal/metrics"
)

// readThreshold is the progress-log position at or above which a chapter
// counts as read.
const readThreshold = 0.9

// SaveProgress records a read position for (chapterID, deviceID), clamped to
// [0,1], then moves the per-(novelID, deviceID) pointer to this chapter.
//
// The pointer is overwritten unconditionally: a device re-reading an earlier
// chapter moves it backward. It records where the device last was, not its
// furthest progress.
func (s *SQLiteStore) SaveProgress(novelID, chapterID int64, positionPct float64, deviceID string) error {
	pct := clampPct(positionPct)

	_, err := s.db.Exec(`INSERT INTO reading_progress (novel_id, chapter_id, device_id, position_pct)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chapter_id, device_id) DO UPDATE SET
			position_pct = excluded.position_pct,
			updated_at = strftime('%s','now')`,
		novelID, chapterID, deviceID, pct)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO reading_state (novel_id, device_id, chapter_id, position_pct, updated_at)
		VALUES (?, ?, ?, ?, strftime('%s','now'))
		ON CONFLICT(novel_id, device_id) DO UPDATE SET
			chapter_id = excluded.chapter_id,
			position_pct = excluded.position_pct,
			updated_at = excluded.updated_at`,
		novelID, deviceID, chapterID, pct)
	if err != nil {
		return fmt.Errorf("failed to update reading state: %w", err)
	}

	metrics.IncProgressWrite()
	return nil
}

// GetContinuePoint returns the derived pointer for (novelID, deviceID), or
// nil if the device has never read this novel.
func (s *SQLiteStore) GetContinuePoint(novelID int64, deviceID string) (*ReadingState, error) {
	var rs ReadingState
	query := fmt.Sprintf(`SELECT %s FROM reading_state WHERE novel_id = ? AND device_id = ?`,
		readingStateColumns)
	err := scanReadingState(s.db.QueryRow(query, novelID, deviceID), &rs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

// GetFurthestProgress returns the most-recently-updated progress-log row for
// (novelID, deviceID), or nil when the log is empty. This can diverge from
// GetContinuePoint: the pointer follows last write wins while the log keeps
// one row per chapter.
func (s *SQLiteStore) GetFurthestProgress(novelID int64, deviceID string) (*ReadingProgress, error) {
	var p ReadingProgress
	query := fmt.Sprintf(`SELECT %s FROM reading_progress
		WHERE novel_id = ? AND device_id = ?
		ORDER BY updated_at DESC, id DESC LIMIT 1`, progressColumns)
	err := scanProgress(s.db.QueryRow(query, novelID, deviceID), &p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSummary computes the completion view of a novel for one device. The
// last-read sequence number comes from the pointer; when no pointer exists it
// falls back to the maximum sequence among the device's progress-log rows.
// A novel with no chapters yields percent 0 regardless of progress rows.
func (s *SQLiteStore) GetSummary(novelID int64, deviceID string) (*ProgressSummary, error) {
	summary := &ProgressSummary{}

	err := s.db.QueryRow("SELECT COUNT(*) FROM chapters WHERE novel_id = ?", novelID).
		Scan(&summary.TotalChapters)
	if err != nil {
		return nil, err
	}

	var lastSeq int
	err = s.db.QueryRow(`SELECT c.seq FROM reading_state rs
		JOIN chapters c ON c.id = rs.chapter_id
		WHERE rs.novel_id = ? AND rs.device_id = ?`, novelID, deviceID).
		Scan(&lastSeq)
	if err == sql.ErrNoRows {
		err = s.db.QueryRow(`SELECT COALESCE(MAX(c.seq), 0) FROM reading_progress rp
			JOIN chapters c ON c.id = rp.chapter_id
			WHERE rp.novel_id = ? AND rp.device_id = ?`, novelID, deviceID).
			Scan(&lastSeq)
	}
	if err != nil {
		return nil, err
	}
	summary.LastReadSeq = lastSeq

	if summary.TotalChapters > 0 {
		summary.Percent = clampPct(float64(lastSeq) / float64(summary.TotalChapters))
	}

	metrics.IncQuery("summary")
	return summary, nil
}

// GetReadMap returns the subset of chapterIDs this device has read, defined
// as a progress-log position of at least 0.9 for that (chapter, device).
func (s *SQLiteStore) GetReadMap(chapterIDs []int64, deviceID string) (map[int64]bool, error) {
	read := make(map[int64]bool, len(chapterIDs))
	if len(chapterIDs) == 0 {
		return read, nil
	}

	args := make([]interface{}, 0, len(chapterIDs)+2)
	args = append(args, deviceID, readThreshold)
	for _, id := range chapterIDs {
		args = append(args, id)
	}

	query := `SELECT chapter_id FROM reading_progress
		WHERE device_id = ? AND position_pct >= ? AND chapter_id IN (` +
		placeholders(len(chapterIDs)) + `)`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		read[id] = true
	}
	return read, rows.Err()
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

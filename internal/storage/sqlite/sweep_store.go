package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ridgeline-data/ascent.report/internal/elevation/sweep"
)

// SweepRecord is the persisted header of one sweep run.
type SweepRecord struct {
	ID          int64           `json:"id"`
	SweepID     string          `json:"sweep_id"`
	Status      string          `json:"status"`
	Request     json.RawMessage `json:"request,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	ComboCount  int             `json:"combo_count"`
	TrackCount  int             `json:"track_count"`
}

// ResultRecord is one ranked configuration belonging to a sweep.
type ResultRecord struct {
	SweepID          string          `json:"sweep_id"`
	Rank             int             `json:"rank"`
	ComboIndex       int             `json:"combo_index"`
	Score            float64         `json:"score"`
	Params           json.RawMessage `json:"params,omitempty"`
	MeanAccuracy     float64         `json:"mean_accuracy"`
	MedianAccuracy   float64         `json:"median_accuracy"`
	AccuracyStddev   float64         `json:"accuracy_stddev"`
	Within2          int             `json:"within_2"`
	Within5          int             `json:"within_5"`
	Within10         int             `json:"within_10"`
	Within15         int             `json:"within_15"`
	Within20         int             `json:"within_20"`
	Outside          int             `json:"outside"`
	MedianRatio      float64         `json:"median_ratio"`
	GainReductionPct float64         `json:"gain_reduction_pct"`
	LossReductionPct float64         `json:"loss_reduction_pct"`
}

// ResultRecordFrom flattens a ranked sweep result into its persisted form.
// Parameter marshalling failures are impossible for the plain numeric config
// struct, so the JSON column is simply left NULL if one ever occurs.
func ResultRecordFrom(sweepID string, rank int, r sweep.ScoredResult) ResultRecord {
	params, _ := json.Marshal(r.Params)
	return ResultRecord{
		SweepID:          sweepID,
		Rank:             rank,
		ComboIndex:       r.ComboIndex,
		Score:            r.Score,
		Params:           params,
		MeanAccuracy:     r.MeanAccuracy,
		MedianAccuracy:   r.MedianAccuracy,
		AccuracyStddev:   r.AccuracyStddev,
		Within2:          r.Within2,
		Within5:          r.Within5,
		Within10:         r.Within10,
		Within15:         r.Within15,
		Within20:         r.Within20,
		Outside:          r.Outside,
		MedianRatio:      r.MedianRatio,
		GainReductionPct: r.GainReductionPct,
		LossReductionPct: r.LossReductionPct,
	}
}

// SweepStore provides persistence for sweep runs and their ranked results.
type SweepStore struct {
	db *sql.DB
}

// NewSweepStore creates a new SweepStore.
func NewSweepStore(db *sql.DB) *SweepStore {
	return &SweepStore{db: db}
}

// InsertSweep creates a new sweep record when a run starts. If SweepID is
// empty, a UUID is generated and written back.
func (s *SweepStore) InsertSweep(record *SweepRecord) error {
	if record.SweepID == "" {
		record.SweepID = uuid.New().String()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}

	err := retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO sweeps (
				sweep_id, status, request, error, started_at,
				combo_count, track_count
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.SweepID,
			record.Status,
			nullJSON(record.Request),
			nullStr(record.Error),
			record.StartedAt.UTC().Format(time.RFC3339),
			record.ComboCount,
			record.TrackCount,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("inserting sweep %s: %w", record.SweepID, err)
	}
	return nil
}

// CompleteSweep marks a sweep finished with the given status and optional
// error message.
func (s *SweepStore) CompleteSweep(sweepID, status string, completedAt time.Time, errMsg string) error {
	err := retryOnBusy(func() error {
		result, err := s.db.Exec(`
			UPDATE sweeps
			SET status = ?, completed_at = ?, error = ?
			WHERE sweep_id = ?`,
			status,
			completedAt.UTC().Format(time.RFC3339),
			nullStr(errMsg),
			sweepID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("sweep %s not found", sweepID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("completing sweep %s: %w", sweepID, err)
	}
	return nil
}

// InsertResults persists the ranked results of a sweep in one transaction.
func (s *SweepStore) InsertResults(records []ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin results transaction: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`
			INSERT INTO sweep_results (
				sweep_id, rank, combo_index, score, params,
				mean_accuracy, median_accuracy, accuracy_stddev,
				within_2, within_5, within_10, within_15, within_20, outside,
				median_ratio, gain_reduction_pct, loss_reduction_pct
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare results insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			_, err := stmt.Exec(
				rec.SweepID, rec.Rank, rec.ComboIndex, rec.Score, nullJSON(rec.Params),
				rec.MeanAccuracy, rec.MedianAccuracy, rec.AccuracyStddev,
				rec.Within2, rec.Within5, rec.Within10, rec.Within15, rec.Within20, rec.Outside,
				rec.MedianRatio, rec.GainReductionPct, rec.LossReductionPct,
			)
			if err != nil {
				return fmt.Errorf("insert result rank %d: %w", rec.Rank, err)
			}
		}
		return tx.Commit()
	})
}

// GetSweep returns a single sweep record by ID.
func (s *SweepStore) GetSweep(sweepID string) (*SweepRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, sweep_id, status, request, error, started_at, completed_at,
		       combo_count, track_count
		FROM sweeps
		WHERE sweep_id = ?`, sweepID)

	rec, err := scanSweep(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sweep %s not found", sweepID)
		}
		return nil, fmt.Errorf("scan sweep: %w", err)
	}
	return rec, nil
}

// ListSweeps returns the most recent sweeps, newest first.
func (s *SweepStore) ListSweeps(limit int) ([]SweepRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, sweep_id, status, request, error, started_at, completed_at,
		       combo_count, track_count
		FROM sweeps
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sweeps: %w", err)
	}
	defer rows.Close()

	var out []SweepRecord
	for rows.Next() {
		rec, err := scanSweep(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan sweep row: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// TopResults returns a sweep's ranked results, best first.
func (s *SweepStore) TopResults(sweepID string, limit int) ([]ResultRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT sweep_id, rank, combo_index, score, params,
		       mean_accuracy, median_accuracy, accuracy_stddev,
		       within_2, within_5, within_10, within_15, within_20, outside,
		       median_ratio, gain_reduction_pct, loss_reduction_pct
		FROM sweep_results
		WHERE sweep_id = ?
		ORDER BY rank ASC
		LIMIT ?`, sweepID, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var params sql.NullString
		err := rows.Scan(
			&rec.SweepID, &rec.Rank, &rec.ComboIndex, &rec.Score, &params,
			&rec.MeanAccuracy, &rec.MedianAccuracy, &rec.AccuracyStddev,
			&rec.Within2, &rec.Within5, &rec.Within10, &rec.Within15, &rec.Within20, &rec.Outside,
			&rec.MedianRatio, &rec.GainReductionPct, &rec.LossReductionPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		rec.Params = jsonOrNil(params)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteSweep removes a sweep and, through the foreign key cascade, its
// results.
func (s *SweepStore) DeleteSweep(sweepID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM sweeps WHERE sweep_id = ?`, sweepID)
		if err != nil {
			return fmt.Errorf("delete sweep: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("sweep %s not found", sweepID)
		}
		return nil
	})
}

// scanSweep scans a sweep row through any Scan-shaped cursor.
func scanSweep(scan func(dest ...interface{}) error) (*SweepRecord, error) {
	var rec SweepRecord
	var request, errMsg, completedAt sql.NullString
	var startedAt string

	err := scan(
		&rec.ID, &rec.SweepID, &rec.Status, &request, &errMsg, &startedAt,
		&completedAt, &rec.ComboCount, &rec.TrackCount,
	)
	if err != nil {
		return nil, err
	}

	rec.Request = jsonOrNil(request)
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		rec.StartedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			rec.CompletedAt = &t
		}
	}
	return &rec, nil
}

// nullStr returns nil for empty strings so the column stores NULL.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullJSON returns a NULL-able column value for a JSON blob, treating nil or
// empty as NULL.
func nullJSON(data json.RawMessage) *string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	return &s
}

// jsonOrNil converts a sql.NullString to json.RawMessage, returning nil for
// NULL values.
func jsonOrNil(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}

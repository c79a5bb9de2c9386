package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/bioradar/implementation-scorecard/internal/catalog"
	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps a database opened with db.Open.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutCatalog(ctx context.Context, rec CatalogRecord) error {
	qj, err := json.Marshal(rec.Catalog.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO catalogs (id,sector,source,total_questions,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET sector=EXCLUDED.sector, source=EXCLUDED.source,
		total_questions=EXCLUDED.total_questions, questions_json=EXCLUDED.questions_json`,
		rec.ID, rec.Catalog.Sector, rec.Catalog.Source, len(rec.Catalog.Questions), string(qj), stamp(rec.CreatedAt))
	return err
}

func (s *SQLStore) LatestCatalog(ctx context.Context) (CatalogRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,sector,source,questions_json,created_at FROM catalogs
		ORDER BY created_at DESC, id DESC LIMIT 1`)
	var (
		rec    CatalogRecord
		sector string
		source string
		qjson  string
		ts     int64
	)
	if err := row.Scan(&rec.ID, &sector, &source, &qjson, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CatalogRecord{}, ErrNotFound
		}
		return CatalogRecord{}, err
	}
	var qs []scorecard.RawRow
	if err := json.Unmarshal([]byte(qjson), &qs); err != nil {
		return CatalogRecord{}, err
	}
	rec.Catalog = catalog.New(qs, sector)
	rec.Catalog.Source = source
	rec.CreatedAt = time.UnixMilli(ts).UTC()
	return rec, nil
}

func (s *SQLStore) PutResult(ctx context.Context, rec ResultRecord) error {
	rj, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (id,session_id,result_json,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET session_id=EXCLUDED.session_id, result_json=EXCLUDED.result_json`,
		rec.ID, rec.SessionID, string(rj), stamp(rec.CreatedAt))
	return err
}

func (s *SQLStore) LatestResult(ctx context.Context) (ResultRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,session_id,result_json,created_at FROM results
		ORDER BY created_at DESC, id DESC LIMIT 1`)
	var (
		rec   ResultRecord
		rjson string
		ts    int64
	)
	if err := row.Scan(&rec.ID, &rec.SessionID, &rjson, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResultRecord{}, ErrNotFound
		}
		return ResultRecord{}, err
	}
	if err := json.Unmarshal([]byte(rjson), &rec.Result); err != nil {
		return ResultRecord{}, err
	}
	rec.CreatedAt = time.UnixMilli(ts).UTC()
	return rec, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalogs`); err != nil {
		return err
	}
	return tx.Commit()
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Scan struct {
	ID     string
	Time   int64
	Source string
}

type Observation struct {
	ScanID      string
	Country     string
	Indicator   string
	Current     sql.NullFloat64
	Previous    sql.NullFloat64
	Expected    sql.NullFloat64
	Difference  sql.NullFloat64
	Surprise    sql.NullFloat64
	Published   string
	NextRelease string
}

const createScan = `
INSERT INTO scans (id, time, source) VALUES (?, ?, ?)
`

type CreateScanParams struct {
	ID     string
	Time   int64
	Source string
}

func (q *Queries) CreateScan(ctx context.Context, arg CreateScanParams) error {
	_, err := q.db.ExecContext(ctx, createScan, arg.ID, arg.Time, arg.Source)
	return err
}

const createObservation = `
INSERT INTO observations (
    scan_id, country, indicator,
    current, previous, expected, difference, surprise,
    published, next_release
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateObservation(ctx context.Context, arg Observation) error {
	_, err := q.db.ExecContext(
		ctx, createObservation,
		arg.ScanID, arg.Country, arg.Indicator,
		arg.Current, arg.Previous, arg.Expected, arg.Difference, arg.Surprise,
		arg.Published, arg.NextRelease,
	)
	return err
}

const getSeries = `
SELECT
    o.scan_id, o.country, o.indicator,
    o.current, o.previous, o.expected, o.difference, o.surprise,
    o.published, o.next_release,
    s.time
FROM observations o
JOIN scans s ON s.id = o.scan_id
WHERE o.country = ? AND o.indicator = ?
ORDER BY s.time DESC
LIMIT ?
`

type GetSeriesParams struct {
	Country   string
	Indicator string
	Limit     int64
}

type GetSeriesRow struct {
	Observation
	Time int64
}

func (q *Queries) GetSeries(ctx context.Context, arg GetSeriesParams) ([]GetSeriesRow, error) {
	rows, err := q.db.QueryContext(ctx, getSeries, arg.Country, arg.Indicator, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GetSeriesRow
	for rows.Next() {
		var r GetSeriesRow
		err := rows.Scan(
			&r.ScanID, &r.Country, &r.Indicator,
			&r.Current, &r.Previous, &r.Expected, &r.Difference, &r.Surprise,
			&r.Published, &r.NextRelease,
			&r.Time,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getScans = `
SELECT id, time, source FROM scans ORDER BY time DESC LIMIT ?
`

func (q *Queries) GetScans(ctx context.Context, limit int64) ([]Scan, error) {
	rows, err := q.db.QueryContext(ctx, getScans, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Scan
	for rows.Next() {
		var s Scan
		err := rows.Scan(&s.ID, &s.Time, &s.Source)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

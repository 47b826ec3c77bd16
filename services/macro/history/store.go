// Package history persists scan results in sqlite so successive runs
// build up a queryable time series per (country, indicator).
package history

import (
	"context"
	"database/sql"
	"time"

	"macroscan-backend/lib/macrodata"
	"macroscan-backend/lib/telemetry"
	"macroscan-backend/services/macro/history/db"

	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("macroscan.services.macro.history")

type Observation struct {
	Country     string
	Indicator   string
	Current     macrodata.Value
	Previous    macrodata.Value
	Expected    macrodata.Value
	Difference  macrodata.Value
	Surprise    macrodata.Value
	Published   string
	NextRelease string
}

type Scan struct {
	Id           string
	Time         time.Time
	Source       string
	Observations []Observation
}

type SeriesPoint struct {
	ScanId string
	Time   time.Time
	Observation
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func nullFloat(v macrodata.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.Float, Valid: v.Valid}
}

func floatValue(f sql.NullFloat64) macrodata.Value {
	if !f.Valid {
		return macrodata.Absent(macrodata.ReasonMissing)
	}
	return macrodata.Number(f.Float64)
}

// Push stores one scan and all of its observations atomically.
func (s Store) Push(ctx context.Context, scan Scan) error {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.CreateScan(ctx, db.CreateScanParams{
		ID:     scan.Id,
		Time:   scan.Time.Unix(),
		Source: scan.Source,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, obs := range scan.Observations {
		err := txqry.CreateObservation(ctx, db.Observation{
			ScanID:      scan.Id,
			Country:     obs.Country,
			Indicator:   obs.Indicator,
			Current:     nullFloat(obs.Current),
			Previous:    nullFloat(obs.Previous),
			Expected:    nullFloat(obs.Expected),
			Difference:  nullFloat(obs.Difference),
			Surprise:    nullFloat(obs.Surprise),
			Published:   obs.Published,
			NextRelease: obs.NextRelease,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Pull returns the most recent observations of one series, newest
// first.
func (s Store) Pull(ctx context.Context, country, indicator string, limit int64) ([]SeriesPoint, error) {
	ctx, span := tracer.Start(ctx, "Pull")
	defer span.End()

	rows, err := s.qry.GetSeries(ctx, db.GetSeriesParams{
		Country:   country,
		Indicator: indicator,
		Limit:     limit,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	points := make([]SeriesPoint, len(rows))
	for i, r := range rows {
		points[i] = SeriesPoint{
			ScanId: r.ScanID,
			Time:   time.Unix(r.Time, 0).UTC(),
			Observation: Observation{
				Country:     r.Country,
				Indicator:   r.Indicator,
				Current:     floatValue(r.Current),
				Previous:    floatValue(r.Previous),
				Expected:    floatValue(r.Expected),
				Difference:  floatValue(r.Difference),
				Surprise:    floatValue(r.Surprise),
				Published:   r.Published,
				NextRelease: r.NextRelease,
			},
		}
	}
	return points, nil
}

// Scans lists the most recent scan runs, newest first.
func (s Store) Scans(ctx context.Context, limit int64) ([]db.Scan, error) {
	ctx, span := tracer.Start(ctx, "Scans")
	defer span.End()

	scans, err := s.qry.GetScans(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return scans, nil
}

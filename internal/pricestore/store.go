// Package pricestore keeps a history of scraped offers so that the lowest
// price of a product can be followed over time.
package pricestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/pricestore/db"
	"homewidgets/internal/youpickit"
	configsqlite "homewidgets/lib/configutil/sqlite"
)

const (
	report_store_push   = "store.push"
	report_store_lowest = "store.lowest"
)

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
}

func NewStore(database *sql.DB, tel telemetry.API) Store {
	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		tel:    telemetry.NewScopedAPI("pricestore", tel),
	}
}

// Open opens the configured database, creating the schema if it does not
// exist yet.
func Open(config configsqlite.Struct, tel telemetry.API) (Store, error) {
	database, err := config.OpenDB(db.Schema)
	if err != nil {
		return Store{}, fmt.Errorf("open price history: %w", err)
	}
	return NewStore(database, tel), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type Snapshot struct {
	Time       time.Time
	ProductURL string
	Entries    []youpickit.PriceEntry
}

// Push records a snapshot with its entries in a single transaction.
func (s Store) Push(ctx context.Context, snapshot Snapshot) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_push, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	id, err := tx.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ProductUrl: snapshot.ProductURL,
		Time:       snapshot.Time.Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_store_push, err, "CreateSnapshot")
		return err
	}

	for i, e := range snapshot.Entries {
		err = tx.CreatePriceEntry(ctx, db.CreatePriceEntryParams{
			SnapshotID: id,
			Idx:        int64(i),
			Price:      e.Price,
			Brand:      e.Brand,
			Address:    e.Address,
		})
		if err != nil {
			s.tel.ReportBroken(report_store_push, err, "CreatePriceEntry")
			return err
		}
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_store_push, fmt.Errorf("commit: %w", err))
		return err
	}
	return nil
}

type LowestPrice struct {
	Time time.Time
	youpickit.PriceEntry
	// Offers is the number of offers in the snapshot.
	Offers int
}

// Lowest returns the best offer of each of the last limit snapshots of a
// product, newest first. Snapshots without offers are left out.
func (s Store) Lowest(ctx context.Context, productURL string, limit int) ([]LowestPrice, error) {
	rows, err := s.qry.GetLowestPrices(ctx, db.GetLowestPricesParams{
		ProductUrl: productURL,
		Limit:      int64(limit),
	})
	if err != nil {
		s.tel.ReportBroken(report_store_lowest, err, productURL)
		return nil, err
	}

	result := make([]LowestPrice, len(rows))
	for i, r := range rows {
		result[i] = LowestPrice{
			Time: time.Unix(r.Time, 0),
			PriceEntry: youpickit.PriceEntry{
				Price:   r.Price,
				Brand:   r.Brand,
				Address: r.Address,
			},
			Offers: int(r.Offers),
		}
	}
	return result, nil
}

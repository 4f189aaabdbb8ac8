package db

import (
	"context"
)

const createSnapshot = `
insert into price_snapshot(product_url, time) values (?, ?)
returning id
`

type CreateSnapshotParams struct {
	ProductUrl string
	Time       int64
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createSnapshot, arg.ProductUrl, arg.Time)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createPriceEntry = `
insert into price_entry(snapshot_id, idx, price, brand, address)
values (?, ?, ?, ?, ?)
`

type CreatePriceEntryParams struct {
	SnapshotID int64
	Idx        int64
	Price      float64
	Brand      string
	Address    string
}

func (q *Queries) CreatePriceEntry(ctx context.Context, arg CreatePriceEntryParams) error {
	_, err := q.db.ExecContext(ctx, createPriceEntry,
		arg.SnapshotID,
		arg.Idx,
		arg.Price,
		arg.Brand,
		arg.Address,
	)
	return err
}

const getLowestPrices = `
select
    s.id,
    s.time,
    e.price,
    e.brand,
    e.address,
    (select count(*) from price_entry c where c.snapshot_id = s.id) as offers
from price_snapshot s
join price_entry e on e.snapshot_id = s.id
where s.product_url = ?
    and e.idx = (
        select b.idx from price_entry b
        where b.snapshot_id = s.id
        order by b.price asc, b.idx asc
        limit 1
    )
order by s.time desc, s.id desc
limit ?
`

type GetLowestPricesParams struct {
	ProductUrl string
	Limit      int64
}

type GetLowestPricesRow struct {
	ID      int64
	Time    int64
	Price   float64
	Brand   string
	Address string
	Offers  int64
}

func (q *Queries) GetLowestPrices(ctx context.Context, arg GetLowestPricesParams) ([]GetLowestPricesRow, error) {
	rows, err := q.db.QueryContext(ctx, getLowestPrices, arg.ProductUrl, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetLowestPricesRow
	for rows.Next() {
		var i GetLowestPricesRow
		if err := rows.Scan(
			&i.ID,
			&i.Time,
			&i.Price,
			&i.Brand,
			&i.Address,
			&i.Offers,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

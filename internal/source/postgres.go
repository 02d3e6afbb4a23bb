package source

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/util"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the database connection pool
type DB struct {
	pool *pgxpool.Pool
	url  string
	mu   sync.RWMutex
}

// Connect establishes a small connection pool. Grids run one query at a
// time, so the pool only needs a couple of connections.
func Connect(ctx context.Context, url string) (*DB, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid connection URL: %w", err)
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = time.Minute
	config.MaxConnIdleTime = 10 * time.Second

	// Grid queries never write
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET default_transaction_read_only = on")
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, url: url}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
}

// URL returns the connection URL
func (db *DB) URL() string {
	return db.url
}

// IsConnected returns true if the database is connected
func (db *DB) IsConnected() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.pool != nil
}

// Load runs query and collects at most maxRows rows (0 = all).
func (db *DB) Load(ctx context.Context, query string, maxRows int) (*Dataset, error) {
	db.mu.RLock()
	pool := db.pool
	db.mu.RUnlock()
	if pool == nil {
		return nil, util.ErrNotConnected
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", util.ErrEmptySource)
	}

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	names := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		names[i] = fd.Name
	}
	names = uniqueNames(names)

	ds := &Dataset{Columns: make([]Column, len(fieldDescs))}
	for i, fd := range fieldDescs {
		ds.Columns[i] = Column{Name: names[i], Type: typeForOID(fd.DataTypeOID)}
	}

	for rows.Next() {
		if maxRows > 0 && len(ds.Rows) == maxRows {
			ds.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(grid.Record, len(values))
		for i, v := range values {
			rec[names[i]] = sqlValue(v)
		}
		ds.Rows = append(ds.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

func typeForOID(oid uint32) string {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID,
		pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID, pgtype.OIDOID:
		return TypeNumber
	case pgtype.BoolOID:
		return TypeBool
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return TypeDate
	}
	return TypeString
}

// sqlValue converts a driver value into a cell value the row model
// understands: numbers, bools, times and strings.
func sqlValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, time.Time, float64:
		return val
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint32:
		return float64(val)
	case float32:
		return float64(val)
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		if f, err := val.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return numericString(val)
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case []byte:
		// For byte arrays, check if it's printable text
		for _, b := range val {
			if b < 32 && b != '\n' && b != '\r' && b != '\t' {
				return fmt.Sprintf("[%d bytes]", len(val))
			}
		}
		return string(val)
	}
	return fmt.Sprintf("%v", v)
}

func numericString(n pgtype.Numeric) string {
	if n.NaN {
		return "NaN"
	}
	if n.Int == nil {
		return ""
	}
	r := new(big.Rat).SetInt(n.Int)
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(n.Exp))), nil)
	if n.Exp < 0 {
		r.Quo(r, new(big.Rat).SetInt(exp))
	} else {
		r.Mul(r, new(big.Rat).SetInt(exp))
	}
	return r.FloatString(max(0, -int(n.Exp)))
}

func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

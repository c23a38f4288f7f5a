package params

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sync/atomic"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// loadSQLColumnValues opens driver/dsn, runs query once, and scans the first
// result column into a bounded slice of strings. driver is a config string
// ("postgres" or "sqlite3"); the connection is closed before returning.
func loadSQLColumnValues(driver, dsn, query string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: sql source: opening %s driver: %v", ErrInvalidSource, driver, err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: sql source: query failed: %v", ErrInvalidSource, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() && len(values) < maxLines {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: sql source: scanning row: %v", ErrInvalidSource, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: sql source: iterating rows: %v", ErrInvalidSource, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: sql query %q yielded zero usable values", ErrInvalidSource, query)
	}
	return values, nil
}

// SQLRoundRobin cycles through values loaded once via a SELECT.
type SQLRoundRobin struct {
	values []string
	idx    uint64
}

func NewSQLRoundRobin(driver, dsn, query string, maxLines int) (*SQLRoundRobin, error) {
	values, err := loadSQLColumnValues(driver, dsn, query, maxLines)
	if err != nil {
		return nil, err
	}
	return &SQLRoundRobin{values: values}, nil
}

func (s *SQLRoundRobin) Next() string {
	n := atomic.AddUint64(&s.idx, 1) - 1
	return s.values[n%uint64(len(s.values))]
}

// SQLRandom draws uniformly over values loaded once via a SELECT.
type SQLRandom struct {
	values []string
	rng    *rand.Rand
}

func NewSQLRandom(driver, dsn, query string, maxLines int, rng *rand.Rand) (*SQLRandom, error) {
	values, err := loadSQLColumnValues(driver, dsn, query, maxLines)
	if err != nil {
		return nil, err
	}
	return &SQLRandom{values: values, rng: rng}, nil
}

func (s *SQLRandom) Next() string {
	return s.values[s.rng.Intn(len(s.values))]
}

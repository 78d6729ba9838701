// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package datasource

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// SQLDrivers lists the database/sql drivers linked into the binary.
var SQLDrivers = []string{"postgres", "sqlite3"}

func fetchSQL(ctx context.Context, c types.ConnectionSQL, q types.QuerySpec) (string, error) {
	if strings.TrimSpace(c.DSN) == "" {
		return "", fmt.Errorf("sql connection: empty dsn: %w", types.ErrValidation)
	}
	if strings.TrimSpace(q.SQL) == "" {
		return "", fmt.Errorf("sql query: empty statement: %w", types.ErrValidation)
	}
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	switch driver {
	case "postgres", "postgresql":
		driver = "postgres"
	case "sqlite", "sqlite3":
		driver = "sqlite3"
	default:
		return "", fmt.Errorf("sql driver %q not supported (want one of %s): %w",
			c.Driver, strings.Join(SQLDrivers, ", "), types.ErrValidation)
	}

	db, err := sql.Open(driver, c.DSN)
	if err != nil {
		return "", sourceError("sql", err)
	}
	defer db.Close()

	logger.Debug("sql query on %s: %s", driver, q.SQL)
	rows, err := db.QueryContext(ctx, q.SQL)
	if err != nil {
		return "", sourceError("sql", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return "", sourceError("sql", err)
	}
	if len(records) == 0 {
		return NoResults, nil
	}
	return indentRecords(records)
}

// scanRecords reads every row as a JSON object with keys in column order.
func scanRecords(rows *sql.Rows) ([]json.RawMessage, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec, err := encodeRecord(cols, values)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func encodeRecord(cols []string, values []any) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// indentRecords renders records as a JSON array indented by two spaces.
func indentRecords(records []json.RawMessage) (string, error) {
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}
	return string(out), nil
}

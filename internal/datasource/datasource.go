// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package datasource pulls records from external databases and renders them
// as indented JSON text for the knowledge base or a prompt context.
package datasource

import (
	"context"
	"fmt"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// NoResults is returned in place of an empty record list.
const NoResults = "Query executed successfully but returned no results."

// DefaultLimit caps Mongo results when the query sets no limit.
const DefaultLimit = 10

// Fetch runs q against conn and returns the records as JSON text.
func Fetch(ctx context.Context, conn types.Connection, q types.QuerySpec) (string, error) {
	switch c := conn.(type) {
	case types.ConnectionSQL:
		return fetchSQL(ctx, c, q)
	case *types.ConnectionSQL:
		return fetchSQL(ctx, *c, q)
	case types.ConnectionMongo:
		return fetchMongo(ctx, c, q)
	case *types.ConnectionMongo:
		return fetchMongo(ctx, *c, q)
	case nil:
		return "", fmt.Errorf("no connection given: %w", types.ErrValidation)
	default:
		return "", fmt.Errorf("unsupported connection type %q: %w", conn.Type(), types.ErrValidation)
	}
}

// sourceError wraps a driver failure so it reads "<kind> error: <cause>"
// and matches types.ErrExternalSource.
func sourceError(kind string, err error) error {
	return fmt.Errorf("%s error: %w: %w", kind, err, types.ErrExternalSource)
}

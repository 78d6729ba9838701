// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pitagorin/internal/datasource"
	"github.com/pdiddy/pitagorin/internal/secrets"
	"github.com/pdiddy/pitagorin/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Query a SQL or MongoDB source and print the records as JSON",
	Long: `Fetch runs one query against an external database and prints the records
as indented JSON. With --topic the result is also stored in the knowledge
base under that topic.

SQL:   --type sql --driver sqlite3|postgres --dsn DSN --sql "SELECT ..."
Mongo: --type mongo --uri URI --db NAME --collection NAME [--filter JSON] [--limit N]

The DSN and URI fall back to .secrets/sql-dsn and .secrets/mongo-uri, then
to PITAGORIN_SQL_DSN and PITAGORIN_MONGO_URI.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	conn, q, err := fetchSpecFromFlags(cmd)
	if err != nil {
		return err
	}

	out, err := datasource.Fetch(cmd.Context(), conn, q)
	if err != nil {
		return err
	}
	fmt.Println(out)

	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" || out == datasource.NoResults {
		return nil
	}
	store, err := openStore(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer store.Close()

	id, _, err := store.AddDocument(cmd.Context(), out, topic, string(conn.Type()))
	if err != nil {
		return err
	}
	fmt.Printf("Stored %s in %s\n", id, topic)
	return nil
}

func fetchSpecFromFlags(cmd *cobra.Command) (types.Connection, types.QuerySpec, error) {
	kind, _ := cmd.Flags().GetString("type")
	switch types.ConnectionType(kind) {
	case types.ConnectionTypeSQL:
		driver, _ := cmd.Flags().GetString("driver")
		dsn, _ := cmd.Flags().GetString("dsn")
		if dsn == "" {
			dsn = secrets.Lookup(loadedSecrets, secrets.SQLDSN, "PITAGORIN_SQL_DSN")
		}
		query, _ := cmd.Flags().GetString("sql")
		return types.ConnectionSQL{Driver: driver, DSN: dsn}, types.QuerySpec{SQL: query}, nil

	case types.ConnectionTypeMongo:
		uri, _ := cmd.Flags().GetString("uri")
		if uri == "" {
			uri = secrets.Lookup(loadedSecrets, secrets.MongoURI, "PITAGORIN_MONGO_URI")
		}
		db, _ := cmd.Flags().GetString("db")
		collection, _ := cmd.Flags().GetString("collection")
		filter, _ := cmd.Flags().GetString("filter")
		limit, _ := cmd.Flags().GetInt("limit")
		return types.ConnectionMongo{URI: uri}, types.QuerySpec{
			Database:   db,
			Collection: collection,
			Filter:     filter,
			Limit:      limit,
		}, nil

	default:
		return nil, types.QuerySpec{}, fmt.Errorf("unsupported source type %q: use sql or mongo: %w", kind, types.ErrValidation)
	}
}

func init() {
	fetchCmd.Flags().String("type", "sql", "source type: sql or mongo")

	fetchCmd.Flags().String("driver", "sqlite3", "SQL driver: sqlite3 or postgres")
	fetchCmd.Flags().String("dsn", "", "SQL data source name")
	fetchCmd.Flags().String("sql", "", "SQL query to run")

	fetchCmd.Flags().String("uri", "", "MongoDB connection URI")
	fetchCmd.Flags().String("db", "", "MongoDB database")
	fetchCmd.Flags().String("collection", "", "MongoDB collection")
	fetchCmd.Flags().String("filter", "", "MongoDB filter as extended JSON (invalid filters match everything)")
	fetchCmd.Flags().Int("limit", datasource.DefaultLimit, "maximum MongoDB documents")

	fetchCmd.Flags().String("topic", "", "also store the result in the knowledge base under this topic")

	rootCmd.AddCommand(fetchCmd)
}

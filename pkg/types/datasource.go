// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConnectionType identifies an external data source variant.
type ConnectionType string

const (
	ConnectionTypeSQL   ConnectionType = "sql"
	ConnectionTypeMongo ConnectionType = "mongo"
)

// Connection is a closed set of data source connection records. Only
// ConnectionSQL and ConnectionMongo implement it.
type Connection interface {
	Type() ConnectionType
}

// ConnectionSQL describes a relational database reachable through
// database/sql. Driver is "sqlite3" or "postgres".
type ConnectionSQL struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

// Type implements Connection.
func (ConnectionSQL) Type() ConnectionType { return ConnectionTypeSQL }

// ConnectionMongo describes a MongoDB deployment.
type ConnectionMongo struct {
	URI string `json:"uri" yaml:"uri"`

	// DefaultDatabase is used when the query does not name a database.
	DefaultDatabase string `json:"default_database" yaml:"default_database"`
}

// Type implements Connection.
func (ConnectionMongo) Type() ConnectionType { return ConnectionTypeMongo }

// QuerySpec carries the query parameters for a fetch. SQL connections
// require SQL; Mongo connections require Collection.
type QuerySpec struct {
	SQL string `json:"sql,omitempty" yaml:"sql,omitempty"`

	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`

	// Filter is a MongoDB extended JSON document. An unparsable filter
	// falls back to matching every document.
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`

	// Limit caps the number of Mongo documents returned (default 10).
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

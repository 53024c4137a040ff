package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Dialect identifiers supported by the database layer.
const (
	// DialectPostgres is the PostgreSQL dialect name.
	DialectPostgres = "postgres"
	// DialectSQLite is the SQLite dialect name.
	DialectSQLite = "sqlite"
)

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// CaseInsensitiveEqualExpr returns a SQL expression for case-insensitive
// equality on the given column. Works on both supported dialects.
func CaseInsensitiveEqualExpr(column string) string {
	return fmt.Sprintf("LOWER(%s) = ?", column)
}

package db

import (
	"fmt"

	"github.com/streamhub-dev/accountd/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.APIToken{},
		&models.AuthProfile{},
		&models.SubscriptionType{},
		&models.PaymentProfile{},
		&models.Subscription{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	for _, item := range indexes {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}
	return nil
}

// ddl defines an index or DDL statement to apply.
type ddl struct {
	name string // Human-readable name for error reporting.
	sql  string // SQL to execute.
}

var indexes = []ddl{
	{
		name: "idx_api_tokens_user_id_created_at",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_api_tokens_user_id_created_at
			ON api_tokens (user_id, created_at ASC)
		`,
	},
	{
		name: "idx_subscriptions_user_id_status",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id_status
			ON subscriptions (user_id, status)
		`,
	},
	{
		name: "idx_users_username_lower",
		sql: `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower
			ON users (LOWER(username))
		`,
	},
	{
		name: "idx_users_email_lower",
		sql: `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower
			ON users (LOWER(email))
		`,
	},
	{
		name: "idx_auth_profiles_provider_auth_id",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_auth_profiles_provider_auth_id
			ON auth_profiles (auth_provider, auth_id)
		`,
	},
}

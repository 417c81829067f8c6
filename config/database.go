package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func InitDB(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS plaid_items (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			access_token TEXT NOT NULL,
			item_id VARCHAR(255) NOT NULL,
			institution_id VARCHAR(255) NOT NULL,
			institution_name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, institution_id)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			plaid_transaction_id VARCHAR(255) NOT NULL,
			account_id VARCHAR(255) NOT NULL,
			amount NUMERIC(14, 2) NOT NULL,
			date VARCHAR(10) NOT NULL,
			name TEXT NOT NULL,
			category VARCHAR(255) NOT NULL DEFAULT 'Other',
			merchant_name TEXT,
			pending BOOLEAN DEFAULT FALSE,
			notes TEXT,
			tags TEXT[] DEFAULT '{}',
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, plaid_transaction_id)
		)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			category VARCHAR(255) NOT NULL,
			amount NUMERIC(14, 2) NOT NULL,
			month VARCHAR(7) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS goals (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			target_amount NUMERIC(14, 2) NOT NULL,
			current_amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
			target_date VARCHAR(10) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_plaid_items_user_id ON plaid_items(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_user_month ON budgets(user_id, month)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

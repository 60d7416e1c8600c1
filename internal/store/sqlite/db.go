package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs a simple, idempotent set of CREATE TABLE / CREATE INDEX
// statements. Tags and images are stored as JSON text columns, keeping the
// row shape close to the documents the frontend already exchanges.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users table; external_id is the auth provider's subject.
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			external_id TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			andrew_id TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			shop_title TEXT NOT NULL DEFAULT '',
			shop_description TEXT NOT NULL DEFAULT '',
			shop_banner_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Marketplace items
		`CREATE TABLE IF NOT EXISTS marketplace_items (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			title VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL,
			category VARCHAR(50) NOT NULL DEFAULT '',
			condition VARCHAR(20) NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			images TEXT NOT NULL DEFAULT '[]',
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (seller_id) REFERENCES users(id)
		);`,
		// Commission items
		`CREATE TABLE IF NOT EXISTS commission_items (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			title VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL,
			category VARCHAR(50) NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			images TEXT NOT NULL DEFAULT '[]',
			turnaround_days INTEGER NOT NULL,
			is_available BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (seller_id) REFERENCES users(id)
		);`,
		// Favorites: one row per (user, item reference)
		`CREATE TABLE IF NOT EXISTS favorites (
			user_id TEXT NOT NULL,
			item_type VARCHAR(20) NOT NULL,
			item_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, item_type, item_id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		// Conversations
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			buyer_id TEXT NOT NULL,
			seller_id TEXT NOT NULL,
			item_type VARCHAR(20),
			item_id TEXT,
			last_message_text TEXT NOT NULL DEFAULT '',
			last_message_at DATETIME,
			last_message_sender_id TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'ongoing',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (buyer_id) REFERENCES users(id),
			FOREIGN KEY (seller_id) REFERENCES users(id)
		);`,
		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			content TEXT NOT NULL,
			is_system BOOLEAN DEFAULT FALSE,
			is_read BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id),
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,
		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_mp_items_seller ON marketplace_items(seller_id);`,
		`CREATE INDEX IF NOT EXISTS idx_mp_items_category ON marketplace_items(category);`,
		`CREATE INDEX IF NOT EXISTS idx_mp_items_status ON marketplace_items(status);`,
		`CREATE INDEX IF NOT EXISTS idx_mp_items_created_at ON marketplace_items(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_comm_items_seller ON commission_items(seller_id);`,
		`CREATE INDEX IF NOT EXISTS idx_comm_items_category ON commission_items(category);`,
		`CREATE INDEX IF NOT EXISTS idx_comm_items_created_at ON commission_items(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_buyer ON conversations(buyer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_seller ON conversations(seller_id);`,
		// One conversation per (item, buyer); one item-less thread per pair.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_item_buyer
			ON conversations(item_type, item_id, buyer_id) WHERE item_id IS NOT NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_direct
			ON conversations(buyer_id, seller_id) WHERE item_id IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv_created ON messages(conversation_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unread ON messages(receiver_id, is_read);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

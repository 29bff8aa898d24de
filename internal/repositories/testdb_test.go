package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"marketBack/internal/models"
)

const testCoreSchema = `-- +migrate Up
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    fcm_token TEXT NULL,
    refresh_token TEXT NULL,
    expires_at DATETIME NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NULL
);
CREATE TABLE listings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    asking_price DECIMAL(15,2) NOT NULL,
    reserved_amount DECIMAL(15,2) NULL,
    min_down_payment_percentage INTEGER NOT NULL DEFAULT 0,
    monthly_revenue DECIMAL(15,2) NOT NULL DEFAULT 0,
    monthly_profit DECIMAL(15,2) NOT NULL DEFAULT 0,
    monthly_traffic INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NULL
);
CREATE TABLE offers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    listing_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    seller_id INTEGER NOT NULL,
    amount DECIMAL(15,2) NOT NULL,
    message TEXT NOT NULL,
    is_private BOOLEAN NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    active_key TEXT NULL UNIQUE,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NULL
);
CREATE TABLE wishlist (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    listing_id INTEGER NOT NULL,
    created_at DATETIME NOT NULL,
    UNIQUE (user_id, listing_id)
);
CREATE TABLE system_settings (
    setting_key TEXT PRIMARY KEY,
    setting_value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE TABLE notifications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    is_read BOOLEAN NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);
CREATE TABLE activity_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NULL,
    action TEXT NOT NULL,
    detail TEXT NOT NULL,
    entity TEXT NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE TABLE task_dead_letters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    payload TEXT NOT NULL,
    attempts INTEGER NOT NULL,
    last_error TEXT NOT NULL,
    created_at DATETIME NOT NULL
);
-- +migrate Down
DROP TABLE users;
`

const testChildSchema = `-- +migrate Up
CREATE TABLE listing_categories (
    listing_id INTEGER NOT NULL,
    category_id INTEGER NOT NULL,
    PRIMARY KEY (listing_id, category_id)
);
CREATE TABLE listing_labels (
    listing_id INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (listing_id, label)
);
CREATE TABLE listing_answers (
    listing_id INTEGER NOT NULL,
    question_id INTEGER NOT NULL,
    answer TEXT NOT NULL,
    PRIMARY KEY (listing_id, question_id)
);
CREATE TABLE listing_proofs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    listing_id INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    original_name TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);
`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "market.db") + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestDB returns a database with the full schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_core.sql":     {Data: []byte(testCoreSchema)},
		"002_children.sql": {Data: []byte(testChildSchema)},
	}
	if err := ApplyMigrations(context.Background(), db, fsys); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func seedListing(t *testing.T, repo *ListingRepository, userID int, status string, price string) models.Listing {
	t.Helper()
	l, err := repo.CreateListing(context.Background(), models.Listing{
		UserID:      userID,
		Type:        models.ListingTypeWebsite,
		Name:        "Site " + price,
		URL:         "https://example.com",
		Description: "A content site",
		AskingPrice: decimal.RequireFromString(price),
		Status:      status,
	}, nil)
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

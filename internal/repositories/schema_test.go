package repositories

import (
	"context"
	"reflect"
	"testing"
	"testing/fstest"
)

func TestApplyMigrationsRunsEachFileOnce(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_core.sql": {Data: []byte(testCoreSchema)},
		"README.md":    {Data: []byte("ignored")},
	}
	ctx := context.Background()

	if err := ApplyMigrations(ctx, db, fsys); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplyMigrations(ctx, db, fsys); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied migration, got %d", applied)
	}

	// the Down section must not run
	var users int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		t.Fatalf("users table missing: %v", err)
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if err := ApplyMigrations(context.Background(), nil, fstest.MapFS{}); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;"
	got := splitStatements(extractUpMigration(content))
	want := []string{"CREATE TABLE a (id INT)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	got = splitStatements(extractUpMigration("SELECT 1; SELECT 2;"))
	if len(got) != 2 {
		t.Fatalf("expected 2 statements without markers, got %v", got)
	}
}

func TestProbeCapabilities(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, err := db.Exec(`CREATE TABLE listing_labels (listing_id INTEGER, label TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE listing_proofs (id INTEGER)`); err != nil {
		t.Fatal(err)
	}

	caps, err := ProbeCapabilities(ctx, db)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	want := Capabilities{Labels: true, Proofs: true}
	if caps != want {
		t.Fatalf("got %+v want %+v", caps, want)
	}
	missing := caps.Missing()
	if !reflect.DeepEqual(missing, []string{"listing_categories", "listing_answers"}) {
		t.Fatalf("unexpected missing tables %v", missing)
	}
	if len(AllCapabilities().Missing()) != 0 {
		t.Fatal("AllCapabilities should not report missing tables")
	}
}

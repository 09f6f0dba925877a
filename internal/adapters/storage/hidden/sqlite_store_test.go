package hidden

import (
	"context"
	"testing"

	"llavedesol/internal/adapters/storage"
	"llavedesol/internal/domain/account"
	domain "llavedesol/internal/domain/hidden"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(storage.MemoryDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	set, err := store.Load(context.Background(), "ana", account.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 0 || set.Role() != account.RoleAdmin {
		t.Errorf("set = %v role %v", set.IDs(), set.Role())
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	set := domain.New(account.RoleAdmin)
	set.Add(5)
	set.Add(9)
	if err := store.Save(ctx, "ana", set); err != nil {
		t.Fatal(err)
	}
	set.Add(11)
	if err := store.Save(ctx, "ana", set); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Load(ctx, "ana", account.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 || !got.Contains(11) {
		t.Errorf("ids = %v", got.IDs())
	}

	other, _ := store.Load(ctx, "ana", account.RoleTreasurer)
	if other.Len() != 0 {
		t.Errorf("sets leaked across roles: %v", other.IDs())
	}
}

func TestSQLiteStore_LoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO hidden_message (username, role, ids, updated_at) VALUES ('ana', 'admin', 'garbage', '')`)
	if err != nil {
		t.Fatal(err)
	}
	set, err := store.Load(ctx, "ana", account.RoleAdmin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("corrupt row produced ids %v", set.IDs())
	}
}

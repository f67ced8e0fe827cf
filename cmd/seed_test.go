package cmd

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/junaidrashid-git/canteen-api/database"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/store"
)

func newMenuStore(t *testing.T) *store.MenuStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return store.NewMenuStore(db)
}

func TestSeedMenuOnlyFillsEmptyMenu(t *testing.T) {
	ctx := context.Background()
	menu := newMenuStore(t)

	if err := seedMenu(ctx, menu, false, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	n, _ := menu.CountItems(ctx)
	if n != int64(len(starterMenu())) {
		t.Fatalf("expected %d items, got %d", len(starterMenu()), n)
	}

	dosa, err := menu.GetItem(ctx, "seed-masala-dosa")
	if err != nil {
		t.Fatal(err)
	}
	if dosa.Price != money.FromMajor(60) {
		t.Errorf("expected 60.00, got %s", dosa.Price)
	}

	// a second run leaves staff edits alone
	price := money.FromMajor(65)
	if _, err := menu.UpdateItem(ctx, "seed-masala-dosa", store.MenuItemUpdate{Price: &price}); err != nil {
		t.Fatal(err)
	}
	if err := seedMenu(ctx, menu, false, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	dosa, _ = menu.GetItem(ctx, "seed-masala-dosa")
	if dosa.Price != price {
		t.Errorf("seed without force overwrote the menu: %s", dosa.Price)
	}

	if err := seedMenu(ctx, menu, true, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	dosa, _ = menu.GetItem(ctx, "seed-masala-dosa")
	if dosa.Price != money.FromMajor(60) {
		t.Errorf("forced seed should restore 60.00, got %s", dosa.Price)
	}
}

func TestStarterMenuIsAvailable(t *testing.T) {
	for _, it := range starterMenu() {
		if !it.Available || it.Category == "" || it.Price <= 0 {
			t.Errorf("bad starter item %+v", it)
		}
	}
}

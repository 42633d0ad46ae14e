package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/asset-ledger/internal/models"
)

func assetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "category", "brand", "serial", "quantity", "location", "notes",
		"condition_status", "status", "created_by", "full_name", "created_at", "updated_at",
	})
}

func TestAssetRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	creator := 7
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO assets \(category, brand, serial, quantity, location, notes, condition_status, created_by\)`).
		WithArgs("Laptop", "Lenovo", "SN-100", 1, "Lab 2", "", models.ConditionGood, creator).
		WillReturnRows(sqlmock.NewRows([]string{"id", "condition_status", "status", "created_at", "updated_at"}).
			AddRow(42, models.ConditionGood, models.LifecycleActive, now, now))

	repo := NewAssetRepo(db)
	a := &models.Asset{Category: "Laptop", Brand: "Lenovo", Serial: "SN-100", Quantity: 1, Location: "Lab 2", CreatedBy: &creator}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID != 42 {
		t.Errorf("expected id 42, got %d", a.ID)
	}
	if a.ConditionStatus != models.ConditionGood {
		t.Errorf("expected condition %q, got %q", models.ConditionGood, a.ConditionStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT a.id, a.category`).
		WithArgs(99).
		WillReturnRows(assetRows())

	repo := NewAssetRepo(db)
	_, err = repo.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_SerialExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM assets WHERE serial = \$1 AND id != \$2`).
		WithArgs("SN-100", 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`SELECT id FROM assets WHERE serial = \$1 AND id != \$2`).
		WithArgs("SN-100", 42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewAssetRepo(db)
	exists, err := repo.SerialExists(context.Background(), "SN-100", 0)
	if err != nil {
		t.Fatalf("SerialExists: %v", err)
	}
	if !exists {
		t.Error("expected serial to exist")
	}
	exists, err = repo.SerialExists(context.Background(), "SN-100", 42)
	if err != nil {
		t.Fatalf("SerialExists excluding owner: %v", err)
	}
	if exists {
		t.Error("expected serial to be free when its own row is excluded")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_UpdateConditionStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE assets SET condition_status = \$1`).
		WithArgs(models.ConditionLost, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAssetRepo(db)
	err = repo.UpdateConditionStatus(context.Background(), 99, models.ConditionLost)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE assets SET status = 'deleted'`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAssetRepo(db)
	if err := repo.SoftDelete(context.Background(), 42); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_List_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT a.id, a.category`).
		WithArgs("%lenovo%", 20, 0).
		WillReturnRows(assetRows().
			AddRow(1, "Laptop", "Lenovo", "SN-100", 1, "Lab 2", "", "Good", "active", 7, "Alice A", now, now).
			AddRow(2, "Laptop", "Lenovo", "SN-101", 1, "Lab 3", "", "Good", "active", nil, "", now, now))

	repo := NewAssetRepo(db)
	assets, err := repo.List(context.Background(), "lenovo", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	if assets[0].CreatedByName != "Alice A" {
		t.Errorf("expected creator name on first row, got %q", assets[0].CreatedByName)
	}
	if assets[1].CreatedBy != nil {
		t.Errorf("expected nil creator on second row, got %v", *assets[1].CreatedBy)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assets WHERE status = 'active'`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	repo := NewAssetRepo(db)
	total, err := repo.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 5 {
		t.Errorf("expected 5, got %d", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "categories", "locations"}).AddRow(12, 3, 2))
	mock.ExpectQuery(`SELECT category, SUM\(quantity\)`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).
			AddRow("Laptop", 8).AddRow("Monitor", 4))
	mock.ExpectQuery(`SELECT location, SUM\(quantity\)`).
		WillReturnRows(sqlmock.NewRows([]string{"location", "total"}).
			AddRow("Lab 2", 10).AddRow("Lab 3", 2))

	repo := NewAssetRepo(db)
	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalQuantity != 12 || stats.TotalCategories != 3 || stats.TotalLocations != 2 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if len(stats.ByCategory) != 2 || stats.ByCategory[0].Category != "Laptop" {
		t.Errorf("unexpected category rollup: %+v", stats.ByCategory)
	}
	if len(stats.ByLocation) != 2 || stats.ByLocation[0].Total != 10 {
		t.Errorf("unexpected location rollup: %+v", stats.ByLocation)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

func TestInventoryEnqueue(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &inventoryRepository{storage: storage}

	if err := repo.Enqueue(context.Background(), nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO inventory_adjustments").WithArgs(int64(10), int64(3), 1).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO inventory_adjustments").WithArgs(int64(10), int64(4), 2).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectCommit()
	err := repo.Enqueue(context.Background(), []model.InventoryAdjustment{
		{OrderID: 10, VehicleID: 3, Quantity: 1},
		{OrderID: 10, VehicleID: 4, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO inventory_adjustments").WillReturnError(errors.New("insert"))
	mock.ExpectRollback()
	if err := repo.Enqueue(context.Background(), []model.InventoryAdjustment{{OrderID: 11, VehicleID: 3, Quantity: 1}}); err == nil {
		t.Fatal("expected insert error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInventoryClaimPending(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return now }
	repo := &inventoryRepository{storage: storage}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(10, now.Add(-claimLease)).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "order_id", "vehicle_id", "quantity", "attempts", "created_at"}).
			AddRow(int64(1), int64(10), int64(3), 1, 0, now).
			AddRow(int64(2), int64(11), int64(4), 2, 3, now))
	mock.ExpectExec("SET status='processing'").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("SET status='processing'").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	batch, err := repo.ClaimPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 || batch[1].Attempts != 3 || batch[1].Quantity != 2 {
		t.Fatalf("unexpected batch: %+v", batch)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnError(errors.New("select"))
	mock.ExpectRollback()
	if _, err := repo.ClaimPending(context.Background(), 10); err == nil {
		t.Fatal("expected select error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInventoryClaimPendingRowsError(t *testing.T) {
	tx := &rowsErrorTx{rows: &errorRows{err: errors.New("rows err")}}
	storage := &Storage{pool: &rowsErrorTxPool{tx: tx}, now: time.Now}
	repo := &inventoryRepository{storage: storage}

	if _, err := repo.ClaimPending(context.Background(), 5); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestInventoryApply(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &inventoryRepository{storage: storage}
	adj := model.InventoryAdjustment{ID: 1, OrderID: 10, VehicleID: 3, Quantity: 2}

	mock.ExpectBegin()
	mock.ExpectExec("SET status='applied'").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE vehicles").WithArgs(int64(3), 2).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	if err := repo.Apply(context.Background(), adj); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// already applied
	mock.ExpectBegin()
	mock.ExpectExec("SET status='applied'").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectCommit()
	if err := repo.Apply(context.Background(), adj); err != nil {
		t.Fatalf("second apply should be a no-op, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("SET status='applied'").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE vehicles").WithArgs(int64(99), 1).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	err := repo.Apply(context.Background(), model.InventoryAdjustment{ID: 2, VehicleID: 99, Quantity: 1})
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for missing vehicle, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInventoryMarkFailed(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &inventoryRepository{storage: storage}

	mock.ExpectExec("SET attempts = attempts").WithArgs(int64(1), true, "vehicle gone").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkFailed(context.Background(), 1, true, "vehicle gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("SET attempts = attempts").WillReturnError(errors.New("exec"))
	if err := repo.MarkFailed(context.Background(), 2, false, "x"); err == nil {
		t.Fatal("expected exec error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

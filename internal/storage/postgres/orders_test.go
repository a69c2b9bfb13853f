package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "code", "user_id", "order_type", "customer_name", "customer_phone", "customer_email",
	"customer_address", "payment_method", "payment_status", "status", "base_price", "discount", "vat",
	"total_amount", "deposit_amount", "remaining_amount", "note", "created_at", "updated_at",
}

var itemColumnNames = []string{"id", "order_id", "kind", "product_id", "name", "unit_price", "discount", "quantity"}

func addOrderRow(rows *pgxmockv3.Rows, id int64, code string, userID *int64, at time.Time) *pgxmockv3.Rows {
	return rows.AddRow(
		id, code, userID, model.OrderTypeVehicle, "Nguyen Van A", "0912345678", "", "",
		model.PaymentMethodDeposit, model.PaymentStatusPending, model.OrderStatusNew,
		int64(11_000_000), int64(1_000_000), int64(1_000_000),
		int64(11_000_000), int64(3_000_000), int64(8_000_000), "", at, at,
	)
}

func sampleOrder() *model.Order {
	return &model.Order{
		Code:          "EV250314K7Q2XM",
		Type:          model.OrderTypeVehicle,
		Customer:      model.CustomerInfo{Name: "Nguyen Van A", Phone: "0912345678"},
		PaymentMethod: model.PaymentMethodDeposit,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusNew,
		TotalAmount:   11_000_000,
		DepositAmount: 3_000_000,
		Items: []model.OrderItem{
			{Kind: model.ItemKindVehicle, ProductID: 3, Name: "Evo200", UnitPrice: 10_000_000, Discount: 1_000_000, Quantity: 1},
			{Kind: model.ItemKindAccessory, ProductID: 7, Name: "Helmet", UnitPrice: 500_000, Quantity: 2},
		},
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(10), model.ItemKindVehicle, int64(3), "Evo200", int64(10_000_000), int64(1_000_000), 1).
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(10), model.ItemKindAccessory, int64(7), "Helmet", int64(500_000), int64(0), 2).
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectCommit()

	input := sampleOrder()
	order, err := repo.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 10 || order.Items[1].ID != 101 || order.Items[1].OrderID != 10 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if input.ID != 0 || input.Items[0].ID != 0 {
		t.Fatal("input order must not be mutated")
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()
	if _, err := repo.Create(context.Background(), sampleOrder()); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))
	mock.ExpectQuery("INSERT INTO order_items").WillReturnError(errors.New("item"))
	mock.ExpectRollback()
	if _, err := repo.Create(context.Background(), sampleOrder()); err == nil {
		t.Fatal("expected item error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByCode(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE code=").WithArgs("EV250314K7Q2XM").WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 10, "EV250314K7Q2XM", nil, now))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{10}).WillReturnRows(
		pgxmockv3.NewRows(itemColumnNames).
			AddRow(int64(100), int64(10), model.ItemKindVehicle, int64(3), "Evo200", int64(10_000_000), int64(1_000_000), 1))

	order, err := repo.GetByCode(context.Background(), "EV250314K7Q2XM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Customer.Phone != "0912345678" || order.UserID != nil || len(order.Items) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}

	mock.ExpectQuery("FROM orders WHERE code=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByCode(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE code=").WithArgs("items").WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 11, "items", nil, now))
	mock.ExpectQuery("FROM order_items").WillReturnError(errors.New("items"))
	if _, err := repo.GetByCode(context.Background(), "items"); err == nil {
		t.Fatal("expected items error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListByUser(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()
	userID := int64(5)

	rows := pgxmockv3.NewRows(orderColumnNames)
	addOrderRow(rows, 2, "EV2", &userID, now)
	addOrderRow(rows, 1, "EV1", &userID, now.Add(-time.Hour))
	mock.ExpectQuery("FROM orders WHERE user_id=").WithArgs(userID).WillReturnRows(rows)
	mock.ExpectQuery("FROM order_items").WithArgs([]int64{2, 1}).WillReturnRows(
		pgxmockv3.NewRows(itemColumnNames).
			AddRow(int64(20), int64(1), model.ItemKindVehicle, int64(3), "Evo200", int64(10_000_000), int64(0), 1).
			AddRow(int64(21), int64(2), model.ItemKindAccessory, int64(7), "Helmet", int64(500_000), int64(0), 1))

	orders, err := repo.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 || orders[0].Code != "EV2" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].Name != "Helmet" || orders[1].Items[0].Name != "Evo200" {
		t.Fatalf("items attached to wrong orders: %+v", orders)
	}

	mock.ExpectQuery("FROM orders WHERE user_id=").WithArgs(int64(6)).WillReturnRows(pgxmockv3.NewRows(orderColumnNames))
	orders, err = repo.ListByUser(context.Background(), 6)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", orders, err)
	}

	mock.ExpectQuery("FROM orders WHERE user_id=").WithArgs(int64(7)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByUser(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListByUserRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ListByUser(context.Background(), 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryFindRecent(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()
	since := now.Add(-24 * time.Hour)

	mock.ExpectQuery("WHERE customer_phone=").WithArgs("0912345678", model.OrderTypeVehicle, since).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderColumnNames), 10, "EV250314K7Q2XM", nil, now))
	mock.ExpectQuery("FROM order_items").WithArgs([]int64{10}).WillReturnRows(pgxmockv3.NewRows(itemColumnNames))

	order, err := repo.FindRecentByPhoneAndType(context.Background(), "0912345678", model.OrderTypeVehicle, since)
	if err != nil || order.Code != "EV250314K7Q2XM" {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	mock.ExpectQuery("WHERE customer_phone=").WithArgs("0912345678", model.OrderTypeAccessory, since).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.FindRecentByPhoneAndType(context.Background(), "0912345678", model.OrderTypeAccessory, since); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

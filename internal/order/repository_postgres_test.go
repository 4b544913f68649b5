package order

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/product"
)

func testOrder() Order {
	return Order{
		ID:            "order-1",
		UserID:        "user-1",
		AddressID:     "addr-1",
		PaymentMethod: "CARD",
		Status:        StatusPending,
		ShippingCost:  decimal.NewFromInt(15),
		Total:         decimal.NewFromInt(215),
		Items: []Item{
			{ID: "item-1", OrderID: "order-1", ProductID: "prod-1", Title: "Ceramic Mug", Quantity: 2, Price: decimal.NewFromInt(100)},
		},
		CreatedAt: "2026-01-02T03:04:05Z",
		UpdatedAt: "2026-01-02T03:04:05Z",
	}
}

func TestCreateFromCartCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	o := testOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQuery)).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(decrementStockQuery)).
		WithArgs(2, "prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(clearCartItemsQuery)).
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE carts SET total = 0")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := repo.CreateFromCart(o, "cart-1"); err != nil {
		t.Fatalf("create from cart: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateFromCartRollsBackOnStockShortage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	o := testOrder()
	o.Items = append(o.Items, Item{
		ID: "item-2", OrderID: "order-1", ProductID: "prod-2",
		Title: "Steel Bottle", Quantity: 1, Price: decimal.NewFromInt(15),
	})

	// the first line decrements inside the transaction, the second line runs
	// out of stock: the rollback must undo the earlier decrement
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQuery)).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(decrementStockQuery)).
		WithArgs(2, "prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQuery)).
		WithArgs("prod-2").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(0))
	mock.ExpectRollback()

	_, err = repo.CreateFromCart(o, "cart-1")
	if !errors.Is(err, product.ErrStockExhausted) {
		t.Fatalf("expected ErrStockExhausted, got %v", err)
	}
	if !strings.Contains(err.Error(), "prod-2") {
		t.Errorf("error should name the offending product: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancelRestocksInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = 'CANCELED'")).
		WithArgs("2026-01-02T03:04:05Z", "order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(restoreStockQuery)).
		WithArgs(2, "prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Cancel(testOrder(), "2026-01-02T03:04:05Z"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancelAlreadyCanceledRestocksNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// the guarded status update matches no row, so no restock may follow
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = 'CANCELED'")).
		WithArgs("2026-01-02T03:04:05Z", "order-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.Cancel(testOrder(), "2026-01-02T03:04:05Z"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateFromCartMissingProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)
	o := testOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQuery)).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectRollback()

	_, err = repo.CreateFromCart(o, "cart-1")
	if err != product.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status")).
		WithArgs("CONFIRMED", "2026-01-02T03:04:05Z", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateStatus("nope", StatusConfirmed, "2026-01-02T03:04:05Z"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/employee"
	employeeStore "github.com/MrJamesThe3rd/backoffice/internal/employee/store"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
	monthlyStore "github.com/MrJamesThe3rd/backoffice/internal/monthly/store"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
	warehouseStore "github.com/MrJamesThe3rd/backoffice/internal/warehouse/store"
)

var staff = auth.Principal{UserID: uuid.New(), Username: "admin", IsStaff: true, IsActive: true}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	// A second run is a no-op.
	require.NoError(t, database.Migrate(db))

	return db
}

func TestMonthlyLedger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	employees := employee.NewService(employeeStore.New(db))
	ledger := monthly.NewService(monthlyStore.New(db))

	emp, err := employees.Create(ctx, staff, employee.CreateParams{FirstName: "Aziz", LastName: "Karimov"})
	require.NoError(t, err)

	entry, err := ledger.CurrentEntry(ctx, staff, emp.ID)
	require.NoError(t, err)
	assert.True(t, entry.Balance.IsZero())

	again, err := ledger.CurrentEntry(ctx, staff, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, again.ID)

	_, err = ledger.CreateEntry(ctx, staff, emp.ID, entry.Month)
	require.ErrorIs(t, err, monthly.ErrEntryExists)

	product, withProduct, err := ledger.AddProduct(ctx, staff, monthly.AddProductParams{
		EntryID:      entry.ID,
		Name:         "Flour",
		Quantity:     3,
		PricePerUnit: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "37.5", withProduct.Balance.String())

	payment, withPayment, err := ledger.AddPayment(ctx, staff, monthly.AddPaymentParams{
		EntryID:     entry.ID,
		Amount:      decimal.RequireFromString("40"),
		Description: "cash",
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "-2.5", withPayment.Balance.String())

	detail, err := ledger.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Products, 1)
	assert.Len(t, detail.Payments, 1)

	afterProduct, err := ledger.DeleteProduct(ctx, staff, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "-40", afterProduct.Balance.String())

	afterPayment, err := ledger.DeletePayment(ctx, staff, payment.ID)
	require.NoError(t, err)
	assert.True(t, afterPayment.Balance.IsZero())

	_, err = ledger.DeletePayment(ctx, staff, payment.ID)
	require.ErrorIs(t, err, monthly.ErrPaymentNotFound)
}

func TestWarehouseStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stock := warehouse.NewService(warehouseStore.New(db))

	item, err := stock.CreateItem(ctx, staff, warehouse.CreateItemParams{
		Name:       "Sugar",
		Quantity:   10,
		QuantityKg: decimal.RequireFromString("4.5"),
	})
	require.NoError(t, err)

	out, after, err := stock.AddMovement(ctx, staff, warehouse.AddMovementParams{
		ItemID:     item.ID,
		Type:       warehouse.MovementOut,
		Quantity:   15,
		QuantityKg: decimal.RequireFromString("1.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Quantity)
	assert.Equal(t, "3.25", after.QuantityKg.String())

	restored, err := stock.DeleteMovement(ctx, staff, out.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), restored.Quantity)
	assert.Equal(t, "4.5", restored.QuantityKg.String())

	detail, err := stock.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Movements)

	require.NoError(t, stock.DeleteItem(ctx, staff, item.ID))

	_, err = stock.GetItem(ctx, item.ID)
	require.ErrorIs(t, err, warehouse.ErrItemNotFound)
}

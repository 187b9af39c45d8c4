package monthly_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
)

var clerk = auth.Principal{UserID: uuid.New(), Username: "clerk", IsActive: true}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_CreateEntry(t *testing.T) {
	employeeID := uuid.New()

	tests := []struct {
		name      string
		month     time.Time
		setupMock func(m *monthly.MockRepository)
		wantKind  apperror.Kind
		wantErr   bool
	}{
		{
			name:  "NormalizesMonth",
			month: time.Date(2024, 5, 17, 13, 0, 0, 0, time.UTC),
			setupMock: func(m *monthly.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *monthly.Entry) error {
						assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), e.Month)
						assert.True(t, e.Balance.IsZero())
						e.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:  "Duplicate",
			month: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			setupMock: func(m *monthly.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(monthly.ErrEntryExists)
			},
			wantKind: apperror.KindConflict,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := monthly.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := monthly.NewService(repo).CreateEntry(context.Background(), clerk, employeeID, tt.month)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperror.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_CurrentEntry_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := monthly.NewMockRepository(ctrl)
	svc := monthly.NewService(repo)

	employeeID := uuid.New()
	entry := &monthly.Entry{ID: uuid.New(), EmployeeID: employeeID, Balance: dec("42.50")}

	repo.EXPECT().
		EnsureEntry(gomock.Any(), employeeID, gomock.Any()).
		Return(entry, nil).
		Times(2)

	first, err := svc.CurrentEntry(context.Background(), clerk, employeeID)
	require.NoError(t, err)

	second, err := svc.CurrentEntry(context.Background(), clerk, employeeID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "42.5", second.Balance.String())
}

func TestService_AddProduct(t *testing.T) {
	entryID := uuid.New()

	t.Run("UpdatesBalance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)
		tx := monthly.NewMockLedgerTx(ctrl)

		gomock.InOrder(
			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil),
			tx.EXPECT().LockEntry(gomock.Any(), entryID).
				Return(&monthly.Entry{ID: entryID, Balance: dec("10"), Version: 3}, nil),
			tx.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p *monthly.Product) error {
					p.ID = uuid.New()
					return nil
				}),
			tx.EXPECT().SaveBalance(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, e *monthly.Entry) error {
					assert.Equal(t, int64(3), e.Version)
					e.Version++
					return nil
				}),
			tx.EXPECT().Commit().Return(nil),
		)
		tx.EXPECT().Rollback().Return(nil)

		product, entry, err := monthly.NewService(repo).AddProduct(context.Background(), clerk, monthly.AddProductParams{
			EntryID:      entryID,
			Name:         "Bread",
			Quantity:     4,
			PricePerUnit: dec("2.25"),
		})
		require.NoError(t, err)
		assert.Equal(t, "9", product.TotalAmount.String())
		assert.Equal(t, "19", entry.Balance.String())
		assert.Equal(t, int64(4), entry.Version)
	})

	t.Run("MissingEntryIsValidationError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)
		tx := monthly.NewMockLedgerTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockEntry(gomock.Any(), entryID).Return(nil, monthly.ErrEntryNotFound)
		tx.EXPECT().Rollback().Return(nil)

		_, _, err := monthly.NewService(repo).AddProduct(context.Background(), clerk, monthly.AddProductParams{
			EntryID:      entryID,
			Name:         "Bread",
			Quantity:     1,
			PricePerUnit: dec("1"),
		})
		assert.ErrorIs(t, err, monthly.ErrEntryMissing)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("InvalidQuantityNeverTouchesStore", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)

		_, _, err := monthly.NewService(repo).AddProduct(context.Background(), clerk, monthly.AddProductParams{
			EntryID:      entryID,
			Name:         "Bread",
			Quantity:     0,
			PricePerUnit: dec("1"),
		})
		assert.ErrorIs(t, err, monthly.ErrInvalidQuantity)
	})

	t.Run("OversizedValuesNeverTouchStore", func(t *testing.T) {
		tests := []struct {
			name    string
			params  monthly.AddProductParams
			wantErr error
		}{
			{name: "QuantityAboveInt32", params: monthly.AddProductParams{Quantity: math.MaxInt32 + 1, PricePerUnit: dec("1")}, wantErr: monthly.ErrInvalidQuantity},
			{name: "PriceAboveColumn", params: monthly.AddProductParams{Quantity: 1, PricePerUnit: dec("1000000000000")}, wantErr: monthly.ErrInvalidPrice},
			{name: "TotalAboveColumn", params: monthly.AddProductParams{Quantity: 1000, PricePerUnit: dec("999999999999")}, wantErr: monthly.ErrTotalTooLarge},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				tt.params.EntryID = entryID
				tt.params.Name = "Bread"

				_, _, err := monthly.NewService(monthly.NewMockRepository(ctrl)).AddProduct(context.Background(), clerk, tt.params)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			})
		}
	})

	t.Run("BalanceOutOfRangeSkipsInsert", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)
		tx := monthly.NewMockLedgerTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockEntry(gomock.Any(), entryID).
			Return(&monthly.Entry{ID: entryID, Balance: dec("99999999999999"), Version: 1}, nil)
		tx.EXPECT().Rollback().Return(nil)

		_, _, err := monthly.NewService(repo).AddProduct(context.Background(), clerk, monthly.AddProductParams{
			EntryID:      entryID,
			Name:         "Bread",
			Quantity:     1,
			PricePerUnit: dec("1"),
		})
		assert.ErrorIs(t, err, monthly.ErrBalanceOutOfRange)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("VersionConflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)
		tx := monthly.NewMockLedgerTx(ctrl)

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().LockEntry(gomock.Any(), entryID).Return(&monthly.Entry{ID: entryID, Version: 1}, nil)
		tx.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(nil)
		tx.EXPECT().SaveBalance(gomock.Any(), gomock.Any()).Return(monthly.ErrConcurrentUpdate)
		tx.EXPECT().Rollback().Return(nil)

		_, _, err := monthly.NewService(repo).AddProduct(context.Background(), clerk, monthly.AddProductParams{
			EntryID:      entryID,
			Name:         "Bread",
			Quantity:     1,
			PricePerUnit: dec("1"),
		})
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("Anonymous", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, _, err := monthly.NewService(monthly.NewMockRepository(ctrl)).
			AddProduct(context.Background(), auth.Principal{}, monthly.AddProductParams{})
		assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	})
}

func TestService_DeleteProduct(t *testing.T) {
	t.Run("RevertsBeforeDelete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)
		tx := monthly.NewMockLedgerTx(ctrl)

		entryID := uuid.New()
		productID := uuid.New()

		gomock.InOrder(
			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil),
			tx.EXPECT().GetProduct(gomock.Any(), productID).
				Return(&monthly.Product{ID: productID, EntryID: entryID, TotalAmount: dec("30")}, nil),
			tx.EXPECT().LockEntry(gomock.Any(), entryID).
				Return(&monthly.Entry{ID: entryID, Balance: dec("50")}, nil),
			tx.EXPECT().DeleteProduct(gomock.Any(), productID).Return(nil),
			tx.EXPECT().SaveBalance(gomock.Any(), gomock.Any()).Return(nil),
			tx.EXPECT().Commit().Return(nil),
		)
		tx.EXPECT().Rollback().Return(nil)

		entry, err := monthly.NewService(repo).DeleteProduct(context.Background(), clerk, productID)
		require.NoError(t, err)
		assert.Equal(t, "20", entry.Balance.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := monthly.NewMockRepository(ctrl)
		tx := monthly.NewMockLedgerTx(ctrl)
		productID := uuid.New()

		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().GetProduct(gomock.Any(), productID).Return(nil, monthly.ErrProductNotFound)
		tx.EXPECT().Rollback().Return(nil)

		_, err := monthly.NewService(repo).DeleteProduct(context.Background(), clerk, productID)
		assert.ErrorIs(t, err, monthly.ErrProductNotFound)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})
}

func TestService_Payments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := monthly.NewMockRepository(ctrl)
	tx := monthly.NewMockLedgerTx(ctrl)
	svc := monthly.NewService(repo)

	entryID := uuid.New()
	paymentID := uuid.New()
	date := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
	tx.EXPECT().Rollback().Return(nil).Times(2)
	tx.EXPECT().Commit().Return(nil).Times(2)
	tx.EXPECT().SaveBalance(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	tx.EXPECT().LockEntry(gomock.Any(), entryID).
		Return(&monthly.Entry{ID: entryID, Balance: dec("100")}, nil)
	tx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *monthly.Payment) error {
			p.ID = paymentID
			return nil
		})

	payment, entry, err := svc.AddPayment(context.Background(), clerk, monthly.AddPaymentParams{
		EntryID:     entryID,
		Amount:      dec("40.10"),
		PaymentDate: date,
	})
	require.NoError(t, err)
	assert.Equal(t, paymentID, payment.ID)
	assert.Equal(t, "59.9", entry.Balance.String())

	tx.EXPECT().GetPayment(gomock.Any(), paymentID).
		Return(&monthly.Payment{ID: paymentID, EntryID: entryID, Amount: dec("40.10")}, nil)
	tx.EXPECT().LockEntry(gomock.Any(), entryID).
		Return(&monthly.Entry{ID: entryID, Balance: dec("59.90")}, nil)
	tx.EXPECT().DeletePayment(gomock.Any(), paymentID).Return(nil)

	entry, err = svc.DeletePayment(context.Background(), clerk, paymentID)
	require.NoError(t, err)
	assert.Equal(t, "100", entry.Balance.String())
}

func TestService_GetEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := monthly.NewMockRepository(ctrl)
	id := uuid.New()

	repo.EXPECT().GetEntry(gomock.Any(), id).Return(&monthly.Entry{ID: id, Balance: dec("5")}, nil)
	repo.EXPECT().ListProducts(gomock.Any(), id).Return([]*monthly.Product{{Name: "Tea"}}, nil)
	repo.EXPECT().ListPayments(gomock.Any(), id).Return(nil, nil)

	detail, err := monthly.NewService(repo).GetEntry(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, detail.ID)
	assert.Len(t, detail.Products, 1)
	assert.Empty(t, detail.Payments)
}

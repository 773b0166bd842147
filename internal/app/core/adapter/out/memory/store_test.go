package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
	"github.com/sutakip/sutakip-core/internal/app/core/usecase"
	"github.com/sutakip/sutakip-core/pkg/wal"
)

func testProducts() []*domain.Product {
	return []*domain.Product{
		{ID: "p1", Name: "19L Damacana Su (Dolu)", Category: domain.CategoryWater, UnitPrice: decimal.NewFromInt(85), StockQuantity: 100, LinkedDepositProductID: "p2"},
		{ID: "p2", Name: "19L Bos Damacana", Category: domain.CategoryDepositItem, UnitPrice: decimal.Zero, StockQuantity: 50},
	}
}

func testCustomers() []*domain.Customer {
	return []*domain.Customer{
		{ID: "c1", Name: "Merkez Market", Kind: domain.KindDealer, CashBalance: decimal.NewFromInt(1500), DepositBalances: map[string]int64{"p2": 10}},
		{ID: "c2", Name: "Ahmet Yilmaz", Kind: domain.KindRetail, CashBalance: decimal.Zero, DepositBalances: map[string]int64{}},
	}
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	store, err := NewStore(testProducts(), testCustomers(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	p, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	p.StockQuantity = -999

	c, err := store.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	c.DepositBalances["p2"] = -999

	p2, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), p2.StockQuantity)

	c2, err := store.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), c2.DepositBalances["p2"])
}

func TestStore_NotFound(t *testing.T) {
	store, err := NewStore(nil, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.GetProduct(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = store.GetCustomer(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestStore_ListOrdering(t *testing.T) {
	store, err := NewStore(testProducts(), testCustomers(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "19L Bos Damacana", products[0].Name)
	assert.Equal(t, "19L Damacana Su (Dolu)", products[1].Name)

	customers, err := store.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Ahmet Yilmaz", customers[0].Name)
	assert.Equal(t, "Merkez Market", customers[1].Name)

	// 交易依時間新到舊
	base := time.Now()
	for i := 0; i < 3; i++ {
		tran := &domain.Transaction{
			ID:            uuid.New(),
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			Mode:          domain.ModeFactoryOp,
			RealizedTotal: decimal.Zero,
		}
		err := store.Update(ctx, domain.LockScope{}, func(tx usecase.StoreTx) error {
			tx.PutTransaction(tran)
			return nil
		})
		require.NoError(t, err)
	}
	transactions, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	assert.True(t, transactions[0].Timestamp.After(transactions[1].Timestamp))
	assert.True(t, transactions[1].Timestamp.After(transactions[2].Timestamp))
}

func TestStore_UpdateReadYourWrites(t *testing.T) {
	store, err := NewStore(testProducts(), testCustomers(), nil)
	require.NoError(t, err)

	err = store.Update(context.Background(), domain.NewLockScope("c1", []string{"p1"}), func(tx usecase.StoreTx) error {
		p, err := tx.Product("p1")
		if err != nil {
			return err
		}
		p.StockQuantity -= 10
		tx.PutProduct(p)

		// commit 前再讀要看到暫存的值
		again, err := tx.Product("p1")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(90), again.StockQuantity)
		return nil
	})
	require.NoError(t, err)

	p, err := store.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(90), p.StockQuantity)
}

func TestStore_UpdateErrorDiscardsStagedWrites(t *testing.T) {
	store, err := NewStore(testProducts(), testCustomers(), nil)
	require.NoError(t, err)
	errBoom := errors.New("boom")

	err = store.Update(context.Background(), domain.NewLockScope("c1", []string{"p1"}), func(tx usecase.StoreTx) error {
		p, err := tx.Product("p1")
		if err != nil {
			return err
		}
		p.StockQuantity = 0
		tx.PutProduct(p)

		c, err := tx.Customer("c1")
		if err != nil {
			return err
		}
		c.CashBalance = decimal.NewFromInt(9999)
		tx.PutCustomer(c)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	p, err := store.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.StockQuantity)

	c, err := store.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "1500", c.CashBalance.String())

	transactions, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestStore_JournalReplayRestoresState(t *testing.T) {
	walPath := filepath.Join(t.TempDir(), "journal.log")

	journal, err := wal.NewWAL(walPath)
	require.NoError(t, err)

	store, err := NewStore(testProducts(), testCustomers(), journal)
	require.NoError(t, err)

	tranID := uuid.New()
	err = store.Update(context.Background(), domain.NewLockScope("c1", []string{"p1"}), func(tx usecase.StoreTx) error {
		p, err := tx.Product("p1")
		if err != nil {
			return err
		}
		p.StockQuantity -= 10
		tx.PutProduct(p)

		c, err := tx.Customer("c1")
		if err != nil {
			return err
		}
		c.CashBalance = c.CashBalance.Add(decimal.NewFromInt(850))
		c.AddDeposit("p2", 10)
		tx.PutCustomer(c)

		tx.PutTransaction(&domain.Transaction{
			ID:            tranID,
			Timestamp:     time.Now(),
			CustomerID:    "c1",
			Mode:          domain.ModeCustomerOp,
			RealizedTotal: decimal.NewFromInt(850),
			Items: []domain.TransactionItem{
				{ProductID: "p1", Quantity: 10, Movement: domain.MovementShipped, UnitPriceSnapshot: decimal.NewFromInt(85)},
			},
		})
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, journal.Close())

	// 以相同初始快照重開，日誌重放後狀態一致
	journal2, err := wal.NewWAL(walPath)
	require.NoError(t, err)
	defer journal2.Close()

	restored, err := NewStore(testProducts(), testCustomers(), journal2)
	require.NoError(t, err)

	p, err := restored.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(90), p.StockQuantity)

	c, err := restored.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "2350", c.CashBalance.String())
	assert.Equal(t, int64(20), c.DepositBalances["p2"])

	transactions, err := restored.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, tranID, transactions[0].ID)
	assert.Equal(t, "850", transactions[0].RealizedTotal.String())
	require.Len(t, transactions[0].Items, 1)
	assert.Equal(t, "85", transactions[0].Items[0].UnitPriceSnapshot.String())
}

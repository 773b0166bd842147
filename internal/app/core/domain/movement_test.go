package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waterProduct() *Product {
	return &Product{
		ID:                     "p1",
		Name:                   "19L Damacana Su (Dolu)",
		Category:               CategoryWater,
		UnitPrice:              decimal.NewFromInt(85),
		StockQuantity:          100,
		LinkedDepositProductID: "p2",
	}
}

func depositProduct() *Product {
	return &Product{
		ID:            "p2",
		Name:          "19L Bos Damacana",
		Category:      CategoryDepositItem,
		UnitPrice:     decimal.Zero,
		StockQuantity: 50,
	}
}

func otherProduct() *Product {
	return &Product{
		ID:            "p9",
		Name:          "Pompa",
		Category:      CategoryOther,
		UnitPrice:     decimal.NewFromInt(30),
		StockQuantity: 5,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		item    TransactionItem
		product *Product

		wantStock   int64
		wantTarget  string
		wantDeposit int64
		wantRevenue string
		wantErr     error
	}{
		{
			name:        "stock in under factory op",
			mode:        ModeFactoryOp,
			item:        TransactionItem{ProductID: "p1", Quantity: 50, Movement: MovementStockIn},
			product:     waterProduct(),
			wantStock:   50,
			wantRevenue: "0",
		},
		{
			name:    "stock in under customer op is rejected",
			mode:    ModeCustomerOp,
			item:    TransactionItem{ProductID: "p1", Quantity: 50, Movement: MovementStockIn},
			product: waterProduct(),
			wantErr: ErrMovementNotAllowed,
		},
		{
			name: "shipped water with linked deposit",
			mode: ModeCustomerOp,
			item: TransactionItem{
				ProductID: "p1", Quantity: 10, Movement: MovementShipped,
				UnitPriceSnapshot: decimal.NewFromInt(85),
			},
			product:     waterProduct(),
			wantStock:   -10,
			wantTarget:  "p2",
			wantDeposit: 10,
			wantRevenue: "850",
		},
		{
			name: "shipped water without linked deposit",
			mode: ModeCustomerOp,
			item: TransactionItem{
				ProductID: "p1", Quantity: 3, Movement: MovementShipped,
				UnitPriceSnapshot: decimal.NewFromInt(85),
			},
			product: func() *Product {
				p := waterProduct()
				p.LinkedDepositProductID = ""
				return p
			}(),
			wantStock:   -3,
			wantRevenue: "255",
		},
		{
			name:        "shipped deposit item targets itself without revenue",
			mode:        ModeCustomerOp,
			item:        TransactionItem{ProductID: "p2", Quantity: 4, Movement: MovementShipped},
			product:     depositProduct(),
			wantStock:   -4,
			wantTarget:  "p2",
			wantDeposit: 4,
			wantRevenue: "0",
		},
		{
			name: "shipped other product has no deposit and no revenue",
			mode: ModeCustomerOp,
			item: TransactionItem{
				ProductID: "p9", Quantity: 2, Movement: MovementShipped,
				UnitPriceSnapshot: decimal.NewFromInt(30),
			},
			product:     otherProduct(),
			wantStock:   -2,
			wantRevenue: "0",
		},
		{
			name:    "shipped under factory op is rejected",
			mode:    ModeFactoryOp,
			item:    TransactionItem{ProductID: "p1", Quantity: 1, Movement: MovementShipped},
			product: waterProduct(),
			wantErr: ErrMovementNotAllowed,
		},
		{
			name:        "returned empty deposit item reduces ledger",
			mode:        ModeCustomerOp,
			item:        TransactionItem{ProductID: "p2", Quantity: 4, Movement: MovementReturnedEmpty},
			product:     depositProduct(),
			wantStock:   4,
			wantTarget:  "p2",
			wantDeposit: -4,
			wantRevenue: "0",
		},
		{
			name:        "returned empty non-deposit product is stock only",
			mode:        ModeCustomerOp,
			item:        TransactionItem{ProductID: "p1", Quantity: 2, Movement: MovementReturnedEmpty},
			product:     waterProduct(),
			wantStock:   2,
			wantRevenue: "0",
		},
		{
			name:    "returned empty under factory op is rejected",
			mode:    ModeFactoryOp,
			item:    TransactionItem{ProductID: "p2", Quantity: 1, Movement: MovementReturnedEmpty},
			product: depositProduct(),
			wantErr: ErrMovementNotAllowed,
		},
		{
			name:    "unknown movement is rejected",
			mode:    ModeCustomerOp,
			item:    TransactionItem{ProductID: "p1", Quantity: 1, Movement: Movement("Teleported")},
			product: waterProduct(),
			wantErr: ErrMovementNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, err := Classify(tt.mode, tt.item, tt.product)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, eff.StockDelta)
			assert.Equal(t, tt.wantTarget, eff.DepositProductID)
			assert.Equal(t, tt.wantDeposit, eff.DepositDelta)
			assert.Equal(t, tt.wantRevenue, eff.Revenue.String())
		})
	}
}

func TestNewLockScope(t *testing.T) {
	scope := NewLockScope("c1", []string{"p5", "p1", "p5", "p2", "p1"})
	assert.Equal(t, []string{"p1", "p2", "p5"}, scope.ProductIDs)
	assert.Equal(t, "c1", scope.CustomerID)
}

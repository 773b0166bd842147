package mysql

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
)

// sqlProduct 對應資料庫的 products 表
type sqlProduct struct {
	ID                     string          `gorm:"primaryKey;size:36"`
	Name                   string          `gorm:"size:255;index"`
	Category               string          `gorm:"size:20"`
	UnitPrice              decimal.Decimal `gorm:"type:decimal(20,4)"`
	DepositPrice           decimal.Decimal `gorm:"type:decimal(20,4)"`
	StockQuantity          int64
	LinkedDepositProductID string `gorm:"size:36"`
	UpdatedAt              int64  `gorm:"autoUpdateTime:milli"`
}

func (*sqlProduct) TableName() string {
	return "products"
}

// sqlCustomer 對應資料庫的 customers 表
// 押瓶帳拆到 deposit_ledgers 表，一列一個 (客戶, 押瓶商品) 組合
type sqlCustomer struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Name        string          `gorm:"size:255;index"`
	Kind        string          `gorm:"size:20"`
	Phone       string          `gorm:"size:64"`
	Address     string          `gorm:"size:512"`
	CashBalance decimal.Decimal `gorm:"type:decimal(20,4)"`
	UpdatedAt   int64           `gorm:"autoUpdateTime:milli"`
}

func (*sqlCustomer) TableName() string {
	return "customers"
}

// sqlDepositLedger 對應資料庫的 deposit_ledgers 表
type sqlDepositLedger struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CustomerID string `gorm:"size:36;uniqueIndex:idx_ledger_customer_product,priority:1"`
	ProductID  string `gorm:"size:36;uniqueIndex:idx_ledger_customer_product,priority:2"`
	Balance    int64
}

func (*sqlDepositLedger) TableName() string {
	return "deposit_ledgers"
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	RefID         []byte          `gorm:"column:ref_id;type:binary(16);uniqueIndex"` // 對應 domain.Transaction.ID
	CustomerID    string          `gorm:"size:36;index"`
	Mode          string          `gorm:"size:20"`
	RealizedTotal decimal.Decimal `gorm:"type:decimal(20,4)"`
	Notes         string          `gorm:"size:1024"`
	CreatedAt     int64           `gorm:"index"` // 入帳時間 (毫秒)，由 Processor 決定，不用 autoCreateTime
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// sqlTransactionItem 對應資料庫的 transaction_items 表
// Position 保留品項的輸入順序以供稽核
type sqlTransactionItem struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	TransactionRefID []byte `gorm:"column:transaction_ref_id;type:binary(16);index"`
	Position         int
	ProductID        string `gorm:"size:36"`
	Quantity         int64
	Movement         string          `gorm:"size:20"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4)"`
}

func (*sqlTransactionItem) TableName() string {
	return "transaction_items"
}

func toProduct(row *sqlProduct) *domain.Product {
	return &domain.Product{
		ID:                     row.ID,
		Name:                   row.Name,
		Category:               domain.ProductCategory(row.Category),
		UnitPrice:              row.UnitPrice,
		DepositPrice:           row.DepositPrice,
		StockQuantity:          row.StockQuantity,
		LinkedDepositProductID: row.LinkedDepositProductID,
	}
}

func fromProduct(p *domain.Product) *sqlProduct {
	return &sqlProduct{
		ID:                     p.ID,
		Name:                   p.Name,
		Category:               string(p.Category),
		UnitPrice:              p.UnitPrice,
		DepositPrice:           p.DepositPrice,
		StockQuantity:          p.StockQuantity,
		LinkedDepositProductID: p.LinkedDepositProductID,
	}
}

func toCustomer(row *sqlCustomer, ledgers []sqlDepositLedger) *domain.Customer {
	c := &domain.Customer{
		ID:              row.ID,
		Name:            row.Name,
		Kind:            domain.CustomerKind(row.Kind),
		Phone:           row.Phone,
		Address:         row.Address,
		CashBalance:     row.CashBalance,
		DepositBalances: make(map[string]int64, len(ledgers)),
	}
	for _, l := range ledgers {
		c.DepositBalances[l.ProductID] = l.Balance
	}
	return c
}

func fromCustomer(c *domain.Customer) *sqlCustomer {
	return &sqlCustomer{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        string(c.Kind),
		Phone:       c.Phone,
		Address:     c.Address,
		CashBalance: c.CashBalance,
	}
}

func toTransaction(row *sqlTransaction, items []sqlTransactionItem) (*domain.Transaction, error) {
	id, err := uuid.FromBytes(row.RefID)
	if err != nil {
		return nil, err
	}
	tran := &domain.Transaction{
		ID:            id,
		Timestamp:     time.UnixMilli(row.CreatedAt),
		CustomerID:    row.CustomerID,
		Mode:          domain.Mode(row.Mode),
		RealizedTotal: row.RealizedTotal,
		Notes:         row.Notes,
		Items:         make([]domain.TransactionItem, 0, len(items)),
	}
	for _, item := range items {
		tran.Items = append(tran.Items, domain.TransactionItem{
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			Movement:          domain.Movement(item.Movement),
			UnitPriceSnapshot: item.UnitPrice,
		})
	}
	return tran, nil
}

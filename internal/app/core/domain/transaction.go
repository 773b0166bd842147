package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode 交易模式
type Mode string

const (
	// 對客戶的出貨/回收
	ModeCustomerOp Mode = "CustomerOp"
	// 工廠進貨，不涉及客戶
	ModeFactoryOp Mode = "FactoryOp"
)

// Movement 品項的移動類型
type Movement string

const (
	// 出貨給客戶 (水類計入營收，押瓶類記入押瓶帳)
	MovementShipped Movement = "Shipped"
	// 回收空瓶 (押瓶帳沖銷)
	MovementReturnedEmpty Movement = "ReturnedEmpty"
	// 工廠進貨入庫
	MovementStockIn Movement = "StockIn"
)

// TransactionItem 交易品項，入帳後不可變更
type TransactionItem struct {
	ProductID string
	// Quantity 數量 (> 0)
	Quantity int64
	Movement Movement
	// UnitPriceSnapshot 入帳當下的單價快照，之後改價不影響歷史交易
	UnitPriceSnapshot decimal.Decimal
}

// Transaction 交易單頭，入帳後不可變更也無沖正路徑；更正需開立反向交易
type Transaction struct {
	ID        uuid.UUID
	Timestamp time.Time
	// CustomerID 工廠進貨時為空字串
	CustomerID string
	Mode       Mode
	// RealizedTotal 實收金額，只來自水類出貨品項
	RealizedTotal decimal.Decimal
	Notes         string
	// Items 保留輸入順序以供稽核
	Items []TransactionItem
}

// Clone 回傳深拷貝 (含品項)
func (t *Transaction) Clone() *Transaction {
	cp := *t
	cp.Items = make([]TransactionItem, len(t.Items))
	copy(cp.Items, t.Items)
	return &cp
}

// LockScope 一次交易需要鎖定的資料列
// ProductIDs 去重後排序，給所有後端一致的全域鎖定順序以避免死鎖
type LockScope struct {
	ProductIDs []string
	CustomerID string
}

// NewLockScope 建立鎖定範圍
func NewLockScope(customerID string, productIDs []string) LockScope {
	seen := make(map[string]struct{}, len(productIDs))
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return LockScope{ProductIDs: ids, CustomerID: customerID}
}

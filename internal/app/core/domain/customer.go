package domain

import "github.com/shopspring/decimal"

// CustomerKind 客戶類型
type CustomerKind string

const (
	// 經銷商
	KindDealer CustomerKind = "Dealer"
	// 零售客戶
	KindRetail CustomerKind = "Retail"
)

// Customer 客戶主檔
//
// 兩個餘額欄位只允許 Transaction Processor 寫入：
//
//	CashBalance: 現金帳，正數代表客戶欠款
//	DepositBalances: 押瓶帳，商品 ID -> 數量，正數代表客戶持有應歸還
type Customer struct {
	ID      string
	Name    string
	Kind    CustomerKind
	Phone   string
	Address string

	CashBalance     decimal.Decimal
	DepositBalances map[string]int64
}

// Clone 回傳深拷貝 (含押瓶帳 Map)
func (c *Customer) Clone() *Customer {
	cp := *c
	cp.DepositBalances = make(map[string]int64, len(c.DepositBalances))
	for id, n := range c.DepositBalances {
		cp.DepositBalances[id] = n
	}
	return &cp
}

// AddDeposit 調整指定押瓶商品的簽欠數量
func (c *Customer) AddDeposit(productID string, delta int64) {
	if c.DepositBalances == nil {
		c.DepositBalances = make(map[string]int64)
	}
	c.DepositBalances[productID] += delta
}

package domain

import "github.com/shopspring/decimal"

// ProductCategory 商品分類
type ProductCategory string

const (
	// 水類商品 (滿瓶出貨，計入營收)
	CategoryWater ProductCategory = "Water"
	// 押瓶類商品 (空瓶、棧板、層架等可歸還資產，只記數量不賣斷)
	CategoryDepositItem ProductCategory = "DepositItem"
	// 其他商品
	CategoryOther ProductCategory = "Other"
)

// Product 商品主檔
type Product struct {
	ID       string
	Name     string
	Category ProductCategory
	// UnitPrice 銷售單價 (>= 0)
	UnitPrice decimal.Decimal
	// DepositPrice 押金金額，沿用舊系統欄位，目前分類邏輯不讀取
	DepositPrice decimal.Decimal
	// StockQuantity 庫存數量，允許為負 (超賣政策尚未定案)
	StockQuantity int64
	// LinkedDepositProductID 滿瓶出貨時連動的押瓶商品 ID，僅水類商品有意義
	LinkedDepositProductID string
}

// Clone 回傳深拷貝，避免呼叫端直接改到儲存層內的資料列
func (p *Product) Clone() *Product {
	cp := *p
	return &cp
}

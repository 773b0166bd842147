package domain

import "github.com/shopspring/decimal"

// Effect 單一品項對庫存/押瓶帳/營收的影響
type Effect struct {
	// StockDelta 商品本身的庫存增減
	StockDelta int64
	// DepositProductID 要記帳的押瓶商品 ID，空字串代表不動押瓶帳
	DepositProductID string
	// DepositDelta 押瓶帳增減 (正數: 客戶簽欠增加)
	DepositDelta int64
	// Revenue 計入實收金額的部分，只有水類出貨會是正數
	Revenue decimal.Decimal
}

// Classify 純函式：由 (模式, 品項, 商品) 推導出該品項的全部效果
//
// 規則:
//
//	StockIn 進貨   -> 庫存 +quantity，不動押瓶帳與營收 (限 FactoryOp)
//	Shipped 出貨   -> 庫存 -quantity；水類計營收；押瓶類或有連動押瓶的商品記押瓶帳 +quantity (限 CustomerOp)
//	ReturnedEmpty  -> 庫存 +quantity；押瓶類記押瓶帳 -quantity，其餘商品只動庫存 (限 CustomerOp)
//
// 模式與移動類型不合法的組合一律回傳 ErrMovementNotAllowed，不產生任何效果
func Classify(mode Mode, item TransactionItem, product *Product) (Effect, error) {
	switch item.Movement {
	case MovementStockIn:
		if mode != ModeFactoryOp {
			return Effect{}, ErrMovementNotAllowed
		}
		return Effect{StockDelta: item.Quantity, Revenue: decimal.Zero}, nil

	case MovementShipped:
		if mode != ModeCustomerOp {
			return Effect{}, ErrMovementNotAllowed
		}
		eff := Effect{StockDelta: -item.Quantity, Revenue: decimal.Zero}
		if product.Category == CategoryWater {
			eff.Revenue = item.UnitPriceSnapshot.Mul(decimal.NewFromInt(item.Quantity))
		}
		switch {
		case product.Category == CategoryDepositItem:
			// 押瓶商品直接出借，客戶簽欠增加
			eff.DepositProductID = product.ID
			eff.DepositDelta = item.Quantity
		case product.LinkedDepositProductID != "":
			// 滿瓶出貨，連動的空瓶簽欠增加
			eff.DepositProductID = product.LinkedDepositProductID
			eff.DepositDelta = item.Quantity
		}
		return eff, nil

	case MovementReturnedEmpty:
		if mode != ModeCustomerOp {
			return Effect{}, ErrMovementNotAllowed
		}
		eff := Effect{StockDelta: item.Quantity, Revenue: decimal.Zero}
		// 非押瓶商品的回收只動庫存，不動押瓶帳
		if product.Category == CategoryDepositItem {
			eff.DepositProductID = product.ID
			eff.DepositDelta = -item.Quantity
		}
		return eff, nil

	default:
		return Effect{}, ErrMovementNotAllowed
	}
}

// Package seed 提供示範資料，供 CLI 的 seed 指令與測試使用
// 內容沿用舊系統的初始資料集
package seed

import (
	"github.com/shopspring/decimal"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
)

// Products 示範商品: 兩種水 + 三種押瓶資產
func Products() []*domain.Product {
	return []*domain.Product{
		{
			ID:                     "p1",
			Name:                   "19L Damacana Su (Dolu)",
			Category:               domain.CategoryWater,
			UnitPrice:              decimal.NewFromInt(85),
			StockQuantity:          100,
			LinkedDepositProductID: "p2",
		},
		{
			ID:            "p2",
			Name:          "19L Bos Damacana",
			Category:      domain.CategoryDepositItem,
			UnitPrice:     decimal.Zero,
			StockQuantity: 50,
		},
		{
			ID:            "p3",
			Name:          "Euro Palet",
			Category:      domain.CategoryDepositItem,
			UnitPrice:     decimal.Zero,
			StockQuantity: 20,
		},
		{
			ID:            "p4",
			Name:          "Metal Raf",
			Category:      domain.CategoryDepositItem,
			UnitPrice:     decimal.Zero,
			StockQuantity: 10,
		},
		{
			ID:                     "p5",
			Name:                   "0.5L Su (24lu Koli)",
			Category:               domain.CategoryWater,
			UnitPrice:              decimal.NewFromInt(60),
			StockQuantity:          200,
			LinkedDepositProductID: "p3",
		},
	}
}

// Customers 示範客戶: 一家經銷商 + 一位零售客戶
func Customers() []*domain.Customer {
	return []*domain.Customer{
		{
			ID:              "c1",
			Name:            "Merkez Market",
			Kind:            domain.KindDealer,
			Phone:           "0555 111 22 33",
			Address:         "Ataturk Cad. No:1",
			CashBalance:     decimal.NewFromInt(1500),
			DepositBalances: map[string]int64{"p2": 10, "p3": 2},
		},
		{
			ID:              "c2",
			Name:            "Ahmet Yilmaz",
			Kind:            domain.KindRetail,
			Phone:           "0555 999 88 77",
			Address:         "Ev",
			CashBalance:     decimal.Zero,
			DepositBalances: map[string]int64{"p2": 1},
		},
	}
}

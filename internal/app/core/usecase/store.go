package usecase

import (
	"context"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
)

// EntityStore 是實體儲存的 Port
// 讀取端供 UI/報表層消費；Update 是唯一的寫入路徑，只有 Processor 使用
type EntityStore interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)

	// ListProducts 依名稱排序
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	// ListCustomers 依名稱排序，押瓶帳一併帶出
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	// ListTransactions 依時間新到舊排序
	ListTransactions(ctx context.Context) ([]*domain.Transaction, error)

	// Update 在單一原子範圍內執行 fn
	// 保證: fn 內 read-your-writes；fn 回傳錯誤或 commit 失敗時整批異動丟棄；
	// 鎖定範圍重疊的 Update 彼此序列化，避免 lost update
	Update(ctx context.Context, scope domain.LockScope, fn func(tx StoreTx) error) error
}

// StoreTx 原子範圍內的讀寫介面
// Put 進來的資料列在 commit 之前對範圍外不可見
type StoreTx interface {
	Product(id string) (*domain.Product, error)
	Customer(id string) (*domain.Customer, error)

	PutProduct(p *domain.Product)
	PutCustomer(c *domain.Customer)
	PutTransaction(t *domain.Transaction)
}

package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
	"github.com/sutakip/sutakip-core/internal/app/core/usecase"
	"github.com/sutakip/sutakip-core/pkg/wal"
)

// Store 是內嵌式的實體儲存
//
// 結構:
//
//	products/customers: 資料列 Map，mu 保護
//	transactions: 交易依 commit 順序追加
//	journal: commit 日誌，重啟時在初始快照上重放；nil 代表不持久化
//
// 整個 Store 共用一把鎖，所有 Update 互相序列化，
// 鎖定範圍只在 mysql 後端有意義，這裡僅收下不使用
type Store struct {
	mu           sync.RWMutex
	products     map[string]*domain.Product
	customers    map[string]*domain.Customer
	transactions []*domain.Transaction
	journal      *wal.WAL
}

// journalRecord 一次 commit 的完整內容
// 重放時直接以紀錄中的資料列覆寫，不重跑業務邏輯
type journalRecord struct {
	Products    []*domain.Product   `json:"products,omitempty"`
	Customer    *domain.Customer    `json:"customer,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

// NewStore 建立內嵌儲存
//
// 參數:
//
//	products, customers: 初始快照 (會被深拷貝)
//	journal: commit 日誌，nil 可關閉持久化
//
// 回傳:
//
//	*Store: Store 實例
//	error: 日誌重放失敗
func NewStore(products []*domain.Product, customers []*domain.Customer, journal *wal.WAL) (*Store, error) {
	s := &Store{
		products:  make(map[string]*domain.Product, len(products)),
		customers: make(map[string]*domain.Customer, len(customers)),
		journal:   journal,
	}
	for _, p := range products {
		s.products[p.ID] = p.Clone()
	}
	for _, c := range customers {
		s.customers[c.ID] = c.Clone()
	}
	if err := s.replayJournal(); err != nil {
		return nil, err
	}
	return s, nil
}

// replayJournal 在初始快照上重放 commit 日誌
// 只有 NewStore 呼叫，單執行緒，無需上鎖
func (s *Store) replayJournal() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.ReadAll(func(jsonRaw []byte) error {
		var rec journalRecord
		if err := json.Unmarshal(jsonRaw, &rec); err != nil {
			return err
		}
		s.apply(&rec)
		return nil
	})
}

// apply 把一筆 commit 紀錄套到資料列上
func (s *Store) apply(rec *journalRecord) {
	for _, p := range rec.Products {
		s.products[p.ID] = p
	}
	if rec.Customer != nil {
		s.customers[rec.Customer.ID] = rec.Customer
	}
	if rec.Transaction != nil {
		s.transactions = append(s.transactions, rec.Transaction)
	}
}

// GetProduct 取得單一商品 (深拷貝)
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p.Clone(), nil
}

// GetCustomer 取得單一客戶 (深拷貝，含押瓶帳)
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return c.Clone(), nil
}

// ListProducts 依名稱排序
func (s *Store) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListCustomers 依名稱排序，押瓶帳一併帶出
func (s *Store) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListTransactions 依時間新到舊排序
func (s *Store) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Update 在單一原子範圍內執行 fn
//
// fn 的讀取先看暫存區再看資料列 (read-your-writes)，Put 只進暫存區。
// fn 成功後先寫 commit 日誌並落盤，再把暫存區換進資料列；
// 任何一步失敗時暫存區整個丟棄，資料列保持原狀
func (s *Store) Update(ctx context.Context, scope domain.LockScope, fn func(tx usecase.StoreTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newMemTx(s)
	if err := fn(tx); err != nil {
		return err
	}

	rec := tx.record()
	if s.journal != nil {
		// 先寫日誌 (Critical Path)
		if err := s.journal.Write(rec); err != nil {
			return err
		}
		if err := s.journal.Flush(); err != nil {
			return err
		}
	}
	s.apply(rec)
	return nil
}

var _ usecase.EntityStore = (*Store)(nil)

package memory

import (
	"sort"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
	"github.com/sutakip/sutakip-core/internal/app/core/usecase"
)

// memTx 是一次 Update 的暫存區
// 讀取回傳深拷貝，commit 前對資料列零寫入
type memTx struct {
	s *Store

	products     map[string]*domain.Product
	customer     *domain.Customer
	transactions []*domain.Transaction
}

func newMemTx(s *Store) *memTx {
	return &memTx{
		s:        s,
		products: make(map[string]*domain.Product),
	}
}

func (t *memTx) Product(id string) (*domain.Product, error) {
	if p, ok := t.products[id]; ok {
		return p, nil
	}
	p, ok := t.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (t *memTx) Customer(id string) (*domain.Customer, error) {
	if t.customer != nil && t.customer.ID == id {
		return t.customer, nil
	}
	c, ok := t.s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return c.Clone(), nil
}

func (t *memTx) PutProduct(p *domain.Product) {
	t.products[p.ID] = p
}

func (t *memTx) PutCustomer(c *domain.Customer) {
	t.customer = c
}

func (t *memTx) PutTransaction(tran *domain.Transaction) {
	t.transactions = append(t.transactions, tran)
}

// record 把暫存區整理成一筆 commit 紀錄
// 商品依 ID 排序，讓日誌內容可重現
func (t *memTx) record() *journalRecord {
	rec := &journalRecord{Customer: t.customer}
	ids := make([]string, 0, len(t.products))
	for id := range t.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rec.Products = append(rec.Products, t.products[id])
	}
	if len(t.transactions) > 0 {
		rec.Transaction = t.transactions[len(t.transactions)-1]
	}
	return rec
}

var _ usecase.StoreTx = (*memTx)(nil)

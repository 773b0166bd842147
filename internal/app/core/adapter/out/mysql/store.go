package mysql

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
	"github.com/sutakip/sutakip-core/internal/app/core/usecase"
	"github.com/sutakip/sutakip-core/pkg/mysql"
)

// Store 是關聯式後端的實體儲存
// 一次 Update 對應一個 DB Transaction，範圍內的資料列用悲觀鎖鎖定
type Store struct {
	client *mysql.Client
}

// NewStore 建立 MySQL 儲存並確保資料表存在
func NewStore(client *mysql.Client) (*Store, error) {
	err := client.Migrate(
		&sqlProduct{},
		&sqlCustomer{},
		&sqlDepositLedger{},
		&sqlTransaction{},
		&sqlTransactionItem{},
	)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

// GetProduct 取得單一商品
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var row sqlProduct
	err := s.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return toProduct(&row), nil
}

// GetCustomer 取得單一客戶，押瓶帳一併帶出
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	db := s.client.DB().WithContext(ctx)

	var row sqlCustomer
	err := db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	var ledgers []sqlDepositLedger
	if err := db.Where("customer_id = ?", id).Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return toCustomer(&row, ledgers), nil
}

// ListProducts 依名稱排序
func (s *Store) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var rows []sqlProduct
	if err := s.client.DB().WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(rows))
	for i := range rows {
		out = append(out, toProduct(&rows[i]))
	}
	return out, nil
}

// ListCustomers 依名稱排序，押瓶帳一次撈出後依客戶分組
func (s *Store) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	db := s.client.DB().WithContext(ctx)

	var rows []sqlCustomer
	if err := db.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	var ledgers []sqlDepositLedger
	if err := db.Find(&ledgers).Error; err != nil {
		return nil, err
	}
	byCustomer := make(map[string][]sqlDepositLedger, len(rows))
	for _, l := range ledgers {
		byCustomer[l.CustomerID] = append(byCustomer[l.CustomerID], l)
	}

	out := make([]*domain.Customer, 0, len(rows))
	for i := range rows {
		out = append(out, toCustomer(&rows[i], byCustomer[rows[i].ID]))
	}
	return out, nil
}

// ListTransactions 依入帳時間新到舊排序，品項依 Position 還原輸入順序
func (s *Store) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	db := s.client.DB().WithContext(ctx)

	var rows []sqlTransaction
	if err := db.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	refIDs := make([][]byte, 0, len(rows))
	for i := range rows {
		refIDs = append(refIDs, rows[i].RefID)
	}
	var items []sqlTransactionItem
	if err := db.Where("transaction_ref_id IN ?", refIDs).Order("position").Find(&items).Error; err != nil {
		return nil, err
	}
	byRef := make(map[string][]sqlTransactionItem, len(rows))
	for _, item := range items {
		byRef[string(item.TransactionRefID)] = append(byRef[string(item.TransactionRefID)], item)
	}

	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		tran, err := toTransaction(&rows[i], byRef[string(rows[i].RefID)])
		if err != nil {
			return nil, err
		}
		out = append(out, tran)
	}
	return out, nil
}

// Update 在單一 DB Transaction 內執行 fn
//
// 先依固定順序 (客戶 -> 客戶押瓶帳 -> 商品，商品 ID 已排序) 以
// SELECT ... FOR UPDATE 鎖定範圍內的資料列，重疊範圍的呼叫自然序列化；
// fn 或 flush 失敗時 GORM 回滾整個交易
func (s *Store) Update(ctx context.Context, scope domain.LockScope, fn func(tx usecase.StoreTx) error) error {
	return s.client.DB().WithContext(ctx).Transaction(func(db *gorm.DB) error {
		tx, err := newStoreTx(db, scope)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.flush()
	})
}

// Seed 寫入示範資料，已存在的資料列不覆寫
// 商品與客戶主檔由核心外的 CRUD 層維護，這裡只給 CLI 初始化用
func (s *Store) Seed(ctx context.Context, products []*domain.Product, customers []*domain.Customer) error {
	db := s.client.DB().WithContext(ctx)

	for _, p := range products {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fromProduct(p)).Error
		if err != nil {
			return err
		}
	}
	for _, c := range customers {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fromCustomer(c)).Error
		if err != nil {
			return err
		}
		productIDs := make([]string, 0, len(c.DepositBalances))
		for id := range c.DepositBalances {
			productIDs = append(productIDs, id)
		}
		sort.Strings(productIDs)
		for _, productID := range productIDs {
			row := &sqlDepositLedger{
				CustomerID: c.ID,
				ProductID:  productID,
				Balance:    c.DepositBalances[productID],
			}
			err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

var _ usecase.EntityStore = (*Store)(nil)

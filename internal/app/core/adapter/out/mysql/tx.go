package mysql

import (
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
	"github.com/sutakip/sutakip-core/internal/app/core/usecase"
)

// storeTx 是一次 Update 的交易範圍
// 建構時鎖定範圍內的資料列並快取成 domain 物件；
// Put 只進暫存區，flush 時一次寫回
type storeTx struct {
	db *gorm.DB

	// 已鎖定的資料列快取
	products map[string]*domain.Product
	customer *domain.Customer

	// 暫存區
	stagedProducts map[string]*domain.Product
	stagedCustomer *domain.Customer
	stagedTrans    []*domain.Transaction
}

// newStoreTx 依固定順序鎖定範圍內的資料列
func newStoreTx(db *gorm.DB, scope domain.LockScope) (*storeTx, error) {
	tx := &storeTx{
		db:             db,
		products:       make(map[string]*domain.Product, len(scope.ProductIDs)),
		stagedProducts: make(map[string]*domain.Product),
	}

	// 1. 客戶與其押瓶帳
	if scope.CustomerID != "" {
		customer, err := lockCustomer(db, scope.CustomerID)
		if err != nil && !errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, err
		}
		tx.customer = customer // 找不到時為 nil，留給 fn 的讀取回報
	}

	// 2. 商品 (scope 內的 ID 已排序)
	if len(scope.ProductIDs) > 0 {
		var rows []sqlProduct
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", scope.ProductIDs).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for i := range rows {
			tx.products[rows[i].ID] = toProduct(&rows[i])
		}
	}
	return tx, nil
}

// lockCustomer 以悲觀鎖載入客戶與押瓶帳
func lockCustomer(db *gorm.DB, id string) (*domain.Customer, error) {
	var row sqlCustomer
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	var ledgers []sqlDepositLedger
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", id).
		Find(&ledgers).Error
	if err != nil {
		return nil, err
	}
	return toCustomer(&row, ledgers), nil
}

func (t *storeTx) Product(id string) (*domain.Product, error) {
	if p, ok := t.stagedProducts[id]; ok {
		return p, nil
	}
	if p, ok := t.products[id]; ok {
		return p, nil
	}
	// 範圍外的商品，補鎖一列
	var row sqlProduct
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p := toProduct(&row)
	t.products[id] = p
	return p, nil
}

func (t *storeTx) Customer(id string) (*domain.Customer, error) {
	if t.stagedCustomer != nil && t.stagedCustomer.ID == id {
		return t.stagedCustomer, nil
	}
	if t.customer != nil && t.customer.ID == id {
		return t.customer, nil
	}
	return lockCustomer(t.db, id)
}

func (t *storeTx) PutProduct(p *domain.Product) {
	t.stagedProducts[p.ID] = p
}

func (t *storeTx) PutCustomer(c *domain.Customer) {
	t.stagedCustomer = c
}

func (t *storeTx) PutTransaction(tran *domain.Transaction) {
	t.stagedTrans = append(t.stagedTrans, tran)
}

// flush 把暫存區寫回資料庫，任何錯誤都讓外層 Transaction 回滾
func (t *storeTx) flush() error {
	// 商品依 ID 排序寫回，維持固定寫入順序
	ids := make([]string, 0, len(t.stagedProducts))
	for id := range t.stagedProducts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := t.db.Save(fromProduct(t.stagedProducts[id])).Error; err != nil {
			return err
		}
	}

	if t.stagedCustomer != nil {
		if err := t.db.Save(fromCustomer(t.stagedCustomer)).Error; err != nil {
			return err
		}
		if err := t.flushLedgers(t.stagedCustomer); err != nil {
			return err
		}
	}

	for _, tran := range t.stagedTrans {
		row := &sqlTransaction{
			RefID:         tran.ID[:],
			CustomerID:    tran.CustomerID,
			Mode:          string(tran.Mode),
			RealizedTotal: tran.RealizedTotal,
			Notes:         tran.Notes,
			CreatedAt:     tran.Timestamp.UnixMilli(),
		}
		if err := t.db.Create(row).Error; err != nil {
			return err
		}
		for i, item := range tran.Items {
			itemRow := &sqlTransactionItem{
				TransactionRefID: tran.ID[:],
				Position:         i,
				ProductID:        item.ProductID,
				Quantity:         item.Quantity,
				Movement:         string(item.Movement),
				UnitPrice:        item.UnitPriceSnapshot,
			}
			if err := t.db.Create(itemRow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// flushLedgers 以 (customer_id, product_id) 為鍵 upsert 押瓶帳
func (t *storeTx) flushLedgers(c *domain.Customer) error {
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
		err := t.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance"}),
		}).Create(row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

var _ usecase.StoreTx = (*storeTx)(nil)

package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sutakip/sutakip-core/internal/app/core/domain"
)

// ItemRequest 交易請求中的單一品項
type ItemRequest struct {
	ProductID string
	Quantity  int64
	Movement  domain.Movement
}

// Request 交易請求，品項順序即入帳順序
type Request struct {
	Mode       domain.Mode
	CustomerID string
	Items      []ItemRequest
	Notes      string
}

// Processor 是交易處理核心
//
// 一次 Process 呼叫 = 一個邏輯工作單元：驗證 -> 分類 -> 累加 -> 原子寫入
// 庫存、現金帳、押瓶帳只允許由這裡改動
type Processor struct {
	store  EntityStore
	logger *zap.Logger
	now    func() time.Time
}

// NewProcessor 建立交易處理器
//
// 參數:
//
//	store: 實體儲存 (memory 或 mysql 後端)
//	logger: zap logger，nil 時使用 zap.NewNop()
//
// 回傳:
//
//	*Processor: Processor 實例
func NewProcessor(store EntityStore, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Process 處理一批交易品項並入帳
//
// 全部成功則回傳完整的交易單；任何驗證或寫入失敗時整批丟棄，
// 保證儲存層不留下任何部分異動。失敗只會是 *domain.ValidationError
// 或 *domain.PersistenceError 其中之一
func (p *Processor) Process(ctx context.Context, req Request) (*domain.Transaction, error) {
	if err := validate(req); err != nil {
		validationFailedTotal.Inc()
		return nil, err
	}

	scope := domain.NewLockScope(req.CustomerID, productIDs(req.Items))

	var tran *domain.Transaction
	err := p.store.Update(ctx, scope, func(tx StoreTx) error {
		// 1. 取得客戶 (限客戶交易)
		var customer *domain.Customer
		if req.Mode == domain.ModeCustomerOp {
			c, err := tx.Customer(req.CustomerID)
			if errors.Is(err, domain.ErrCustomerNotFound) {
				return &domain.ValidationError{Index: -1, Field: "customerId", Err: err}
			}
			if err != nil {
				return err
			}
			customer = c
		}

		// 2. 依輸入順序逐項分類並累加
		products := make(map[string]*domain.Product, len(scope.ProductIDs))
		items := make([]domain.TransactionItem, 0, len(req.Items))
		total := decimal.Zero

		for i, ir := range req.Items {
			product, ok := products[ir.ProductID]
			if !ok {
				var err error
				product, err = tx.Product(ir.ProductID)
				if errors.Is(err, domain.ErrProductNotFound) {
					return &domain.ValidationError{Index: i, Field: "productId", Err: err}
				}
				if err != nil {
					return err
				}
				products[ir.ProductID] = product
			}

			// 單價快照在入帳當下鎖定，之後改價不影響歷史
			item := domain.TransactionItem{
				ProductID:         ir.ProductID,
				Quantity:          ir.Quantity,
				Movement:          ir.Movement,
				UnitPriceSnapshot: product.UnitPrice,
			}

			eff, err := domain.Classify(req.Mode, item, product)
			if err != nil {
				return &domain.ValidationError{Index: i, Field: "movementType", Err: err}
			}

			product.StockQuantity += eff.StockDelta
			if eff.DepositProductID != "" && customer != nil {
				customer.AddDeposit(eff.DepositProductID, eff.DepositDelta)
			}
			total = total.Add(eff.Revenue)
			items = append(items, item)
		}

		// 3. 實收金額記入客戶現金帳；工廠交易永遠不碰現金帳
		if customer != nil && total.IsPositive() {
			customer.CashBalance = customer.CashBalance.Add(total)
		}

		// 4. 整批寫入
		for _, id := range scope.ProductIDs {
			if product, ok := products[id]; ok {
				tx.PutProduct(product)
			}
		}
		if customer != nil {
			tx.PutCustomer(customer)
		}

		customerID := ""
		if req.Mode == domain.ModeCustomerOp {
			customerID = req.CustomerID
		}
		tran = &domain.Transaction{
			ID:            uuid.New(),
			Timestamp:     p.now(),
			CustomerID:    customerID,
			Mode:          req.Mode,
			RealizedTotal: total,
			Notes:         req.Notes,
			Items:         items,
		}
		tx.PutTransaction(tran)
		return nil
	})

	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			validationFailedTotal.Inc()
			return nil, ve
		}
		persistenceFailedTotal.Inc()
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &domain.PersistenceError{Err: err}
	}

	processedTotal.WithLabelValues(string(req.Mode)).Inc()
	p.logger.Info("transaction processed",
		zap.String("transaction_id", tran.ID.String()),
		zap.String("mode", string(req.Mode)),
		zap.String("customer_id", tran.CustomerID),
		zap.Int("items", len(tran.Items)),
		zap.String("realized_total", tran.RealizedTotal.String()),
	)
	return tran, nil
}

// validate 入帳前的整批驗證，任何一項不合法即拒絕整批
func validate(req Request) error {
	switch req.Mode {
	case domain.ModeCustomerOp, domain.ModeFactoryOp:
	default:
		return &domain.ValidationError{Index: -1, Field: "mode", Err: domain.ErrInvalidMode}
	}
	if req.Mode == domain.ModeCustomerOp && req.CustomerID == "" {
		return &domain.ValidationError{Index: -1, Field: "customerId", Err: domain.ErrCustomerRequired}
	}
	if len(req.Items) == 0 {
		return &domain.ValidationError{Index: -1, Field: "items", Err: domain.ErrNoItems}
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return &domain.ValidationError{Index: i, Field: "productId", Err: domain.ErrProductNotFound}
		}
		if item.Quantity <= 0 {
			return &domain.ValidationError{Index: i, Field: "quantity", Err: domain.ErrQuantityNotPositive}
		}
		if !movementAllowed(req.Mode, item.Movement) {
			return &domain.ValidationError{Index: i, Field: "movementType", Err: domain.ErrMovementNotAllowed}
		}
	}
	return nil
}

// movementAllowed 移動類型與模式的合法組合
func movementAllowed(mode domain.Mode, movement domain.Movement) bool {
	switch movement {
	case domain.MovementStockIn:
		return mode == domain.ModeFactoryOp
	case domain.MovementShipped, domain.MovementReturnedEmpty:
		return mode == domain.ModeCustomerOp
	default:
		return false
	}
}

func productIDs(items []ItemRequest) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItems 交易沒有任何品項
	ErrNoItems = errors.New("transaction has no items")

	// ErrCustomerRequired 客戶交易缺少客戶
	ErrCustomerRequired = errors.New("customer is required for customer operations")

	// ErrCustomerNotFound 找不到客戶
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrProductNotFound 找不到商品
	ErrProductNotFound = errors.New("product not found")

	// ErrQuantityNotPositive 數量必須為正數
	ErrQuantityNotPositive = errors.New("quantity must be positive")

	// ErrMovementNotAllowed 移動類型與交易模式不符
	ErrMovementNotAllowed = errors.New("movement not allowed for transaction mode")

	// ErrInvalidMode 未知的交易模式
	ErrInvalidMode = errors.New("invalid transaction mode")
)

// ValidationError 驗證失敗，整批請求拒絕，保證未產生任何異動
type ValidationError struct {
	// Index 出錯品項的索引，-1 代表請求層級的錯誤
	Index int
	// Field 違反規則的欄位
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validation failed: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation failed: item %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceError 儲存層寫入失敗，已套用的異動已全數回滾，呼叫端可原樣重試
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

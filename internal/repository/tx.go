package repository

import "gorm.io/gorm"

// TxHook runs inside an update transaction after the target row is locked.
type TxHook func(tx *gorm.DB) error

func runHooks(tx *gorm.DB, hooks []TxHook) error {
	for _, h := range hooks {
		if err := h(tx); err != nil {
			return err
		}
	}
	return nil
}

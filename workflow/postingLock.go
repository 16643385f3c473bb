package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireCenterPostingLock serializes posting per center across instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same *gorm.DB that will do the posting transaction.
func AcquireCenterPostingLock(tx *gorm.DB, centerId int) error {
	lockName := fmt.Sprintf("posting:center:%d", centerId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for center_id=%d", centerId)
	}
	return nil
}

func ReleaseCenterPostingLock(tx *gorm.DB, centerId int) {
	lockName := fmt.Sprintf("posting:center:%d", centerId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

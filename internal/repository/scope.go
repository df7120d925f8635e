package repository

import (
	"gorm.io/gorm"

	"github.com/ipaynotify/ipaynotify/internal/model"
)

// TenantScope narrows a query to the single vendor the session may see. An
// unscoped super_admin session passes through untouched. A session that
// scopes to the nil vendor matches no rows, so a malformed session reads
// nothing rather than everything.
func TenantScope(sess *model.Session) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		vendorID, scoped := sess.Scoped()
		if !scoped {
			return db
		}
		return db.Where("vendor_id = ?", vendorID)
	}
}

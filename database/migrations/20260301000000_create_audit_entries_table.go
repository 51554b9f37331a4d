package migrations

import (
	"gorm.io/gorm"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_audit_entries_table",
		func(tx *gorm.DB) error { return tx.AutoMigrate(&models.AuditEntry{}) },
		func(tx *gorm.DB) error { return tx.Migrator().DropTable(&models.AuditEntry{}) },
	)
}

package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Event{},
		&Credential{},
		&Participant{},
		&MovementCredential{},
		&Operator{},
		&AttendanceRecord{},
		&RadioLoan{},
		&AuditEntry{},
	)
}

package models

import "time"

// RFIDLog is one raw scan as reported by a reader. Rows are append-only.
type RFIDLog struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// RFID is the tag string exactly as scanned, whatever its length or padding.
	RFID string `gorm:"column:rfid;type:text;not null" json:"rfid"`
	// ReaderID identifies the reader that reported the scan, if it said so.
	ReaderID string `gorm:"type:text" json:"readerId"`
	// ObservedAt is when the reader saw the tag.
	ObservedAt time.Time `gorm:"not null;index" json:"observedAt"`
	// CreatedAt is when the scan was written to the log.
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the database table name for the RFIDLog model.
func (RFIDLog) TableName() string {
	return "rfid_logs"
}

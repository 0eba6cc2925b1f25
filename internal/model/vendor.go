package model

import "time"

// Vendor represents a supplier whose purchase orders are tracked
type Vendor struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Name           string `json:"name" gorm:"type:varchar(255);not null"`
	ContactDetails string `json:"contact_details" gorm:"type:text"`
	Address        string `json:"address" gorm:"type:text"`
	VendorCode     string `json:"vendor_code" gorm:"type:varchar(20);uniqueIndex;not null"`
	// Cached aggregates, written only by the metrics engine
	PerformanceMetrics
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

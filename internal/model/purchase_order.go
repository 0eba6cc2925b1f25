package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/apperror"
)

// Status is the purchase order lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

const (
	MinQualityRating = 0.0
	MaxQualityRating = 5.0
)

// PurchaseOrder represents an order placed with a vendor
type PurchaseOrder struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	PONumber           string         `json:"po_number" gorm:"column:po_number;type:varchar(20);uniqueIndex;not null"`
	VendorID           uint           `json:"vendor" gorm:"index;not null"`
	OrderDate          time.Time      `json:"order_date" gorm:"not null"`
	DeliveryDate       time.Time      `json:"delivery_date" gorm:"not null"`
	Items              datatypes.JSON `json:"items"`
	Quantity           int            `json:"quantity" gorm:"not null"`
	Status             Status         `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	QualityRating      *float64       `json:"quality_rating"`
	IssueDate          time.Time      `json:"issue_date" gorm:"not null"`
	AcknowledgmentDate *time.Time     `json:"acknowledgment_date"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	Vendor *Vendor `json:"-" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
}

// IsCompleted reports whether the order reached the completed state
func (o *PurchaseOrder) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// BeforeSave enforces the model invariants and stores every timestamp in UTC
func (o *PurchaseOrder) BeforeSave(tx *gorm.DB) error {
	if o.Status == "" {
		o.Status = StatusPending
	}
	if !o.Status.Valid() {
		return apperror.Validation("invalid purchase order status %q", o.Status)
	}
	if o.QualityRating != nil && (*o.QualityRating < MinQualityRating || *o.QualityRating > MaxQualityRating) {
		return apperror.Validation("quality rating %.2f outside [%.1f, %.1f]", *o.QualityRating, MinQualityRating, MaxQualityRating)
	}

	o.OrderDate = o.OrderDate.UTC()
	o.DeliveryDate = o.DeliveryDate.UTC()
	o.IssueDate = o.IssueDate.UTC()
	if o.AcknowledgmentDate != nil {
		ack := o.AcknowledgmentDate.UTC()
		o.AcknowledgmentDate = &ack
	}
	return nil
}

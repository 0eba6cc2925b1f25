package model

import "time"

// MetricField names one of the four vendor performance columns
type MetricField string

const (
	FieldOnTimeDeliveryRate  MetricField = "on_time_delivery_rate"
	FieldQualityRatingAvg    MetricField = "quality_rating_avg"
	FieldAverageResponseTime MetricField = "average_response_time"
	FieldFulfillmentRate     MetricField = "fulfillment_rate"
)

// MetricFields lists the performance columns in display order
var MetricFields = []MetricField{
	FieldOnTimeDeliveryRate,
	FieldQualityRatingAvg,
	FieldAverageResponseTime,
	FieldFulfillmentRate,
}

// PerformanceMetrics is the set of derived vendor metrics. It is embedded in
// both Vendor (current cached values) and HistoricalPerformance (snapshots).
type PerformanceMetrics struct {
	OnTimeDeliveryRate  float64 `json:"on_time_delivery_rate" gorm:"column:on_time_delivery_rate;not null;default:0"`
	QualityRatingAvg    float64 `json:"quality_rating_avg" gorm:"column:quality_rating_avg;not null;default:0"`
	AverageResponseTime float64 `json:"average_response_time" gorm:"column:average_response_time;not null;default:0"`
	FulfillmentRate     float64 `json:"fulfillment_rate" gorm:"column:fulfillment_rate;not null;default:0"`
}

// Get returns the value of a single metric
func (m PerformanceMetrics) Get(field MetricField) float64 {
	switch field {
	case FieldOnTimeDeliveryRate:
		return m.OnTimeDeliveryRate
	case FieldQualityRatingAvg:
		return m.QualityRatingAvg
	case FieldAverageResponseTime:
		return m.AverageResponseTime
	case FieldFulfillmentRate:
		return m.FulfillmentRate
	}
	return 0
}

// Set replaces the value of a single metric
func (m *PerformanceMetrics) Set(field MetricField, value float64) {
	switch field {
	case FieldOnTimeDeliveryRate:
		m.OnTimeDeliveryRate = value
	case FieldQualityRatingAvg:
		m.QualityRatingAvg = value
	case FieldAverageResponseTime:
		m.AverageResponseTime = value
	case FieldFulfillmentRate:
		m.FulfillmentRate = value
	}
}

// HistoricalPerformance is a point-in-time snapshot of a vendor's metrics.
// At most one row exists per (vendor, date).
type HistoricalPerformance struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	VendorID uint      `json:"vendor" gorm:"not null;uniqueIndex:idx_historical_vendor_date,priority:1"`
	Date     time.Time `json:"date" gorm:"not null;uniqueIndex:idx_historical_vendor_date,priority:2"`
	PerformanceMetrics
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Vendor *Vendor `json:"-" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
}

// RatingStats aggregates quality ratings of completed orders
type RatingStats struct {
	Count int64
	Sum   float64
}

// ResponseSample is the issue/acknowledgment pair of one acknowledged order
type ResponseSample struct {
	IssueDate          time.Time
	AcknowledgmentDate time.Time
}

// ResponseTime returns the acknowledgment delay in seconds
func (s ResponseSample) ResponseTime() float64 {
	return s.AcknowledgmentDate.Sub(s.IssueDate).Seconds()
}

package model

// Price units supported by the catalog.
const (
	UnitHour  = "hour"
	UnitDay   = "day"
	UnitEvent = "event"
)

// PricePolicy determines how a space's price scales with duration.
type PricePolicy struct {
	Amount float64 `json:"amount" bson:"amount" validate:"required,gt=0"`
	Unit   string  `json:"unit" bson:"unit" validate:"required,oneof=hour day event"`
}

// Space is a rentable venue listing. The booking core consumes it
// read-only; listing CRUD is owned by the catalog service.
type Space struct {
	ID       string      `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string      `json:"name" bson:"name"`
	OwnerID  string      `json:"owner_id" bson:"owner_id"`
	IsActive bool        `json:"is_active" bson:"is_active"`
	Price    PricePolicy `json:"price" bson:"price"`
}

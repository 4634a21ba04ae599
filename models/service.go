package models

// Service belongs to exactly one provider. Duration and price are copied onto
// each booking at commit time, so later catalogue edits never touch existing
// bookings.
type Service struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	DurationMin int    `bson:"durationMin" json:"durationMin"`
	Price       Money  `bson:"priceFils" json:"price"`
}

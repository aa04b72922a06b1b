package domain

import "time"

// CarSize is the catalog size class of a car.
type CarSize string

const (
	CarSizeSmall  CarSize = "SMALL"
	CarSizeMedium CarSize = "MEDIUM"
	CarSizeLarge  CarSize = "LARGE"
)

// Valid reports whether s is a known size class.
func (s CarSize) Valid() bool {
	switch s {
	case CarSizeSmall, CarSizeMedium, CarSizeLarge:
		return true
	}
	return false
}

// Car is a rentable catalog entry. Price is in the minor currency unit.
type Car struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Price     int64     `json:"price" bson:"price"`
	Size      CarSize   `json:"size" bson:"size"`
	Image     string    `json:"image" bson:"image"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

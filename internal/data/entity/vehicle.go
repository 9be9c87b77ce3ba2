package entity

import (
	"fmt"

	"github.com/google/uuid"
)

type Vehicle struct {
	BaseSimple
	OwnerID        uuid.UUID `db:"owner_id"`
	Make           string    `db:"make"`
	Model          string    `db:"model"`
	Color          string    `db:"color"`
	LicensePlate   string    `db:"license_plate"`
	ProductionYear *int      `db:"production_year"`
}

func (v *Vehicle) Description() string {
	return fmt.Sprintf("%s %s (%s)", v.Make, v.Model, v.Color)
}

// MaskedPlate keeps only the last three characters of the plate.
func (v *Vehicle) MaskedPlate() string {
	plate := []rune(v.LicensePlate)
	if len(plate) < 3 {
		return "***"
	}
	return "*** " + string(plate[len(plate)-3:])
}

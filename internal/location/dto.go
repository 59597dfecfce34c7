package location

import "errors"

// UpdateLocationDTO is the payload browsers POST on their update interval.
type UpdateLocationDTO struct {
	Latitude  float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

func (dto UpdateLocationDTO) Validate() error {
	if dto.Latitude < -90 || dto.Latitude > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if dto.Longitude < -180 || dto.Longitude > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

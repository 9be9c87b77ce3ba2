package request

type CreateBookingRequest struct {
	RideID string `json:"ride_id" validate:"required,uuid"`
	Seats  int    `json:"seats" validate:"required,min=1,max=4"`
}

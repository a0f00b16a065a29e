package dto

// PurchasePlaneRequest is the body of POST /planes.
type PurchasePlaneRequest struct {
	TailNumber string `json:"tailNumber"`
	Model      string `json:"model"`
	Airport    string `json:"airport"`
}

// EmbarkRequest is the body of PUT /planes/{id}/embark.
type EmbarkRequest struct {
	Destination string `json:"destination"`
}

// RefuelRequest is the body of PATCH /planes/{id}/refuel.
type RefuelRequest struct {
	Amount float64 `json:"amount"` // kg
}

// LoadPackageRequest is the body of PUT /packages/{id}/load.
type LoadPackageRequest struct {
	Plane string `json:"plane"`
}

// UpdateUserRequest is the body of PUT /users/{id}.
type UpdateUserRequest struct {
	Name string `json:"name"`
}

package models

import "encoding/json"

const (
	// MaxCondition is the condition of a new or freshly repaired plane.
	MaxCondition = 100
)

// Plane is an owned aircraft identified by its tail number.
type Plane struct {
	TailNumber   string           `json:"id"`
	OwnerID      string           `json:"user"`
	ModelID      string           `json:"plane"`
	Fuel         float64          `json:"fuel"`
	Condition    float64          `json:"condition"`
	UpgradeLevel int              `json:"upgradeLevel"`
	Whereabouts  PlaneWhereabouts `json:"whereabouts"`
}

// Grounded returns the airport the plane is parked at.
func (p Plane) Grounded() (string, bool) {
	at, ok := p.Whereabouts.(AtAirport)
	return at.AirportID, ok
}

func (p *Plane) UnmarshalJSON(data []byte) error {
	type alias Plane
	aux := struct {
		*alias
		Whereabouts json.RawMessage `json:"whereabouts"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Whereabouts) == 0 {
		return nil
	}
	w, err := decodePlaneWhereabouts(aux.Whereabouts)
	if err != nil {
		return err
	}
	p.Whereabouts = w
	return nil
}

package models

import (
	"encoding/json"
	"time"
)

// PackageType tags what a package carries.
type PackageType string

const (
	Cargo     PackageType = "cargo"
	Passenger PackageType = "passenger"
)

// Package is a delivery job. Payout is credited to the carrying plane's owner when the
// package reaches Goal.
type Package struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Type        PackageType        `json:"type"`
	Count       int                `json:"count"`
	UnitMass    float64            `json:"unitMass"`
	Goal        string             `json:"goal"`
	Payout      float64            `json:"payout"`
	Expiration  time.Time          `json:"expiration"`
	Whereabouts PackageWhereabouts `json:"whereabouts"`
}

// Mass is the total mass of the package in kg.
func (p Package) Mass() float64 {
	return float64(p.Count) * p.UnitMass
}

func (p *Package) UnmarshalJSON(data []byte) error {
	type alias Package
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
	w, err := decodePackageWhereabouts(aux.Whereabouts)
	if err != nil {
		return err
	}
	p.Whereabouts = w
	return nil
}

package locations

import "time"

// Country is a top-level location identified by an ISO 3166 alpha-2 code.
type Country struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Region belongs to a country.
type Region struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CountryID int64     `json:"countryId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// City belongs to a region.
type City struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RegionID  int64     `json:"regionId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CountryInput is the payload for creating or updating a country.
type CountryInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Code string `json:"code" validate:"required,len=2,alpha"`
}

// RegionInput is the payload for creating or updating a region.
type RegionInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	CountryID int64  `json:"countryId" validate:"required,gt=0"`
}

// CityInput is the payload for creating or updating a city.
type CityInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	RegionID int64  `json:"regionId" validate:"required,gt=0"`
}

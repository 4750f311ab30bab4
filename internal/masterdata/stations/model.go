package stations

import (
	"time"
)

// Station is a fuel station owned by a company and located in a city.
type Station struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	CompanyID int64       `json:"companyId"`
	Company   CompanyRef  `json:"company"`
	ManagerID *int64      `json:"managerId"`
	Manager   *ManagerRef `json:"manager"`
	TIN       string      `json:"tin"`
	DomainURL *string     `json:"domainUrl"`
	Street    string      `json:"street"`
	CityID    int64       `json:"cityId"`
	City      CityRef     `json:"city"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ManagerRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CityRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

package companies

import (
	"time"
)

// Company is a legal entity operating stations in one country.
type Company struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	CountryID  int64        `json:"countryId"`
	Country    CountryRef   `json:"country"`
	DirectorID *int64       `json:"directorId"`
	Director   *DirectorRef `json:"director"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// CountryRef is the country summary embedded in company responses.
type CountryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// DirectorRef is the user summary embedded in company responses.
type DirectorRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

package companies

// CreateInput is the payload for creating a company.
type CreateInput struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	CountryID  int64  `json:"countryId" validate:"required,gt=0"`
	DirectorID *int64 `json:"directorId" validate:"omitempty,gt=0"`
}

// UpdateInput changes only the fields that are present.
type UpdateInput struct {
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	CountryID  *int64  `json:"countryId" validate:"omitempty,gt=0"`
	DirectorID *int64  `json:"directorId" validate:"omitempty,gt=0"`
}

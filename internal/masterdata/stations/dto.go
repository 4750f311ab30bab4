package stations

// CreateInput is the payload for creating a station.
type CreateInput struct {
	Name      string  `json:"name" validate:"required,max=255"`
	CompanyID int64   `json:"companyId" validate:"required,gt=0"`
	ManagerID *int64  `json:"managerId" validate:"omitempty,gt=0"`
	TIN       string  `json:"tin" validate:"required,max=255"`
	DomainURL *string `json:"domainUrl" validate:"omitempty,max=255"`
	Street    string  `json:"street" validate:"required,max=255"`
	CityID    int64   `json:"cityId" validate:"required,gt=0"`
}

// UpdateInput changes only the fields that are present.
type UpdateInput struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	CompanyID *int64  `json:"companyId" validate:"omitempty,gt=0"`
	ManagerID *int64  `json:"managerId" validate:"omitempty,gt=0"`
	TIN       *string `json:"tin" validate:"omitempty,max=255"`
	DomainURL *string `json:"domainUrl" validate:"omitempty,max=255"`
	Street    *string `json:"street" validate:"omitempty,max=255"`
	CityID    *int64  `json:"cityId" validate:"omitempty,gt=0"`
}

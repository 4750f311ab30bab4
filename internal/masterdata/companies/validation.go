package companies

import (
	"fmt"
	"strings"

	core "github.com/stationhub/stationhub/internal/shared"
)

func normalizeCreate(in CreateInput) (CreateInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return in, fmt.Errorf("companies: %w: company name is required", core.ErrValidation)
	}
	if in.Email == "" {
		return in, fmt.Errorf("companies: %w: company email is required", core.ErrValidation)
	}
	return in, nil
}

func normalizeUpdate(in UpdateInput) (UpdateInput, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return in, fmt.Errorf("companies: %w: company name cannot be blank", core.ErrValidation)
		}
		in.Name = &name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return in, fmt.Errorf("companies: %w: company email cannot be blank", core.ErrValidation)
		}
		in.Email = &email
	}
	return in, nil
}

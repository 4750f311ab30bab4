package stations

import (
	"fmt"
	"strings"

	core "github.com/stationhub/stationhub/internal/shared"
)

func normalizeCreate(in CreateInput) (CreateInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TIN = strings.TrimSpace(in.TIN)
	in.Street = strings.TrimSpace(in.Street)
	in.DomainURL = normalizeDomain(in.DomainURL)
	switch {
	case in.Name == "":
		return in, required("name")
	case in.TIN == "":
		return in, required("tin")
	case in.Street == "":
		return in, required("street")
	}
	return in, nil
}

func normalizeUpdate(in UpdateInput) (UpdateInput, error) {
	for field, v := range map[string]**string{"name": &in.Name, "tin": &in.TIN, "street": &in.Street} {
		if *v == nil {
			continue
		}
		s := strings.TrimSpace(**v)
		if s == "" {
			return in, required(field)
		}
		*v = &s
	}
	in.DomainURL = normalizeDomain(in.DomainURL)
	return in, nil
}

// normalizeDomain lowercases the domain and maps blank to nil so the
// unique index ignores stations without one.
func normalizeDomain(d *string) *string {
	if d == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*d))
	if s == "" {
		return nil
	}
	return &s
}

func required(field string) error {
	return fmt.Errorf("stations: %w: station %s is required", core.ErrValidation, field)
}

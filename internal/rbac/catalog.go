package rbac

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stationhub/stationhub/internal/shared"
)

// normalizeTag canonicalises resource and action tags so "Stations" and
// "stations " name the same resource. Casers are stateful, so one is built per call.
func normalizeTag(tag string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(tag))
}

// RoleDefinition is a seeded role and its baseline (resource, action) pairs.
type RoleDefinition struct {
	Name        string
	Description string
	Grants      []Pair
}

// Pair identifies a permission by resource and action.
type Pair struct {
	Resource string
	Action   string
}

// DefaultCatalog is the fixed permission catalog seeded at first boot.
func DefaultCatalog() []PermissionInput {
	return []PermissionInput{
		{Name: "view_dashboard", Description: "Can view dashboard", Resource: shared.ResourceDashboard, Action: shared.ActionView},

		{Name: "create_users", Description: "Can create users", Resource: shared.ResourceUsers, Action: shared.ActionCreate},
		{Name: "read_users", Description: "Can read users", Resource: shared.ResourceUsers, Action: shared.ActionRead},
		{Name: "update_users", Description: "Can update users", Resource: shared.ResourceUsers, Action: shared.ActionUpdate},
		{Name: "delete_users", Description: "Can delete users", Resource: shared.ResourceUsers, Action: shared.ActionDelete},
		{Name: "manage_users", Description: "Can manage all user operations", Resource: shared.ResourceUsers, Action: shared.ActionManage},

		{Name: "create_companies", Description: "Can create companies", Resource: shared.ResourceCompanies, Action: shared.ActionCreate},
		{Name: "read_companies", Description: "Can read companies", Resource: shared.ResourceCompanies, Action: shared.ActionRead},
		{Name: "update_companies", Description: "Can update companies", Resource: shared.ResourceCompanies, Action: shared.ActionUpdate},
		{Name: "delete_companies", Description: "Can delete companies", Resource: shared.ResourceCompanies, Action: shared.ActionDelete},
		{Name: "manage_companies", Description: "Can manage all company operations", Resource: shared.ResourceCompanies, Action: shared.ActionManage},

		{Name: "create_stations", Description: "Can create stations", Resource: shared.ResourceStations, Action: shared.ActionCreate},
		{Name: "read_stations", Description: "Can read stations", Resource: shared.ResourceStations, Action: shared.ActionRead},
		{Name: "update_stations", Description: "Can update stations", Resource: shared.ResourceStations, Action: shared.ActionUpdate},
		{Name: "delete_stations", Description: "Can delete stations", Resource: shared.ResourceStations, Action: shared.ActionDelete},
		{Name: "manage_stations", Description: "Can manage all station operations", Resource: shared.ResourceStations, Action: shared.ActionManage},

		{Name: "manage_countries", Description: "Can manage countries", Resource: shared.ResourceCountries, Action: shared.ActionManage},
		{Name: "read_countries", Description: "Can read countries", Resource: shared.ResourceCountries, Action: shared.ActionRead},
		{Name: "manage_regions", Description: "Can manage regions", Resource: shared.ResourceRegions, Action: shared.ActionManage},
		{Name: "read_regions", Description: "Can read regions", Resource: shared.ResourceRegions, Action: shared.ActionRead},
		{Name: "manage_cities", Description: "Can manage cities", Resource: shared.ResourceCities, Action: shared.ActionManage},
		{Name: "read_cities", Description: "Can read cities", Resource: shared.ResourceCities, Action: shared.ActionRead},
		{Name: "manage_locations", Description: "Can manage all location operations", Resource: shared.ResourceLocations, Action: shared.ActionManage},

		{Name: "manage_permissions", Description: "Can manage permissions", Resource: shared.ResourcePermissions, Action: shared.ActionManage},

		{Name: "manage_all", Description: "Full administrative access to every resource", Resource: shared.ResourceAdmin, Action: shared.ActionManage},
	}
}

// DefaultRoles lists the seeded roles with their baseline grants.
func DefaultRoles() []RoleDefinition {
	crud := func(resource string) []Pair {
		return []Pair{
			{resource, shared.ActionCreate},
			{resource, shared.ActionRead},
			{resource, shared.ActionUpdate},
			{resource, shared.ActionDelete},
			{resource, shared.ActionManage},
		}
	}
	locationsRead := []Pair{
		{shared.ResourceCountries, shared.ActionRead},
		{shared.ResourceRegions, shared.ActionRead},
		{shared.ResourceCities, shared.ActionRead},
	}

	admin := []Pair{{shared.ResourceDashboard, shared.ActionView}}
	admin = append(admin, crud(shared.ResourceUsers)...)
	admin = append(admin, crud(shared.ResourceCompanies)...)
	admin = append(admin, crud(shared.ResourceStations)...)
	admin = append(admin,
		Pair{shared.ResourceCountries, shared.ActionManage},
		Pair{shared.ResourceRegions, shared.ActionManage},
		Pair{shared.ResourceCities, shared.ActionManage},
		Pair{shared.ResourceLocations, shared.ActionManage},
		Pair{shared.ResourcePermissions, shared.ActionManage},
		Pair{shared.ResourceAdmin, shared.ActionManage},
	)

	director := []Pair{
		{shared.ResourceDashboard, shared.ActionView},
		{shared.ResourceCompanies, shared.ActionRead},
		{shared.ResourceCompanies, shared.ActionUpdate},
	}
	director = append(director, crud(shared.ResourceStations)...)
	director = append(director,
		Pair{shared.ResourceUsers, shared.ActionCreate},
		Pair{shared.ResourceUsers, shared.ActionRead},
		Pair{shared.ResourceUsers, shared.ActionUpdate},
	)
	director = append(director, locationsRead...)

	manager := []Pair{
		{shared.ResourceDashboard, shared.ActionView},
		{shared.ResourceStations, shared.ActionRead},
		{shared.ResourceStations, shared.ActionUpdate},
	}
	manager = append(manager, locationsRead...)

	return []RoleDefinition{
		{Name: shared.RoleAdmin, Description: "System Administrator with full access", Grants: admin},
		{Name: shared.RoleDirector, Description: "Company Director with company-level access", Grants: director},
		{Name: shared.RoleManager, Description: "Station Manager with station-level access", Grants: manager},
	}
}

package shared

// Permission actions.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionView   = "view"

	// ActionManage grants every action on its resource.
	ActionManage = "manage"
)

// Protected resources.
const (
	ResourceDashboard   = "dashboard"
	ResourceUsers       = "users"
	ResourceCompanies   = "companies"
	ResourceStations    = "stations"
	ResourceCountries   = "countries"
	ResourceRegions     = "regions"
	ResourceCities      = "cities"
	ResourceLocations   = "locations"
	ResourcePermissions = "permissions"

	// ResourceAdmin combined with ActionManage grants every action on every resource.
	ResourceAdmin = "admin"
)

// Role names drawn from the closed set seeded at first boot.
const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleManager  = "manager"
)

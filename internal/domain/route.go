package domain

// RoutePolicy is the access requirement declared on a navigable view.
type RoutePolicy struct {
	RequiresAuth bool
	RequiresRole Role
}

// Well-known navigation targets.
const (
	LoginPath     = "/login"
	DashboardPath = "/"
)

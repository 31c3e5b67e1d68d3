package auth

// Authorizer answers the two capability questions the engine asks before a
// privileged operation. Implementations decide what "authorized" means; the
// engine only checks, it never grants.
type Authorizer interface {
	// IsAdmin reports whether the caller may create/update pools and draw
	// down the fee treasury.
	IsAdmin(caller string) bool

	// IsDistributor reports whether the caller may fund pool rewards.
	IsDistributor(caller string) bool
}

// StaticAuthorizer authorizes against fixed address lists, typically loaded
// from configuration at startup.
type StaticAuthorizer struct {
	admins       map[string]struct{}
	distributors map[string]struct{}
}

// NewStaticAuthorizer builds an authorizer from admin and distributor address lists.
func NewStaticAuthorizer(admins, distributors []string) *StaticAuthorizer {
	a := &StaticAuthorizer{
		admins:       make(map[string]struct{}, len(admins)),
		distributors: make(map[string]struct{}, len(distributors)),
	}
	for _, addr := range admins {
		a.admins[addr] = struct{}{}
	}
	for _, addr := range distributors {
		a.distributors[addr] = struct{}{}
	}
	return a
}

// IsAdmin reports whether the caller is in the admin list.
func (a *StaticAuthorizer) IsAdmin(caller string) bool {
	_, ok := a.admins[caller]
	return ok
}

// IsDistributor reports whether the caller is in the distributor list.
func (a *StaticAuthorizer) IsDistributor(caller string) bool {
	_, ok := a.distributors[caller]
	return ok
}

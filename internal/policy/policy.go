package policy

import (
	"context"

	"github.com/dylanbaghel/devcamper-api/internal/gate"
	"github.com/dylanbaghel/devcamper-api/internal/httpx"
	"github.com/dylanbaghel/devcamper-api/internal/models"
)

// Ownable is implemented by resources that record their creator.
type Ownable interface {
	OwnerID() uint
}

// OwnerOrAdmin allows a mutation iff the acting user is an admin or owns the
// resource. A nil resource (create/list) passes; route-level role gates
// already restrict who reaches those paths.
type OwnerOrAdmin struct{}

func (OwnerOrAdmin) Can(_ context.Context, user *models.User, _ gate.Action, resource any) bool {
	if user.IsAdmin() {
		return true
	}
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Resources without ownership information are denied by default.
		return false
	}
	return ownable.OwnerID() == user.ID
}

// NewGate builds the application's gate with every resource policy registered.
func NewGate() *gate.Gate[*models.User] {
	g := gate.NewGate[*models.User]()
	g.Register("bootcamp", OwnerOrAdmin{})
	g.Register("course", OwnerOrAdmin{})
	g.Register("review", OwnerOrAdmin{})
	return g
}

// Authorize wraps Gate.Authorize and converts a denial into the 403 the API
// surfaces, naming the principal and the resource.
func Authorize(g *gate.Gate[*models.User], user *models.User, action gate.Action, resourceType string, resource any) error {
	if err := g.Authorize(context.Background(), user, action, resourceType, resource); err != nil {
		return httpx.Forbidden("User %d is not authorized to %s this %s", user.ID, action, resourceType)
	}
	return nil
}

package gate

import "strings"

// Actor identifies who performs a mutation. The engine treats both fields as
// opaque; they are supplied by the identity collaborator on every call.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

// System is used for mutations that no human initiated (migrations, seeding).
var System = Actor{ID: "system", Role: "system"}

func (a Actor) Valid() bool { return strings.TrimSpace(a.ID) != "" }

// RequireActor returns a validation error for an anonymous actor.
func RequireActor(op string, a Actor) error {
	if !a.Valid() {
		return NewError(CodeValidation, op, "actor id is required", nil)
	}
	return nil
}

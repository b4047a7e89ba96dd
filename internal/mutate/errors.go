package mutate

import "fmt"

// NotFoundError reports a lookup miss by entity kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NotOwnerError reports an attempt to touch another user's entity. The
// web layer presents it as a plain not-found so ids stay unguessable.
type NotOwnerError struct {
	UserID      string
	OwnerUserID string
	Kind        string
	ID          string
}

func (e NotOwnerError) Error() string {
	return fmt.Sprintf("%s %s belongs to another user", e.Kind, e.ID)
}

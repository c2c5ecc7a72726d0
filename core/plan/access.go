package plan

import (
	"context"

	"github.com/youwenshao/staffroom/core/user"
)

// LinkRegistry answers whether a standing professor-student link exists.
type LinkRegistry interface {
	LinkExists(ctx context.Context, professorID, studentID int) (bool, error)
}

// CanAccess decides whether viewer may read record. It fails closed: an
// absent record, absent identity or guest identity is always denied.
// Admins see everything; owners see their own plans; professors see plans
// explicitly shared with them or owned by a student they hold a standing
// link with. Standing links and share lists grow between requests, so this
// is evaluated fresh per request and its result must not be cached.
func CanAccess(ctx context.Context, links LinkRegistry, record Plan, viewer user.Identity) (bool, error) {
	if record.IsZero() || viewer.IsZero() || viewer.IsGuest {
		return false, nil
	}
	if viewer.IsAdmin() {
		return true, nil
	}
	if record.OwnerID == viewer.ID {
		return true, nil
	}
	if viewer.IsProfessor() {
		if record.SharedWith(viewer.ID) {
			return true, nil
		}
		return links.LinkExists(ctx, viewer.ID, record.OwnerID)
	}
	return false, nil
}

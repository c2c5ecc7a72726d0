package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/youwenshao/staffroom/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("plan not found")
	ErrPermissionDenied = errors.New("permission denied")
)

type (
	Repository interface {
		// CreatePlan persists pl (owner, share list and document in one
		// transaction) and returns it with its assigned ID. When linkOwner
		// is set, a standing professor-student link is upserted for every
		// shared professor in the same transaction; a duplicate link is
		// ignored, never an error. No partial write is ever visible.
		CreatePlan(ctx context.Context, kind Kind, pl Plan, linkOwner bool) (Plan, error)

		// GetPlan returns the record joined with its owner's username,
		// or ErrNotFound.
		GetPlan(ctx context.Context, kind Kind, id int) (Plan, error)

		// ListPlans returns summaries newest-first, filtered to what viewer
		// may access: admins get all records; professors get records they
		// own, records shared with them, and records owned by a linked
		// student; student-teachers get their own records; anyone else gets
		// none. The filter must stay consistent with CanAccess.
		ListPlans(ctx context.Context, kind Kind, viewer user.Identity) ([]Summary, error)

		// Link records a standing professor-student link; idempotent.
		Link(ctx context.Context, professorID, studentID int) error

		LinkExists(ctx context.Context, professorID, studentID int) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a new plan owned by owner. When the owner is a
// student-teacher, standing links to every shared professor are recorded as
// a side effect, atomically with the plan write.
func (svc *Service) Create(ctx context.Context, kind Kind, owner user.Identity, data json.RawMessage, sharedProfessors []int) (Plan, error) {
	if owner.IsZero() || owner.IsGuest {
		return Plan{}, ErrPermissionDenied
	}
	if !kind.Valid() {
		return Plan{}, fmt.Errorf("unknown plan kind %q", kind)
	}

	pl := Plan{
		OwnerID:          owner.ID,
		Data:             data,
		SharedProfessors: dedupe(sharedProfessors),
		CreatedAt:        time.Now().UTC(),
	}
	return svc.repo.CreatePlan(ctx, kind, pl, owner.IsStudentTeacher())
}

// Get fetches a plan and enforces the access rule before returning it;
// a viewer that may not see the record gets ErrPermissionDenied and no
// record fields.
func (svc *Service) Get(ctx context.Context, kind Kind, id int, viewer user.Identity) (Plan, error) {
	pl, err := svc.repo.GetPlan(ctx, kind, id)
	if err != nil {
		return Plan{}, err
	}
	ok, err := CanAccess(ctx, svc.repo, pl, viewer)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, ErrPermissionDenied
	}
	return pl, nil
}

func (svc *Service) List(ctx context.Context, kind Kind, viewer user.Identity) ([]Summary, error) {
	if viewer.IsZero() || viewer.IsGuest {
		return []Summary{}, nil
	}
	return svc.repo.ListPlans(ctx, kind, viewer)
}

func dedupe(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

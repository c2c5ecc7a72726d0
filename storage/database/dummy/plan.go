package dummydb

import (
	"context"
	"fmt"
	"sort"

	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
)

type planRepository struct {
	db    *planTables
	users *userTable
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *DB) plan.Repository {
	return &planRepository{db: db.plan, users: db.user}
}

func (repo *planRepository) ownerUsername(id int) string {
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[id]; ok {
		return usr.Username
	}
	return ""
}

func (repo *planRepository) CreatePlan(_ context.Context, kind plan.Kind, pl plan.Plan, linkOwner bool) (plan.Plan, error) {
	if !kind.Valid() {
		return plan.Plan{}, fmt.Errorf("unknown plan kind %q", kind)
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCounts[kind]++
	pl.ID = repo.db.pkCounts[kind]
	repo.db.tables[kind][pl.ID] = &pl

	if linkOwner {
		for _, profID := range pl.SharedProfessors {
			repo.db.links[linkKey{professorID: profID, studentID: pl.OwnerID}] = struct{}{}
		}
	}
	return pl, nil
}

func (repo *planRepository) GetPlan(_ context.Context, kind plan.Kind, id int) (plan.Plan, error) {
	if !kind.Valid() {
		return plan.Plan{}, fmt.Errorf("unknown plan kind %q", kind)
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	pl, ok := repo.db.tables[kind][id]
	if !ok {
		return plan.Plan{}, plan.ErrNotFound
	}
	out := *pl
	out.OwnerUsername = repo.ownerUsername(out.OwnerID)
	return out, nil
}

func (repo *planRepository) ListPlans(_ context.Context, kind plan.Kind, viewer user.Identity) ([]plan.Summary, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown plan kind %q", kind)
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	visible := make([]plan.Plan, 0)
	for _, pl := range repo.db.tables[kind] {
		switch {
		case viewer.IsAdmin():
		case viewer.IsProfessor():
			_, linked := repo.db.links[linkKey{professorID: viewer.ID, studentID: pl.OwnerID}]
			if !(pl.OwnerID == viewer.ID || pl.SharedWith(viewer.ID) || linked) {
				continue
			}
		case viewer.IsStudentTeacher():
			if pl.OwnerID != viewer.ID {
				continue
			}
		default:
			continue
		}
		out := *pl
		out.OwnerUsername = repo.ownerUsername(out.OwnerID)
		visible = append(visible, out)
	}

	// newest first
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
			return visible[i].ID > visible[j].ID
		}
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	summaries := make([]plan.Summary, 0, len(visible))
	for _, pl := range visible {
		summaries = append(summaries, pl.Summary())
	}
	return summaries, nil
}

func (repo *planRepository) Link(_ context.Context, professorID, studentID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.links[linkKey{professorID: professorID, studentID: studentID}] = struct{}{}
	return nil
}

func (repo *planRepository) LinkExists(_ context.Context, professorID, studentID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	_, ok := repo.db.links[linkKey{professorID: professorID, studentID: studentID}]
	return ok, nil
}

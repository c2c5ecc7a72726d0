package plandb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
)

const upsertLink = `
	INSERT INTO professor_student (professor_id, student_id)
	VALUES ($1, $2)
	ON CONFLICT (professor_id, student_id) DO NOTHING`

type planRepository struct {
	db *sqlx.DB
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *sqlx.DB) plan.Repository {
	return &planRepository{db: db}
}

type dbPlan struct {
	ID               int           `db:"id"`
	OwnerID          int           `db:"owner_id"`
	OwnerUsername    string        `db:"owner_username"`
	Data             []byte        `db:"plan_data"`
	SharedProfessors pq.Int64Array `db:"shared_professors"`
	CreatedAt        time.Time     `db:"created_at"`
}

func (p dbPlan) toPlan() plan.Plan {
	return plan.Plan{
		ID:               p.ID,
		OwnerID:          p.OwnerID,
		OwnerUsername:    p.OwnerUsername,
		Data:             json.RawMessage(p.Data),
		SharedProfessors: toInts(p.SharedProfessors),
		CreatedAt:        p.CreatedAt.UTC(),
	}
}

func (repo *planRepository) CreatePlan(ctx context.Context, kind plan.Kind, pl plan.Plan, linkOwner bool) (plan.Plan, error) {
	if !kind.Valid() {
		return plan.Plan{}, fmt.Errorf("unknown plan kind %q", kind)
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	q := fmt.Sprintf(
		`INSERT INTO %s (owner_id, plan_data, shared_professors, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`, kind)
	err = tx.QueryRowContext(ctx, q,
		pl.OwnerID, []byte(pl.Data), pq.Array(toInt64s(pl.SharedProfessors)), pl.CreatedAt,
	).Scan(&pl.ID)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "inserting plan")
	}

	if linkOwner {
		for _, profID := range pl.SharedProfessors {
			if _, err = tx.ExecContext(ctx, upsertLink, profID, pl.OwnerID); err != nil {
				return plan.Plan{}, errors.Wrap(err, "linking professor")
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return plan.Plan{}, errors.Wrap(err, "committing plan")
	}
	return pl, nil
}

func (repo *planRepository) GetPlan(ctx context.Context, kind plan.Kind, id int) (plan.Plan, error) {
	if !kind.Valid() {
		return plan.Plan{}, fmt.Errorf("unknown plan kind %q", kind)
	}

	var p dbPlan
	q := fmt.Sprintf(
		`SELECT p.id, p.owner_id, u.username AS owner_username,
		        p.plan_data, p.shared_professors, p.created_at
		 FROM %s p
		 JOIN users u ON u.id = p.owner_id
		 WHERE p.id = $1`, kind)
	if err := repo.db.GetContext(ctx, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return plan.Plan{}, plan.ErrNotFound
		}
		return plan.Plan{}, errors.Wrap(err, "getting plan")
	}
	return p.toPlan(), nil
}

// ListPlans applies the same visibility rule as plan.CanAccess, as one
// query: admins see all; professors see owned, explicitly shared, or
// standing-linked records; student-teachers see owned; everyone else none.
func (repo *planRepository) ListPlans(ctx context.Context, kind plan.Kind, viewer user.Identity) ([]plan.Summary, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown plan kind %q", kind)
	}

	var where string
	var args []interface{}
	switch {
	case viewer.IsAdmin():
		where = "TRUE"
	case viewer.IsProfessor():
		where = `p.owner_id = $1
			OR $1 = ANY (p.shared_professors)
			OR EXISTS (
				SELECT 1 FROM professor_student ps
				WHERE ps.professor_id = $1 AND ps.student_id = p.owner_id
			)`
		args = append(args, viewer.ID)
	case viewer.IsStudentTeacher():
		where = "p.owner_id = $1"
		args = append(args, viewer.ID)
	default:
		return []plan.Summary{}, nil
	}

	q := fmt.Sprintf(
		`SELECT p.id, p.owner_id, u.username AS owner_username,
		        p.plan_data, p.shared_professors, p.created_at
		 FROM %s p
		 JOIN users u ON u.id = p.owner_id
		 WHERE %s
		 ORDER BY p.created_at DESC, p.id DESC`, kind, where)

	var rows []dbPlan
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "listing plans")
	}

	summaries := make([]plan.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toPlan().Summary())
	}
	return summaries, nil
}

func (repo *planRepository) Link(ctx context.Context, professorID, studentID int) error {
	if _, err := repo.db.ExecContext(ctx, upsertLink, professorID, studentID); err != nil {
		return errors.Wrap(err, "linking professor")
	}
	return nil
}

func (repo *planRepository) LinkExists(ctx context.Context, professorID, studentID int) (bool, error) {
	var exists bool
	err := repo.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM professor_student
			WHERE professor_id = $1 AND student_id = $2
		)`, professorID, studentID).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "checking professor-student link")
	}
	return exists, nil
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func toInts(ids pq.Int64Array) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

package plan

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youwenshao/staffroom/core/user"
)

// linkSet is a LinkRegistry stub holding fixed professor-student pairs.
type linkSet map[[2]int]bool

func (s linkSet) LinkExists(_ context.Context, professorID, studentID int) (bool, error) {
	return s[[2]int{professorID, studentID}], nil
}

// Every cell of the access rule: role x ownership x share-membership x
// standing-link. Expected outcome restated independently of the evaluator:
// guests always deny; admins always allow; owners always allow; professors
// allow when shared or linked; everyone else denies.
func TestCanAccess(t *testing.T) {
	const otherOwnerID = 100

	roles := []string{user.RoleStudentTeacher, user.RoleProfessor, user.RoleAdmin, user.RoleGuest}
	bools := []bool{false, true}

	for _, role := range roles {
		for _, owns := range bools {
			for _, shared := range bools {
				for _, linked := range bools {
					name := fmt.Sprintf("%s/owns=%t/shared=%t/linked=%t", role, owns, shared, linked)
					t.Run(name, func(t *testing.T) {
						viewer := user.Identity{ID: 2, Username: "viewer", Role: role}
						if role == user.RoleGuest {
							viewer = user.Guest()
						}

						ownerID := otherOwnerID
						if owns {
							ownerID = viewer.ID
						}
						record := Plan{ID: 10, OwnerID: ownerID, Data: []byte(`{}`)}
						if shared {
							record.SharedProfessors = []int{viewer.ID}
						}
						links := linkSet{}
						if linked {
							links[[2]int{viewer.ID, ownerID}] = true
						}

						var want bool
						switch {
						case viewer.IsGuest:
							want = false
						case role == user.RoleAdmin:
							want = true
						case owns:
							want = true
						case role == user.RoleProfessor:
							want = shared || linked
						default:
							want = false
						}

						got, err := CanAccess(context.Background(), links, record, viewer)
						require.NoError(t, err)
						assert.Equal(t, want, got)
					})
				}
			}
		}
	}
}

func TestCanAccess_failsClosed(t *testing.T) {
	owner := user.Identity{ID: 1, Username: "serwaa", Role: user.RoleStudentTeacher}
	otherStudent := user.Identity{ID: 5, Username: "kojo", Role: user.RoleStudentTeacher}
	linkedProf := user.Identity{ID: 3, Username: "boateng", Role: user.RoleProfessor}
	admin := user.Identity{ID: 6, Username: "root", Role: user.RoleAdmin}

	links := linkSet{{linkedProf.ID, owner.ID}: true}

	tests := []struct {
		name   string
		record Plan
		viewer user.Identity
		want   bool
	}{
		{name: "no record", record: Plan{}, viewer: admin, want: false},
		{name: "no identity", record: Plan{ID: 10, OwnerID: owner.ID, Data: []byte(`{}`)}, viewer: user.Identity{}, want: false},
		// the share list grants nothing to non-professors
		{
			name:   "shared id with student role",
			record: Plan{ID: 11, OwnerID: owner.ID, Data: []byte(`{}`), SharedProfessors: []int{otherStudent.ID}},
			viewer: otherStudent,
			want:   false,
		},
		// link direction matters: owner being a professor's student does
		// not grant the student the professor's plans
		{
			name:   "link is one-way",
			record: Plan{ID: 12, OwnerID: linkedProf.ID, Data: []byte(`{}`)},
			viewer: owner,
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanAccess(context.Background(), links, tt.record, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

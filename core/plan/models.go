package plan

import (
	"encoding/json"
	"time"
)

// Kind selects which of the two parallel plan tables a repository call
// operates on. The two kinds share identical access semantics.
type Kind string

const (
	KindLesson Kind = "lesson_plans"
	KindUnit   Kind = "unit_plans"
)

func (k Kind) Valid() bool {
	return k == KindLesson || k == KindUnit
}

// Plan is a persisted lesson or unit plan document with its sharing
// metadata. Data is opaque to the repository and round-trips byte-identical.
// Owner and share list are set once at creation and never change.
type Plan struct {
	ID               int             `json:"id"`
	OwnerID          int             `json:"owner_id"`
	OwnerUsername    string          `json:"owner_username,omitempty"`
	Data             json.RawMessage `json:"plan_data"`
	SharedProfessors []int           `json:"shared_professors"`
	CreatedAt        time.Time       `json:"created_at"` // UTC
}

func (p Plan) IsZero() bool {
	return p.ID == 0 && p.OwnerID == 0 && p.Data == nil
}

func (p Plan) SharedWith(professorID int) bool {
	for _, id := range p.SharedProfessors {
		if id == professorID {
			return true
		}
	}
	return false
}

// Summary is the listing projection of a Plan.
type Summary struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
}

// titleFields are tried in order; first present non-empty field wins.
var titleFields = []string{"lesson_theme", "unit_topic", "topic"}

// Title projects a human title out of an opaque plan document.
func Title(data json.RawMessage) string {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err == nil {
		for _, f := range titleFields {
			if v, ok := doc[f].(string); ok && v != "" {
				return v
			}
		}
	}
	return "Untitled"
}

func (p Plan) Summary() Summary {
	return Summary{
		ID:            p.ID,
		Title:         Title(p.Data),
		OwnerUsername: p.OwnerUsername,
		CreatedAt:     p.CreatedAt,
	}
}

package dummydb

import (
	"sync"

	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
)

type (
	// DB is an in-memory stand-in for the real database, used in tests.
	DB struct {
		user *userTable
		plan *planTables
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	linkKey struct {
		professorID int
		studentID   int
	}

	planTables struct {
		sync.RWMutex
		pkCounts map[plan.Kind]int
		tables   map[plan.Kind]map[int]*plan.Plan
		links    map[linkKey]struct{}
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[int]*user.User)},
		plan: &planTables{
			pkCounts: make(map[plan.Kind]int),
			tables: map[plan.Kind]map[int]*plan.Plan{
				plan.KindLesson: make(map[int]*plan.Plan),
				plan.KindUnit:   make(map[int]*plan.Plan),
			},
			links: make(map[linkKey]struct{}),
		},
	}
}

package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

type (
	// DB keeps every table in memory, in insertion order.
	DB struct {
		user         *userTable
		longStudent  *longStudentTable
		shortStudent *shortStudentTable
		result       *resultTable
	}

	userTable struct {
		rows  []user.User
		mutex sync.RWMutex
	}

	longStudentTable struct {
		rows  []student.LongCourseStudent
		mutex sync.RWMutex
	}

	shortStudentTable struct {
		rows  []student.ShortCourseStudent
		mutex sync.RWMutex
	}

	resultTable struct {
		rows  []result.Result
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{},
		longStudent:  &longStudentTable{},
		shortStudent: &shortStudentTable{},
		result:       &resultTable{},
	}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.rows = nil
	db.user.mutex.Unlock()

	db.longStudent.mutex.Lock()
	db.longStudent.rows = nil
	db.longStudent.mutex.Unlock()

	db.shortStudent.mutex.Lock()
	db.shortStudent.rows = nil
	db.shortStudent.mutex.Unlock()

	db.result.mutex.Lock()
	db.result.rows = nil
	db.result.mutex.Unlock()
}

// comparator compares the `field` of the items at i & j: <0, 0 or >0.
type comparator func(field string, i, j int) int

// orderBy stably sorts a slice of n items according to ordering.
func orderBy(slice interface{}, ordering []core.DBOrdering, cmp comparator) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(slice, func(i, j int) bool {
		for _, ord := range ordering {
			c := cmp(ord.Field, i, j)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBools(a, b *bool) int {
	av, bv := a != nil && *a, b != nil && *b
	switch {
	case av == bv:
		return 0
	case !av:
		return -1
	}
	return 1
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

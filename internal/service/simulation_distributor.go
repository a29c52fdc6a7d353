package service

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
)

// periodCandidates are the weekly counts drawn for each subject by RandomizePeriods.
var periodCandidates = []int{2, 3, 4, 5, 6}

// Distributor runs the requirement heuristics of the period allocation step.
type Distributor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDistributor builds a distributor. A nil rng is replaced by a time-seeded one.
func NewDistributor(rng *rand.Rand) *Distributor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Distributor{rng: rng}
}

func (d *Distributor) intn(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(n)
}

// RandomizePeriods draws a weekly period count per subject for every grade and writes it
// to every class of that grade. Draws are capped so the subjects of a grade add up to
// exactly len(WorkingDays)×DefaultPeriodsPerDay whenever there is at least one period
// per subject. It returns the allocation chosen per grade. With no teachers, subjects
// or classes it does nothing.
func (d *Distributor) RandomizePeriods(m *Model) map[string]map[int]int {
	allocations := make(map[string]map[int]int)
	if len(m.teachers) == 0 || len(m.subjects) == 0 || len(m.classes) == 0 {
		return allocations
	}

	cfg := m.config
	capacity := len(cfg.WorkingDays) * cfg.DefaultPeriodsPerDay

	subjects := m.Subjects()
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })

	classesByGrade := make(map[string][]models.ClassGroup)
	var grades []string
	for _, class := range m.classes {
		if _, ok := classesByGrade[class.Grade]; !ok {
			grades = append(grades, class.Grade)
		}
		classesByGrade[class.Grade] = append(classesByGrade[class.Grade], class)
	}

	for _, grade := range grades {
		alloc := make(map[int]int, len(subjects))
		remaining := capacity
		for i, subject := range subjects {
			after := len(subjects) - 1 - i
			var n int
			if after == 0 {
				n = remaining
			} else {
				n = periodCandidates[d.intn(len(periodCandidates))]
				if limit := remaining - after; n > limit {
					n = limit
				}
			}
			if n < 1 {
				n = 1
			}
			remaining -= n
			alloc[subject.ID] = n
		}
		allocations[grade] = alloc

		for _, class := range classesByGrade[grade] {
			for _, subject := range subjects {
				// Class and subject come from the model, so the upsert cannot fail.
				_, _ = m.UpsertRequirement(class.ID, subject.ID, alloc[subject.ID])
			}
		}
	}
	return allocations
}

// RandomizeTeachers assigns every requirement a uniformly random teacher.
// With no teachers it does nothing and returns 0.
func (d *Distributor) RandomizeTeachers(m *Model) int {
	if len(m.teachers) == 0 {
		return 0
	}
	for i := range m.requirements {
		m.assign(i, m.teachers[d.intn(len(m.teachers))])
	}
	return len(m.requirements)
}

// BalanceTeachers reassigns requirements with the longest-processing-time rule: requirements
// are taken by descending periods (ties by id) and each goes to the teacher with the lowest
// running load (ties by lowest teacher id). Loads start at zero. It returns the resulting
// load per teacher.
func (d *Distributor) BalanceTeachers(m *Model) map[int]int {
	loads := make(map[int]int, len(m.teachers))
	if len(m.teachers) == 0 {
		return loads
	}

	teachers := m.Teachers()
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	for _, t := range teachers {
		loads[t.ID] = 0
	}

	order := make([]int, len(m.requirements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := m.requirements[order[a]], m.requirements[order[b]]
		if ra.PeriodsPerWeek != rb.PeriodsPerWeek {
			return ra.PeriodsPerWeek > rb.PeriodsPerWeek
		}
		return ra.ID < rb.ID
	})

	for _, idx := range order {
		best := teachers[0]
		for _, t := range teachers[1:] {
			if loads[t.ID] < loads[best.ID] {
				best = t
			}
		}
		m.assign(idx, best)
		loads[best.ID] += m.requirements[idx].PeriodsPerWeek
	}
	return loads
}

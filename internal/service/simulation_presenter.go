package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
	"github.com/noah-isme/sma-schedule-sim/pkg/export"
)

// Grid kinds.
const (
	GridKindClass   = "class"
	GridKindTeacher = "teacher"
)

var weekOrder = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3, "friday": 4, "saturday": 5, "sunday": 6,
}

// Grid is a weekly timetable with one row per period and one column per day.
// A nil cell is a free period.
type Grid struct {
	Kind    string               `json:"kind"`
	Name    string               `json:"name"`
	Days    []string             `json:"days"`
	Periods []int                `json:"periods"`
	Cells   [][]*models.GridCell `json:"cells"`
}

// HeatmapView is the conflict density matrix, rows are periods and columns days.
type HeatmapView struct {
	Days    []string    `json:"days"`
	Periods []int       `json:"periods"`
	Values  [][]float64 `json:"values"`
	Max     float64     `json:"max"`
}

// EntityIndex lists the classes and teachers that have a grid.
type EntityIndex struct {
	Classes  []string `json:"classes"`
	Teachers []string `json:"teachers"`
}

// ResultPresenter projects a run outcome into grids. cfg supplies the day order and
// the number of periods so sparse results still render a full week.
type ResultPresenter struct {
	cfg models.SimulationConfig
}

// NewResultPresenter builds a presenter for the config the run was made with.
func NewResultPresenter(cfg models.SimulationConfig) ResultPresenter {
	return ResultPresenter{cfg: cfg}
}

// Entities returns the sorted grid keys of a schedule outcome. Failures have none.
func (p ResultPresenter) Entities(outcome models.RunOutcome) EntityIndex {
	index := EntityIndex{Classes: []string{}, Teachers: []string{}}
	sched, ok := outcome.(*models.ScheduleOutcome)
	if !ok || sched == nil {
		return index
	}
	index.Classes = sortedKeys(sched.ByClass)
	index.Teachers = sortedKeys(sched.ByTeacher)
	return index
}

// ClassGrid returns the weekly grid of one class.
func (p ResultPresenter) ClassGrid(outcome models.RunOutcome, class string) (Grid, error) {
	sched, err := scheduleOf(outcome)
	if err != nil {
		return Grid{}, err
	}
	return p.grid(GridKindClass, class, sched.ByClass[class]), nil
}

// TeacherGrid returns the weekly grid of one teacher.
func (p ResultPresenter) TeacherGrid(outcome models.RunOutcome, teacher string) (Grid, error) {
	sched, err := scheduleOf(outcome)
	if err != nil {
		return Grid{}, err
	}
	return p.grid(GridKindTeacher, teacher, sched.ByTeacher[teacher]), nil
}

// Heatmap renders the conflict heatmap of a failed run. ok is false when there is none.
func (p ResultPresenter) Heatmap(outcome models.RunOutcome) (HeatmapView, bool) {
	failure, isFailure := outcome.(*models.FailureOutcome)
	if !isFailure || failure == nil || len(failure.ConflictHeatmap) == 0 {
		return HeatmapView{}, false
	}
	heat := foldDays(p.cfg, map[string]map[int]float64(failure.ConflictHeatmap))
	days, periods := weekAxes(p.cfg, heat)
	view := HeatmapView{Days: days, Periods: periods, Values: make([][]float64, len(periods))}
	for i, period := range periods {
		view.Values[i] = make([]float64, len(days))
		for j, day := range days {
			v := heat[day][period]
			view.Values[i][j] = v
			if v > view.Max {
				view.Max = v
			}
		}
	}
	return view, true
}

func scheduleOf(outcome models.RunOutcome) (*models.ScheduleOutcome, error) {
	switch o := outcome.(type) {
	case *models.ScheduleOutcome:
		if o != nil {
			return o, nil
		}
	case *models.FailureOutcome:
		if o == nil {
			break
		}
		return nil, appErrors.Newf(appErrors.ErrPreconditionFailed, "run ended with status %s and has no schedule", o.Status)
	}
	return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no run result available")
}

func (p ResultPresenter) grid(kind, name string, week models.WeekGrid) Grid {
	week = foldDays(p.cfg, week)
	days, periods := weekAxes(p.cfg, week)
	g := Grid{Kind: kind, Name: name, Days: days, Periods: periods, Cells: make([][]*models.GridCell, len(periods))}
	for i, period := range periods {
		g.Cells[i] = make([]*models.GridCell, len(days))
		for j, day := range days {
			if cell, ok := week.Cell(day, period); ok {
				c := cell
				g.Cells[i][j] = &c
			}
		}
	}
	return g
}

// foldDays rekeys data so day names match case-insensitively: configured days keep the
// configured spelling, other days the first spelling in sorted order.
func foldDays[M ~map[string]map[int]V, V any](cfg models.SimulationConfig, data M) M {
	canonical := make(map[string]string, len(cfg.WorkingDays)+len(data))
	for _, d := range cfg.WorkingDays {
		if _, ok := canonical[strings.ToLower(d)]; !ok {
			canonical[strings.ToLower(d)] = d
		}
	}
	raw := make([]string, 0, len(data))
	for day := range data {
		raw = append(raw, day)
	}
	sort.Strings(raw)

	out := make(M, len(data))
	for _, day := range raw {
		key, ok := canonical[strings.ToLower(day)]
		if !ok {
			key = day
			canonical[strings.ToLower(day)] = day
		}
		dst, ok := out[key]
		if !ok {
			dst = make(map[int]V, len(data[day]))
			out[key] = dst
		}
		for period, v := range data[day] {
			dst[period] = v
		}
	}
	return out
}

// weekAxes merges the configured week with whatever days and periods the data mentions.
// Configured days keep their order; extra days follow in calendar order.
func weekAxes[M ~map[string]map[int]V, V any](cfg models.SimulationConfig, data M) ([]string, []int) {
	days := append([]string{}, cfg.WorkingDays...)
	known := make(map[string]bool, len(days))
	for _, d := range days {
		known[d] = true
	}
	var extra []string
	maxPeriod := cfg.MaxPeriods()
	for day, periods := range data {
		if !known[day] {
			known[day] = true
			extra = append(extra, day)
		}
		for period := range periods {
			if period > maxPeriod {
				maxPeriod = period
			}
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		oi, iok := weekOrder[strings.ToLower(extra[i])]
		oj, jok := weekOrder[strings.ToLower(extra[j])]
		if iok && jok && oi != oj {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return extra[i] < extra[j]
	})
	days = append(days, extra...)

	periods := make([]int, maxPeriod)
	for i := range periods {
		periods[i] = i + 1
	}
	return days, periods
}

func sortedKeys(grids map[string]models.WeekGrid) []string {
	keys := make([]string, 0, len(grids))
	for k := range grids {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dataset converts the grid into an exportable table.
func (g Grid) Dataset() export.Dataset {
	headers := append([]string{"Period"}, g.Days...)
	rows := make([]map[string]string, 0, len(g.Periods))
	for i, period := range g.Periods {
		row := map[string]string{"Period": strconv.Itoa(period)}
		for j, day := range g.Days {
			cell := g.Cells[i][j]
			if cell == nil {
				row[day] = ""
				continue
			}
			parts := []string{cell.Subject}
			if g.Kind == GridKindClass && cell.Teacher != "" {
				parts = append(parts, cell.Teacher)
			}
			if g.Kind == GridKindTeacher && cell.Class != "" {
				parts = append(parts, cell.Class)
			}
			row[day] = strings.Join(parts, "\n")
		}
		rows = append(rows, row)
	}
	title := fmt.Sprintf("%s timetable: %s", kindLabel(g.Kind), g.Name)
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}

func kindLabel(kind string) string {
	if kind == GridKindTeacher {
		return "Teacher"
	}
	return "Class"
}

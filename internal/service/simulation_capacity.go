package service

import (
	"fmt"
	"sort"
)

// Capacity warning kinds.
const (
	WarningOverCapacity      = "over_capacity"
	WarningClassOverCapacity = "class_over_capacity"
	WarningTeacherOverQuota  = "teacher_over_quota"
	WarningUnassigned        = "unassigned_requirements"
)

// CapacityWarning is an advisory finding. Warnings never block navigation or runs.
type CapacityWarning struct {
	Kind     string `json:"kind"`
	EntityID int    `json:"entity_id,omitempty"`
	Message  string `json:"message"`
}

// CapacityReport compares requested periods with the periods the week offers.
type CapacityReport struct {
	TotalRequired   int               `json:"total_required"`
	TotalAvailable  int               `json:"total_available"`
	PeriodsPerClass int               `json:"periods_per_class"`
	ClassCount      int               `json:"class_count"`
	OverCapacity    bool              `json:"over_capacity"`
	Utilization     float64           `json:"utilization"`
	Warnings        []CapacityWarning `json:"warnings"`
}

// AnalyzeCapacity computes the gross capacity check of m. It is recomputed on every read.
func AnalyzeCapacity(m *Model) CapacityReport {
	cfg := m.config
	perClass := 0
	for _, day := range cfg.WorkingDays {
		perClass += cfg.PeriodsOn(day)
	}

	report := CapacityReport{
		PeriodsPerClass: perClass,
		ClassCount:      len(m.classes),
		TotalAvailable:  perClass * len(m.classes),
		Warnings:        []CapacityWarning{},
	}

	byClass := make(map[int]int)
	byTeacher := make(map[int]int)
	unassigned := 0
	for _, r := range m.requirements {
		report.TotalRequired += r.PeriodsPerWeek
		byClass[r.ClassID] += r.PeriodsPerWeek
		if r.TeacherID == nil {
			unassigned++
			continue
		}
		byTeacher[*r.TeacherID] += r.PeriodsPerWeek
	}

	report.OverCapacity = report.TotalRequired > report.TotalAvailable
	if report.TotalAvailable > 0 {
		report.Utilization = float64(report.TotalRequired) / float64(report.TotalAvailable)
	}
	if report.OverCapacity {
		report.Warnings = append(report.Warnings, CapacityWarning{
			Kind:    WarningOverCapacity,
			Message: fmt.Sprintf("%d periods requested but only %d available", report.TotalRequired, report.TotalAvailable),
		})
	}

	for _, class := range m.classes {
		if load := byClass[class.ID]; load > perClass {
			report.Warnings = append(report.Warnings, CapacityWarning{
				Kind:     WarningClassOverCapacity,
				EntityID: class.ID,
				Message:  fmt.Sprintf("%s needs %d periods but the week has %d", class.Label(), load, perClass),
			})
		}
	}

	for _, teacher := range m.teachers {
		quota := teacher.WeeklyQuota
		if pref, ok := m.teacherPrefs[teacher.ID]; ok {
			quota = pref.WeeklyQuota
		}
		if load := byTeacher[teacher.ID]; quota > 0 && load > quota {
			report.Warnings = append(report.Warnings, CapacityWarning{
				Kind:     WarningTeacherOverQuota,
				EntityID: teacher.ID,
				Message:  fmt.Sprintf("%s is assigned %d periods, quota is %d", teacher.Name, load, quota),
			})
		}
	}

	if unassigned > 0 {
		report.Warnings = append(report.Warnings, CapacityWarning{
			Kind:    WarningUnassigned,
			Message: fmt.Sprintf("%d requirements have no teacher", unassigned),
		})
	}

	sort.SliceStable(report.Warnings, func(i, j int) bool {
		return warningRank(report.Warnings[i].Kind) < warningRank(report.Warnings[j].Kind)
	})
	return report
}

func warningRank(kind string) int {
	switch kind {
	case WarningOverCapacity:
		return 0
	case WarningClassOverCapacity:
		return 1
	case WarningTeacherOverQuota:
		return 2
	default:
		return 3
	}
}

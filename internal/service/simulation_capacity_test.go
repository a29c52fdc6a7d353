package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-sim/internal/models"
)

func TestAnalyzeCapacityUsesPerDayOverrides(t *testing.T) {
	cfg := testSimulationConfig()
	cfg.PeriodsPerDay = map[string]int{"Thursday": 5}
	m := NewModel(cfg)
	m.AddTeacher("Ana")
	c1, c2 := m.AddClass(), m.AddClass()
	subject := m.AddSubject("Math")
	_, _ = m.UpsertRequirement(c1.ID, subject.ID, 20)
	_, _ = m.UpsertRequirement(c2.ID, subject.ID, 4)

	report := AnalyzeCapacity(m)

	assert.Equal(t, 33, report.PeriodsPerClass)
	assert.Equal(t, 66, report.TotalAvailable)
	assert.Equal(t, 24, report.TotalRequired)
	assert.Equal(t, 2, report.ClassCount)
	assert.False(t, report.OverCapacity)
	assert.Empty(t, report.Warnings)
}

func TestAnalyzeCapacityWarnings(t *testing.T) {
	m := NewModel(testSimulationConfig())
	ana := m.AddTeacher("Ana")
	class := m.AddClass()
	math, art := m.AddSubject("Math"), m.AddSubject("Art")
	_, _ = m.UpsertRequirement(class.ID, math.ID, 30)
	req, _ := m.UpsertRequirement(class.ID, art.ID, 10)
	_, err := m.AssignTeacher(req.ID, nil)
	require.NoError(t, err)
	require.NoError(t, m.SetTeacherPreference(models.TeacherPreference{TeacherID: ana.ID, WeeklyQuota: 20}))

	report := AnalyzeCapacity(m)

	assert.True(t, report.OverCapacity)
	require.Len(t, report.Warnings, 4)
	assert.Equal(t, WarningOverCapacity, report.Warnings[0].Kind)
	assert.Equal(t, WarningClassOverCapacity, report.Warnings[1].Kind)
	assert.Equal(t, class.ID, report.Warnings[1].EntityID)
	assert.Equal(t, WarningTeacherOverQuota, report.Warnings[2].Kind)
	assert.Equal(t, WarningUnassigned, report.Warnings[3].Kind)
}

func TestAnalyzeCapacityEmptyModel(t *testing.T) {
	report := AnalyzeCapacity(NewModel(testSimulationConfig()))

	assert.Equal(t, 0, report.TotalAvailable)
	assert.False(t, report.OverCapacity)
	assert.Zero(t, report.Utilization)
}

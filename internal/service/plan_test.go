package service_test

import (
	"testing"

	"studydesk/internal/model"
	"studydesk/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestPlanCatalog_CeilingFor(t *testing.T) {
	tests := []struct {
		name        string
		limits      []model.PlanLimit
		plan        model.Plan
		wantCeiling int
		wantBounded bool
	}{
		{
			name:        "configured ceiling",
			limits:      testPlanLimits(),
			plan:        model.PlanFree,
			wantCeiling: 5,
			wantBounded: true,
		},
		{
			name:        "explicit null ceiling means unbounded",
			limits:      testPlanLimits(),
			plan:        model.PlanPremium,
			wantBounded: false,
		},
		{
			name:        "missing row means unbounded",
			limits:      []model.PlanLimit{{Plan: model.PlanFree, DailyCeiling: intPtr(5)}},
			plan:        model.PlanStudent,
			wantBounded: false,
		},
		{
			name:        "unknown plan means unbounded",
			limits:      testPlanLimits(),
			plan:        model.Plan("ENTERPRISE"),
			wantBounded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := service.NewPlanCatalog(tt.limits, testLogger())

			ceiling, bounded := catalog.CeilingFor(tt.plan)

			assert.Equal(t, tt.wantBounded, bounded)
			if tt.wantBounded {
				assert.Equal(t, tt.wantCeiling, ceiling)
			}
		})
	}
}

func TestPlanPaid(t *testing.T) {
	assert.False(t, model.PlanFree.Paid())
	assert.True(t, model.PlanStudent.Paid())
	assert.True(t, model.PlanPremium.Paid())
}

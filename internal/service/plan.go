package service

import (
	"log/slog"

	"studydesk/internal/model"
)

// PlanCatalog maps each plan to its daily AI call ceiling. Limits are loaded
// once at startup and treated as immutable for the process lifetime.
type PlanCatalog struct {
	ceilings map[model.Plan]*int
}

// NewPlanCatalog builds the catalog from the configured plan limits. A plan
// without a limit row is treated as unbounded; that is how the system has
// always behaved, so a missing row for a known plan only gets a warning.
func NewPlanCatalog(limits []model.PlanLimit, logger *slog.Logger) *PlanCatalog {
	ceilings := make(map[model.Plan]*int, len(limits))
	for _, limit := range limits {
		ceilings[limit.Plan] = limit.DailyCeiling
	}

	for _, plan := range []model.Plan{model.PlanFree, model.PlanStudent, model.PlanPremium} {
		if _, ok := ceilings[plan]; !ok {
			logger.Warn("No limit configured for plan, treating as unbounded", "plan", plan)
		}
	}

	return &PlanCatalog{ceilings: ceilings}
}

// CeilingFor returns the daily ceiling for a plan. ok is false when the plan
// is unbounded, either by an explicit NULL ceiling or by having no row at all.
func (c *PlanCatalog) CeilingFor(plan model.Plan) (ceiling int, ok bool) {
	limit, found := c.ceilings[plan]
	if !found || limit == nil {
		return 0, false
	}
	return *limit, true
}

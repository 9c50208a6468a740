package model

// Plan identifies a subscription tier. FREE is the absence of an active
// subscription, never a stored subscription row.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanStudent Plan = "STUDENT"
	PlanPremium Plan = "PREMIUM"
)

// Paid reports whether the plan is one a subscription row may carry.
func (p Plan) Paid() bool {
	return p == PlanStudent || p == PlanPremium
}

// PlanLimit is one row of the plan_limits table. A nil DailyCeiling means
// the plan has no daily cap on AI calls.
type PlanLimit struct {
	Plan         Plan `json:"plan" db:"plan"`
	DailyCeiling *int `json:"daily_ceiling" db:"daily_ceiling"`
}

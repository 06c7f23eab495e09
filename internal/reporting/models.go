package reporting

import "time"

// TimeRange filters ledger reads; To is exclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// WorkedHoursRequest asks for one employee's worked time in a range.
// Organization isolation: OrganizationID is required.
type WorkedHoursRequest struct {
	OrganizationID string    `json:"organization_id"`
	EmployeeID     string    `json:"employee_id"`
	Range          TimeRange `json:"range"`
}

// DayTotal is the worked duration accumulated on one organization-local day.
// The day is keyed by the check-in side of each pair.
type DayTotal struct {
	// Day is the organization-local date in YYYY-MM-DD form.
	Day string `json:"day"`

	Duration time.Duration `json:"duration"`
}

// WorkedHours is the aggregation output.
type WorkedHours struct {
	Total time.Duration `json:"total"`

	// PerDay is sorted chronologically.
	PerDay []DayTotal `json:"per_day"`

	// PairCount is the number of check-in/check-out pairs consumed.
	PairCount int `json:"pair_count"`

	// IncompleteCount is the number of entries that could not be paired
	// (a check-in not immediately followed by a check-out, or an orphaned
	// check-out).
	IncompleteCount int `json:"incomplete_count"`
}

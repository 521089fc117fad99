package model

// PlannedTask is one entry of a generated next-day plan.
type PlannedTask struct {
	Title        string   `json:"title"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Category     string   `json:"category"`
	Location     string   `json:"location,omitempty"`
	NeedsInput   bool     `json:"needsInput,omitempty"`
	InputPrompts []string `json:"inputPrompts,omitempty"`
}

// NextDayPlan is the normalized result of one plan generation.
type NextDayPlan struct {
	Date     string        `json:"date"`
	Timezone string        `json:"timezone,omitempty"`
	Tasks    []PlannedTask `json:"tasks"`
}

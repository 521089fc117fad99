// Package planner repairs untrusted LLM day-plan output into well-formed
// task lists and builds the prompts that produce it.
package planner

import (
	"encoding/json"
	"fmt"
	"time"

	"focuscoach/internal/model"
)

// Options control how a raw plan is normalized.
type Options struct {
	Day           string // "YYYY-MM-DD"; empty means tomorrow
	Timezone      string // IANA name; empty means the configured default
	StartHour     int    // first hour of the planning window
	EndHour       int    // last hour of the planning window
	IncludeInputs bool   // keep needsInput/inputPrompts on tasks
}

// WithDefaults fills unset options the same way the plan endpoints do.
func (o Options) WithDefaults(now time.Time) Options {
	if o.Day == "" {
		o.Day = now.Add(24 * time.Hour).UTC().Format("2006-01-02")
	}
	if o.Timezone == "" {
		o.Timezone = "Europe/Berlin"
	}
	if o.StartHour <= 0 && o.EndHour <= 0 {
		o.StartHour, o.EndHour = 9, 18
	}
	if o.EndHour <= o.StartHour {
		o.EndHour = o.StartHour + 1
	}
	return o
}

// Normalize converts raw provider text into a safe, internally consistent
// plan. It never fails: invalid JSON degrades to an empty task list, and
// per-task malformations degrade to safe defaults ("Task" title, "other"
// category, synthesized non-overlapping one-hour slot).
func Normalize(raw string, opts Options, now time.Time) *model.NextDayPlan {
	opts = opts.WithDefaults(now)

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return &model.NextDayPlan{Date: opts.Day, Timezone: opts.Timezone, Tasks: []model.PlannedTask{}}
	}

	date := stringOr(doc["date"], opts.Day)
	tz := stringOr(doc["timezone"], opts.Timezone)

	rawTasks, _ := doc["tasks"].([]any)
	tasks := make([]model.PlannedTask, 0, len(rawTasks))

	// Slots without a parseable hour are synthesized from a monotonically
	// advancing cursor: one hour each, cursor moving to the end hour of the
	// previous task so consecutive synthesized slots never overlap. The
	// cursor never rewinds, even when a later explicit task starts earlier.
	cursor := opts.StartHour
	for _, item := range rawTasks {
		t, _ := item.(map[string]any)

		start := stringOr(t["start"], "")
		end := stringOr(t["end"], "")
		sh, sok := hourOf(start)
		eh, eok := hourOf(end)

		if !sok || !eok {
			startH := clamp(cursor, opts.StartHour, opts.EndHour-1)
			endH := startH + 1
			start = fmt.Sprintf("%sT%02d:00:00", date, startH)
			end = fmt.Sprintf("%sT%02d:00:00", date, endH)
			cursor = endH
		} else {
			if eh > cursor {
				cursor = eh
			}
			_ = sh // explicit times pass through unmodified, inverted or not
		}

		task := model.PlannedTask{
			Title:    stringOr(t["title"], "Task"),
			Start:    start,
			End:      end,
			Category: model.NormalizeCategory(stringOr(t["category"], "other")),
			Location: stringOr(t["location"], ""),
		}
		if opts.IncludeInputs {
			task.NeedsInput = boolOf(t["needsInput"])
			task.InputPrompts = stringsOf(t["inputPrompts"])
		}
		tasks = append(tasks, task)
	}

	return &model.NextDayPlan{Date: date, Timezone: tz, Tasks: tasks}
}

// hourOf extracts the hour from a "YYYY-MM-DDTHH:MM:SS" timestamp. Only the
// two characters after the date are considered, matching the lenient parse
// of the original pipeline.
func hourOf(s string) (int, bool) {
	if len(s) < 13 || s[10] != 'T' {
		return 0, false
	}
	h1, h2 := s[11], s[12]
	if h1 < '0' || h1 > '9' || h2 < '0' || h2 > '9' {
		return 0, false
	}
	h := int(h1-'0')*10 + int(h2-'0')
	if h > 23 {
		return 0, false
	}
	return h, true
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func stringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}

func boolOf(v any) bool {
	b, _ := v.(bool)
	return b
}

func stringsOf(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

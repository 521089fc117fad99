package service

import (
	"fmt"
	"strings"
	"time"

	"focuscoach/internal/model"
)

// BuildICS renders the stored plan as an iCalendar document. Task times are
// interpreted in the plan's timezone and emitted in UTC. Tasks whose times
// cannot be parsed are skipped instead of failing the export.
func BuildICS(userID string, plan *model.NextDayPlan, now time.Time) string {
	loc, err := time.LoadLocation(plan.Timezone)
	if err != nil {
		loc = time.UTC
	}

	var b strings.Builder
	writeICSLine(&b, "BEGIN:VCALENDAR")
	writeICSLine(&b, "VERSION:2.0")
	writeICSLine(&b, "PRODID:-//focuscoach//plan//EN")
	writeICSLine(&b, "CALSCALE:GREGORIAN")

	stamp := toUTCBasic(now)
	for idx, task := range plan.Tasks {
		start, sErr := time.ParseInLocation("2006-01-02T15:04:05", task.Start, loc)
		end, eErr := time.ParseInLocation("2006-01-02T15:04:05", task.End, loc)
		if sErr != nil || eErr != nil {
			continue
		}

		writeICSLine(&b, "BEGIN:VEVENT")
		writeICSLine(&b, fmt.Sprintf("UID:%s-%s-%d@focuscoach", userID, plan.Date, idx))
		writeICSLine(&b, "DTSTAMP:"+stamp)
		writeICSLine(&b, "DTSTART:"+toUTCBasic(start))
		writeICSLine(&b, "DTEND:"+toUTCBasic(end))
		writeICSLine(&b, "SUMMARY:"+escapeICS(task.Title))
		if task.Location != "" {
			writeICSLine(&b, "LOCATION:"+escapeICS(task.Location))
		}
		if len(task.InputPrompts) > 0 {
			writeICSLine(&b, "DESCRIPTION:"+escapeICS(strings.Join(task.InputPrompts, "\n")))
		}
		writeICSLine(&b, "END:VEVENT")
	}

	writeICSLine(&b, "END:VCALENDAR")
	return b.String()
}

func writeICSLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// toUTCBasic formats a time in the compact UTC form calendars expect.
func toUTCBasic(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes the characters RFC 5545 treats as special in text values.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

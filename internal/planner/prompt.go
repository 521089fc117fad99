package planner

import (
	"fmt"
	"strings"
)

// PlanPrompt builds the instruction sent to the plan model. The model must
// answer with nothing but the JSON document the normalizer expects.
func PlanPrompt(userText string, opts Options) string {
	var b strings.Builder
	b.WriteString("Create a realistic schedule for the next day. Adapt the times to what is described.\n")
	b.WriteString("Return ONLY valid JSON (no text outside):\n")
	fmt.Fprintf(&b, `{
  "date":"YYYY-MM-DD",
  "timezone":"%s",
  "tasks":[
    {
      "title":"string (short, active)",
      "start":"%sTHH:MM:00",
      "end":"%sTHH:MM:00",
      "category":"fitness|finances|learning|personal|work|creativity|social|mind|org|impact|other",
      "location":"optional",
      "needsInput":true,
      "inputPrompts":["optional strings"]
    }
  ]
}
`, opts.Timezone, opts.Day, opts.Day)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Time window strictly %d:00-%d:00 local, short breaks included.\n", opts.StartHour, opts.EndHour)
	b.WriteString("- Duration per task 30-120 minutes. No empty fields.\n")
	b.WriteString("- If no category fits, use \"other\".\n")
	fmt.Fprintf(&b, "- includeInputs=%t: if false, set needsInput=false and omit inputPrompts.\n", opts.IncludeInputs)
	b.WriteString("- Respect fixed times from the user notes.\n")
	b.WriteString("User notes:\n")
	b.WriteString(userText)
	return b.String()
}

// ImpulsePrompt asks for a short notification line derived from the user's
// stored wish, formatted as "Title — one short sentence".
func ImpulsePrompt(wishText string) string {
	return fmt.Sprintf(`Create a very short, motivating daily impulse based on this user wish (max 250 characters, factual, friendly):
Wish: %s
Format as: Title — one short sentence. No emojis.`, wishText)
}

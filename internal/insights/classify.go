package insights

import "fmt"

// FormInsights summarises one form's telemetry.
type FormInsights struct {
	Form     string `json:"form"`
	Starts   int    `json:"starts"`
	Finishes int    `json:"finishes"`
	Cancels  int    `json:"cancels"`
	Timeouts int    `json:"timeouts"`

	// CompletionRate is finishes over resolved runs. Runs still active
	// do not count against a form.
	CompletionRate float64 `json:"completion_rate"`

	Fields []FieldInsights `json:"fields,omitempty"`
	Flags  []Flag          `json:"flags,omitempty"`
}

// FieldInsights counts one field's accepted and rejected submissions.
type FieldInsights struct {
	Field         string  `json:"field"`
	Answers       int     `json:"answers"`
	Rejections    int     `json:"rejections"`
	RejectionRate float64 `json:"rejection_rate"`
}

// Flag marks a friction pattern worth a look.
type Flag struct {
	Severity string `json:"severity"` // "warning" or "notice"
	Message  string `json:"message"`
}

const (
	// A field counts as high friction once it has rejected this many
	// submissions and more than half of all attempts.
	frictionMinRejections = 3
	frictionRate          = 0.5

	// Abandonment flags need a minimum sample before they mean anything.
	abandonMinResolved = 5
	abandonRate        = 0.5
)

func classify(fi FormInsights) []Flag {
	var flags []Flag

	resolved := fi.Finishes + fi.Cancels + fi.Timeouts
	if resolved >= abandonMinResolved && fi.CompletionRate < abandonRate {
		flags = append(flags, Flag{
			Severity: "warning",
			Message:  fmt.Sprintf("Only %.0f%% of resolved runs finish.", fi.CompletionRate*100),
		})
	}
	if fi.Timeouts >= 2 && fi.Timeouts > fi.Finishes {
		flags = append(flags, Flag{
			Severity: "notice",
			Message:  "Runs time out more often than they finish.",
		})
	}

	for _, fld := range fi.Fields {
		if fld.Rejections >= frictionMinRejections && fld.RejectionRate > frictionRate {
			flags = append(flags, Flag{
				Severity: "warning",
				Message: fmt.Sprintf("Field %s rejects %d of %d attempts.",
					fld.Field, fld.Rejections, fld.Answers+fld.Rejections),
			})
		}
	}
	return flags
}

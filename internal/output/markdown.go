package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/slaclock/internal/format"
	"github.com/spiffcs/slaclock/internal/sla"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct{}

// Format outputs the ranked tickets as a Markdown list, nearest deadline
// first.
func (f *MarkdownFormatter) Format(r Report, w io.Writer) error {
	title := "SLA Report"
	if r.Folder != "" {
		title = r.Folder + " SLA Report"
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "*Generated: %s*\n\n", r.Now.Format("2006-01-02 15:04"))

	if len(r.Tickets) == 0 {
		fmt.Fprintln(w, "No SLA tracked.")
		return nil
	}

	for _, t := range r.Tickets {
		label := fmt.Sprintf("#%d", t.Number)
		if u := r.link(t); u != "" {
			label = fmt.Sprintf("[#%d](%s)", t.Number, u)
		}

		var marks []string
		if icon := format.DetermineUrgency(t.DueAt, r.Now).Icon(); icon != "" {
			marks = append(marks, icon)
		}
		if r.PriorityTag != "" && t.HasTag(r.PriorityTag) {
			marks = append(marks, format.PriorityIcon)
		}
		prefix := ""
		if len(marks) > 0 {
			prefix = strings.Join(marks, " ") + " "
		}

		fmt.Fprintf(w, "- %s%s %s (due %s, %s)\n",
			prefix,
			label,
			escapeMarkdown(t.Subject),
			sla.FormatClock(t.DueAt, r.Now),
			sla.FormatCountdown(t.DueAt, r.Now),
		)
	}

	if r.Dropped > 0 {
		fmt.Fprintf(w, "\n*%d conversations could not be read.*\n", r.Dropped)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/format"
	"github.com/spiffcs/slaclock/internal/model"
	"github.com/spiffcs/slaclock/internal/sla"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Hyperlinks turns ticket numbers into OSC 8 links.
	Hyperlinks bool
}

// Column widths
const (
	colNumber   = 8
	colDue      = 5
	colLeft     = 7
	colWaiting  = 16
	colCustomer = 20
)

// Format outputs the ranked tickets as a table
func (f *TableFormatter) Format(r Report, w io.Writer) error {
	if r.Folder != "" {
		fmt.Fprintln(w, color.New(color.Bold).Sprint(r.Folder))
	}
	if len(r.Tickets) == 0 {
		fmt.Fprintln(w, constants.NoSLATitle)
		f.printFooter(r, w)
		return nil
	}

	fmt.Fprintf(w, "%-*s%-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		format.IconWidth, "",
		colNumber, "Number",
		colDue, "Due",
		colLeft, "Left",
		colWaiting, "Waiting",
		colCustomer, "Customer",
		"Subject")
	fmt.Fprintln(w, strings.Repeat("-", format.IconWidth+colNumber+colDue+colLeft+colWaiting+colCustomer+constants.SubjectWidth+10))

	for _, t := range r.Tickets {
		fmt.Fprintln(w, f.row(r, t))
	}

	f.printFooter(r, w)
	return nil
}

func (f *TableFormatter) row(r Report, t model.Ticket) string {
	urgency := format.DetermineUrgency(t.DueAt, r.Now)

	icon := urgency.Icon()
	if icon == "" && r.PriorityTag != "" && t.HasTag(r.PriorityTag) {
		icon = format.PriorityIcon
	}
	iconCol := format.PadRight(icon, format.DisplayWidth(icon), format.IconWidth)

	number := strconv.FormatInt(t.Number, 10)
	numberWidth := format.DisplayWidth(number)
	if link := r.link(t); f.Hyperlinks && link != "" {
		number = format.Hyperlink(link, number)
	}
	numberCol := format.PadRight(number, numberWidth, colNumber)

	left := sla.FormatCountdown(t.DueAt, r.Now)
	leftCol := format.PadRight(colorUrgency(urgency, left), len(left), colLeft)

	waiting, waitingWidth := format.TruncateToWidth(format.Age(t.WaitingSince, r.Now), colWaiting)
	customer, customerWidth := format.TruncateToWidth(t.CustomerName, colCustomer)
	subject, _ := format.TruncateToWidth(t.Subject, constants.SubjectWidth)

	return fmt.Sprintf("%s%s  %-*s  %s  %s  %s  %s",
		iconCol,
		numberCol,
		colDue, sla.FormatClock(t.DueAt, r.Now),
		leftCol,
		format.PadRight(waiting, waitingWidth, colWaiting),
		format.PadRight(customer, customerWidth, colCustomer),
		subject,
	)
}

// printFooter summarizes overdue and soon-due tickets and unreadable records.
func (f *TableFormatter) printFooter(r Report, w io.Writer) {
	var overdue, soon int
	for _, t := range r.Tickets {
		switch format.DetermineUrgency(t.DueAt, r.Now) {
		case format.UrgencyOverdue:
			overdue++
		case format.UrgencySoon:
			soon++
		}
	}

	// Only print if there's something actionable
	if overdue == 0 && soon == 0 && r.Dropped == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))

	if overdue > 0 {
		fmt.Fprintf(w, "  %s %s past their SLA\n",
			color.RedString("●"),
			color.RedString("%d", overdue))
	}
	if soon > 0 {
		fmt.Fprintf(w, "  %s %d due within the hour\n",
			color.YellowString("○"),
			soon)
	}
	if r.Dropped > 0 {
		fmt.Fprintf(w, "  %s %d conversations could not be read (run with -v for details)\n",
			color.New(color.Faint).Sprint("✗"),
			r.Dropped)
	}
}

func colorUrgency(u format.Urgency, s string) string {
	switch u {
	case format.UrgencyOverdue:
		return color.RedString(s)
	case format.UrgencySoon:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/slaclock/internal/model"
)

func init() {
	color.NoColor = true
}

var testNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func testReport() Report {
	return Report{
		Now:        testNow,
		Folder:     "Unassigned",
		MailboxURL: "https://secure.helpscout.net/mailbox/abc/123/",
		Tickets: []model.Ticket{
			{
				ID:           1,
				Number:       1001,
				CustomerName: "Ada Lovelace",
				Subject:      "Engine *broken*",
				Status:       model.StatusActive,
				WaitingSince: testNow.Add(-2 * time.Hour),
				DueAt:        testNow.Add(-5 * time.Minute),
			},
			{
				ID:           2,
				Number:       1002,
				CustomerName: "Grace Hopper",
				Subject:      "Compiler question",
				Status:       model.StatusPending,
				Tags:         []string{"priority"},
				WaitingSince: testNow.Add(-30 * time.Minute),
				DueAt:        testNow.Add(30 * time.Minute),
			},
			{
				ID:           3,
				Number:       1003,
				CustomerName: "Alan Turing",
				Subject:      "Halting",
				Status:       model.StatusActive,
				WaitingSince: testNow,
				DueAt:        testNow.Add(3*time.Hour + 15*time.Minute),
			},
		},
		Dropped:     1,
		PriorityTag: "priority",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"markdown", FormatMarkdown, false},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json should build a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatMarkdown).(*MarkdownFormatter); !ok {
		t.Error("markdown should build a MarkdownFormatter")
	}
	if _, ok := NewFormatter(FormatTable).(*TableFormatter); !ok {
		t.Error("table should build a TableFormatter")
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(testReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Unassigned",
		"Number",
		"1001", "11:55", "-0:05",
		"1002", "12:30", "+0:30",
		"1003", "15:15", "+3:15",
		"Ada Lovelace",
		"1 past their SLA",
		"1 due within the hour",
		"1 conversations could not be read",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q\n%s", want, out)
		}
	}

	// rows keep the ranked order
	if strings.Index(out, "1001") > strings.Index(out, "1002") || strings.Index(out, "1002") > strings.Index(out, "1003") {
		t.Errorf("rows out of order:\n%s", out)
	}

	if strings.Contains(out, "\x1b]8;;") {
		t.Error("hyperlinks disabled but OSC 8 sequence present")
	}
}

func TestTableFormatterHyperlinks(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{Hyperlinks: true}
	if err := f.Format(testReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "https://secure.helpscout.net/conversation/1") {
		t.Errorf("expected conversation link in output:\n%s", buf.String())
	}
}

func TestTableFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	if err := f.Format(Report{Now: testNow}, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "No SLA" {
		t.Errorf("empty table = %q, want No SLA", got)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	if err := f.Format(testReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if out.Folder != "Unassigned" || out.Dropped != 1 {
		t.Errorf("metadata = %q/%d, want Unassigned/1", out.Folder, out.Dropped)
	}
	if len(out.Tickets) != 3 {
		t.Fatalf("len(tickets) = %d, want 3", len(out.Tickets))
	}

	tests := []struct {
		countdown string
		urgency   string
		status    string
	}{
		{"-0:05", "overdue", "active"},
		{"+0:30", "soon", "pending"},
		{"+3:15", "ok", "active"},
	}
	for i, tt := range tests {
		got := out.Tickets[i]
		if got.Countdown != tt.countdown || got.Urgency != tt.urgency || got.Status != tt.status {
			t.Errorf("ticket %d = %s/%s/%s, want %s/%s/%s", i,
				got.Countdown, got.Urgency, got.Status, tt.countdown, tt.urgency, tt.status)
		}
	}
	if out.Tickets[0].URL != "https://secure.helpscout.net/conversation/1" {
		t.Errorf("url = %q", out.Tickets[0].URL)
	}
	if !out.Tickets[1].DueAt.Equal(testNow.Add(30 * time.Minute)) {
		t.Errorf("sla = %v", out.Tickets[1].DueAt)
	}
}

func TestJSONFormatterEmptyTicketsIsArray(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	if err := f.Format(Report{Now: testNow}, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"tickets":[]`) {
		t.Errorf("empty tickets should encode as [], got %s", buf.String())
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &MarkdownFormatter{}
	if err := f.Format(testReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Unassigned SLA Report",
		"[#1001](https://secure.helpscout.net/conversation/1)",
		`Engine \*broken\*`,
		"(due 11:55, -0:05)",
		"(due 12:30, +0:30)",
		"*1 conversations could not be read.*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownFormatterWithoutMailbox(t *testing.T) {
	r := testReport()
	r.MailboxURL = ""

	var buf bytes.Buffer
	f := &MarkdownFormatter{}
	if err := f.Format(r, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "](") {
		t.Errorf("links rendered without a mailbox URL:\n%s", buf.String())
	}
}

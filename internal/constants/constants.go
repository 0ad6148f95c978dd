// Package constants provides a centralized location for configuration
// values and magic numbers used throughout slaclock.
package constants

import "time"

// Display constants
const (
	// QuickAccessSize is the number of tickets listed below the clock.
	QuickAccessSize = 3

	// NoSLATitle is shown when no ticket is tracked.
	NoSLATitle = "No SLA"

	// NoFolderLabel is shown when the browser sits on the dashboard
	// instead of a mailbox folder.
	NoFolderLabel = "Drop Mailbox Folder"

	// ClockLayout renders a deadline in clock view.
	ClockLayout = "15:04"

	// SubjectWidth is the maximum subject width in the ticket table.
	SubjectWidth = 48
)

// Timing constants
const (
	// ClockSpec fires at second zero of every minute.
	ClockSpec = "0 * * * * *"

	// ConfigReloadDebounce collapses bursts of writes to the config file.
	ConfigReloadDebounce = 250 * time.Millisecond

	// ScrapeDebounce collapses bursts of DOM mutations into one scrape.
	ScrapeDebounce = 500 * time.Millisecond

	// PageTimeout bounds navigation and selector waits in the browser.
	PageTimeout = 30 * time.Second
)

// Help Scout paths, relative to the mailbox host.
const (
	LoginPath        = "/members/login"
	DashboardPath    = "/dashboard/"
	MailboxPath      = "/mailbox"
	ConversationPath = "/conversation/"
)

// Mailbox page selectors
const (
	// MailboxSelector is the element whose mutations trigger a re-scrape.
	MailboxSelector = "#mainCol"

	// EmptyFolderSelector holds the message shown for an empty folder.
	EmptyFolderSelector = "#mainCol .empty-folder"

	// OfflineSelector matches the offline banner once it is showing.
	OfflineSelector = ".offline-ui.offline-ui-down"

	// TitleSeparator splits the folder name off the page title.
	TitleSeparator = " - "
)

// Update check
const (
	// ReleaseOwner and ReleaseRepo locate the GitHub releases feed.
	ReleaseOwner = "spiffcs"
	ReleaseRepo  = "slaclock"

	// ReleaseCacheTTL is how long a release lookup is reused.
	ReleaseCacheTTL = 24 * time.Hour
)

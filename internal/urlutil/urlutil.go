// Package urlutil provides URL helpers for the mailbox host.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spiffcs/slaclock/internal/constants"
)

// Origin returns scheme://host of rawURL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing scheme or host", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// ConversationURL builds the deep link for a ticket on the host of mailboxURL.
// Example: https://secure.helpscout.net/conversation/123
func ConversationURL(mailboxURL string, id int64) (string, error) {
	origin, err := Origin(mailboxURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%d", origin, constants.ConversationPath, id), nil
}

// IsLoginURL reports whether pageURL is the sign-in page of the host.
func IsLoginURL(pageURL string) bool {
	return hasPathPrefix(pageURL, constants.LoginPath)
}

// IsDashboardURL reports whether pageURL is the dashboard rather than a
// mailbox folder. The bare host root counts as the dashboard.
func IsDashboardURL(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	if u.Path == "" || u.Path == "/" {
		return true
	}
	return strings.HasPrefix(u.Path, constants.DashboardPath)
}

// IsMailboxURL reports whether pageURL points into a mailbox folder.
func IsMailboxURL(pageURL string) bool {
	return hasPathPrefix(pageURL, constants.MailboxPath)
}

func hasPathPrefix(pageURL, prefix string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, prefix)
}

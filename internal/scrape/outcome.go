// Package scrape supplies raw ticket batches from the mailbox page or from a
// JSON dump.
package scrape

import (
	"context"
	"errors"

	"github.com/spiffcs/slaclock/internal/model"
)

// ErrOffline is reported when the mailbox page shows its offline banner.
var ErrOffline = errors.New("mailbox is offline")

// Outcome is the result of one scrape. It is one of Batch, EmptyMailbox,
// LoginRequired, NoFolder or Failure.
type Outcome interface {
	isOutcome()
}

// Batch is a set of ticket records read from the mailbox folder.
type Batch struct {
	Records []model.RawTicketRecord
	// Errors holds records that could not be decoded.
	Errors []error
	// Title is the folder name shown as the menu header.
	Title string
}

// EmptyMailbox is the folder's "nothing to do" message.
type EmptyMailbox struct {
	Title string
	Body  string
	URL   string
}

// LoginRequired means the page redirected to the sign-in form.
type LoginRequired struct {
	URL string
}

// NoFolder means the page is the dashboard rather than a mailbox folder.
type NoFolder struct {
	URL string
}

// Failure means the page could not be loaded or read.
type Failure struct {
	Err error
}

func (Batch) isOutcome()         {}
func (EmptyMailbox) isOutcome()  {}
func (LoginRequired) isOutcome() {}
func (NoFolder) isOutcome()      {}
func (Failure) isOutcome()       {}

// Source produces outcomes.
type Source interface {
	// Scrape reads the current state once.
	Scrape(ctx context.Context) (Outcome, error)
	// Watch sends an outcome for the initial state and again after every
	// change until ctx is done.
	Watch(ctx context.Context, out chan<- Outcome) error
	// Refresh asks a running Watch to read the state again.
	Refresh()
}

var (
	_ Source = (*Browser)(nil)
	_ Source = (*File)(nil)
)

// send delivers o unless ctx is done first.
func send(ctx context.Context, out chan<- Outcome, o Outcome) bool {
	select {
	case out <- o:
		return true
	case <-ctx.Done():
		return false
	}
}

package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/spiffcs/slaclock/internal/constants"
	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/model"
	"github.com/spiffcs/slaclock/internal/urlutil"
)

// notifyBinding is the page function the mutation observer calls.
const notifyBinding = "slaclockNotify"

// observerScript runs in every document and reports mailbox mutations.
var observerScript = fmt.Sprintf(`window.addEventListener('load', () => {
  const mailbox = document.querySelector(%q);
  if (!mailbox || typeof window.%[2]s !== 'function') {
    return;
  }
  new MutationObserver(() => window.%[2]s()).observe(mailbox, {
    subtree: true,
    childList: true,
    characterData: true
  });
});`, constants.MailboxSelector, notifyBinding)

// stateScript reads the in-page application state.
var stateScript = fmt.Sprintf(`() => {
  if (document.querySelector(%q)) {
    return {kind: 'offline'};
  }
  if (!window.App && window.appData) {
    return {kind: 'reload'};
  }
  const convos = window.App && window.App.convos;
  if (!convos) {
    return {kind: 'loading'};
  }
  if (convos.pager && convos.pager.hasNext) {
    return {kind: 'redirect', url: convos.pager.baseURL + '1/' + convos.pager.total + '/'};
  }
  return {kind: 'tickets', models: JSON.stringify(convos.models || []), title: document.title};
}`, constants.OfflineSelector)

// BrowserOptions configures the mailbox browser.
type BrowserOptions struct {
	FolderURL  string
	ProfileDir string
	Headless   bool
	Timeout    time.Duration
}

// DefaultProfileDir keeps the browser profile, and with it the login
// session, under the user cache directory.
func DefaultProfileDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".slaclock", "browser")
	}
	return filepath.Join(dir, "slaclock", "browser")
}

// Browser scrapes the mailbox folder with a persistent Chromium profile.
type Browser struct {
	opts BrowserOptions

	mu      sync.Mutex
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page

	changes chan struct{}
	refresh chan struct{}
}

// NewBrowser returns a browser source. Nothing is launched until the first
// Scrape or Watch.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.ProfileDir == "" {
		opts.ProfileDir = DefaultProfileDir()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.PageTimeout
	}
	return &Browser{
		opts:    opts,
		changes: make(chan struct{}, 1),
		refresh: make(chan struct{}, 1),
	}
}

// start launches playwright and opens the folder page.
func (b *Browser) start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page != nil {
		return nil
	}

	if os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}

	if err := os.MkdirAll(b.opts.ProfileDir, 0700); err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to create browser profile %s: %w", b.opts.ProfileDir, err)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(b.opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(b.opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("could not launch browser: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return fmt.Errorf("could not create page: %w", err)
	}
	page.SetDefaultTimeout(float64(b.opts.Timeout.Milliseconds()))

	if err := page.ExposeFunction(notifyBinding, func(args ...interface{}) interface{} {
		b.notify()
		return nil
	}); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return fmt.Errorf("could not expose %s: %w", notifyBinding, err)
	}
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(observerScript)}); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return fmt.Errorf("could not install mailbox observer: %w", err)
	}
	page.OnLoad(func(playwright.Page) { b.notify() })

	b.pw, b.context, b.page = pw, bctx, page
	log.Debug("browser started", "profile", b.opts.ProfileDir, "headless", b.opts.Headless)
	return nil
}

// notify records that the page changed. Repeated signals collapse into one.
func (b *Browser) notify() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Refresh asks a running Watch to load the folder again.
func (b *Browser) Refresh() {
	select {
	case b.refresh <- struct{}{}:
	default:
	}
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pw == nil {
		return nil
	}
	var errs []error
	if err := b.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	b.pw, b.context, b.page = nil, nil, nil
	return errors.Join(errs...)
}

// navigate opens the folder URL. Load failures are returned as a Failure.
func (b *Browser) navigate() Outcome {
	log.Debug("opening mailbox folder", "url", b.opts.FolderURL)
	if _, err := b.page.Goto(b.opts.FolderURL); err != nil {
		return Failure{Err: fmt.Errorf("failed to load %s: %w", b.opts.FolderURL, err)}
	}
	return nil
}

// Scrape opens the folder and reads it once, following reloads and pager
// redirects.
func (b *Browser) Scrape(ctx context.Context) (Outcome, error) {
	if err := b.start(); err != nil {
		return nil, err
	}
	if o := b.navigate(); o != nil {
		return o, nil
	}

	const attempts = 5
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if o := b.inspect(); o != nil {
			return o, nil
		}
		if err := b.page.WaitForLoadState(); err != nil {
			return Failure{Err: err}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.changes:
		case <-time.After(constants.ScrapeDebounce):
		}
	}
	return Failure{Err: fmt.Errorf("mailbox did not settle after %d attempts", attempts)}, nil
}

// Watch opens the folder and sends an outcome after every page load and
// every mailbox mutation, debounced.
func (b *Browser) Watch(ctx context.Context, out chan<- Outcome) error {
	if err := b.start(); err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("failed to close browser", "error", err)
		}
	}()

	if o := b.navigate(); o != nil {
		if !send(ctx, out, o) {
			return nil
		}
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.changes:
			fire = time.After(constants.ScrapeDebounce)
		case <-b.refresh:
			if o := b.navigate(); o != nil {
				if !send(ctx, out, o) {
					return nil
				}
			}
		case <-fire:
			fire = nil
			if o := b.inspect(); o != nil {
				if !send(ctx, out, o) {
					return nil
				}
			}
		}
	}
}

// inspect classifies the current page. A nil outcome means the page is
// moving on (reload or redirect) and another load event will follow.
func (b *Browser) inspect() Outcome {
	pageURL := b.page.URL()
	if o := classify(pageURL); o != nil {
		if _, ok := o.(LoginRequired); ok && b.opts.Headless {
			log.Warn("mailbox requires a login; run with --headless=false to sign in", "url", pageURL)
		}
		return o
	}
	if !urlutil.IsMailboxURL(pageURL) {
		log.Debug("page is outside the mailbox folders", "url", pageURL)
	}

	raw, err := b.page.Evaluate(stateScript)
	if err != nil {
		return Failure{Err: fmt.Errorf("failed to read mailbox state: %w", err)}
	}
	state, err := parseState(raw)
	if err != nil {
		return Failure{Err: err}
	}
	log.Trace("mailbox state", "kind", state.Kind, "url", pageURL)

	switch state.Kind {
	case "offline":
		return Failure{Err: ErrOffline}
	case "reload":
		if _, err := b.page.Reload(); err != nil {
			return Failure{Err: err}
		}
		return nil
	case "redirect":
		log.Debug("loading all conversations on one page", "url", state.URL)
		if _, err := b.page.Goto(state.URL); err != nil {
			return Failure{Err: err}
		}
		return nil
	case "loading":
		return nil
	}

	batch, err := state.batch()
	if err != nil {
		return Failure{Err: err}
	}
	if len(batch.Records) == 0 && len(batch.Errors) == 0 {
		return b.emptyMailbox()
	}
	return batch
}

// emptyMailbox reads the folder's empty-state message.
func (b *Browser) emptyMailbox() Outcome {
	content := b.page.Locator(constants.EmptyFolderSelector).First()
	if err := content.WaitFor(); err != nil {
		log.Warn("could not find empty folder content", "selector", constants.EmptyFolderSelector, "error", err)
		return EmptyMailbox{}
	}

	title, _ := content.Locator("h4").First().TextContent()
	body, _ := content.Locator("p").First().TextContent()

	var href string
	link := content.Locator("p > a").First()
	if n, err := link.Count(); err == nil && n > 0 {
		href, _ = link.GetAttribute("href")
	}

	return EmptyMailbox{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
		URL:   href,
	}
}

// classify recognises the login and dashboard pages by URL alone.
func classify(pageURL string) Outcome {
	switch {
	case urlutil.IsLoginURL(pageURL):
		return LoginRequired{URL: pageURL}
	case urlutil.IsDashboardURL(pageURL):
		return NoFolder{URL: pageURL}
	}
	return nil
}

// pageState is the decoded result of stateScript.
type pageState struct {
	Kind   string
	URL    string
	Models string
	Title  string
}

func parseState(raw interface{}) (pageState, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return pageState{}, fmt.Errorf("unexpected mailbox state %T", raw)
	}
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	s := pageState{
		Kind:   str("kind"),
		URL:    str("url"),
		Models: str("models"),
		Title:  str("title"),
	}
	switch s.Kind {
	case "offline", "reload", "loading", "tickets":
	case "redirect":
		if s.URL == "" {
			return pageState{}, errors.New("pager redirect without a URL")
		}
	default:
		return pageState{}, fmt.Errorf("unknown mailbox state %q", s.Kind)
	}
	return s, nil
}

func (s pageState) batch() (Batch, error) {
	records, recordErrs, err := model.DecodeRecords([]byte(s.Models))
	if err != nil {
		return Batch{}, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return Batch{Records: records, Errors: recordErrs, Title: folderTitle(s.Title)}, nil
}

// folderTitle keeps the folder name from a "Folder - Mailbox - Help Scout"
// page title.
func folderTitle(pageTitle string) string {
	name, _, _ := strings.Cut(pageTitle, constants.TitleSeparator)
	return strings.TrimSpace(name)
}

package cmd

import (
	"github.com/spiffcs/slaclock/config"
	"github.com/spiffcs/slaclock/internal/log"
	"github.com/spiffcs/slaclock/internal/scrape"
	"github.com/spiffcs/slaclock/internal/urlutil"
)

// mailboxURL returns the folder to watch, preferring --folder.
func mailboxURL(cfg *config.Config, opts *Options) string {
	if opts.FolderURL != "" {
		return opts.FolderURL
	}
	return cfg.GetMailboxFolderURL()
}

// newSource picks the record source: a JSON dump when --input is given,
// otherwise the browser. The returned closer releases a browser that was
// only used for Scrape.
func newSource(cfg *config.Config, opts *Options) (scrape.Source, func()) {
	if opts.Input != "" {
		log.Debug("reading tickets from file", "path", opts.Input)
		return scrape.NewFile(opts.Input), func() {}
	}

	headless := cfg.IsHeadless()
	if opts.Headless != nil {
		headless = *opts.Headless
	}

	folder := mailboxURL(cfg, opts)
	if folder != config.DefaultMailboxFolderURL && !urlutil.IsMailboxURL(folder) {
		log.Warn("folder URL does not point at a mailbox folder; set mailbox_folder_url or --folder", "url", folder)
	}

	b := scrape.NewBrowser(scrape.BrowserOptions{
		FolderURL: folder,
		Headless:  headless,
	})
	return b, func() {
		if err := b.Close(); err != nil {
			log.Warn("failed to close browser", "error", err)
		}
	}
}

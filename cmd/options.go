package cmd

// Options holds the shared command-line options for the slaclock CLI.
type Options struct {
	Format    string
	Input     string // Read records from a JSON dump instead of the browser
	FolderURL string // Overrides mailbox_folder_url
	Limit     int
	Verbosity int
	Headless  *bool // nil = use config
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithInput reads tickets from a JSON file instead of the browser.
func WithInput(path string) Option {
	return func(o *Options) {
		o.Input = path
	}
}

// WithFolderURL overrides the configured mailbox folder.
func WithFolderURL(u string) Option {
	return func(o *Options) {
		o.FolderURL = u
	}
}

// WithLimit sets the maximum number of results.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

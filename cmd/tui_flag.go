package cmd

import (
	"fmt"

	"github.com/spiffcs/slaclock/internal/tui"
)

// triStateFlag implements pflag.Value for a bool that may be left unset,
// such as --tui (auto-detect) and --headless (use config).
type triStateFlag struct {
	target **bool
}

// newTriStateFlag creates a flag writing to target.
func newTriStateFlag(target **bool) *triStateFlag {
	return &triStateFlag{target: target}
}

func (f *triStateFlag) String() string {
	if *f.target == nil {
		return "auto"
	}
	if **f.target {
		return "true"
	}
	return "false"
}

func (f *triStateFlag) Set(s string) error {
	switch s {
	case "true", "1", "yes":
		v := true
		*f.target = &v
	case "false", "0", "no":
		v := false
		*f.target = &v
	case "auto":
		*f.target = nil
	default:
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	return nil
}

func (f *triStateFlag) Type() string {
	return "bool"
}

func (f *triStateFlag) IsBoolFlag() bool {
	return true
}

// shouldUseTUI determines whether to use TUI based on options.
func shouldUseTUI(opts *Options) bool {
	// Disable TUI when verbose logging is requested so logs are visible
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}

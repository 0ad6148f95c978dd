package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// key describes one dotted configuration key.
type key struct {
	get func(c *Config) string
	set func(c *Config, value string) error
	// toggle is set for boolean keys.
	toggle func(c *Config)
}

func boolKey(field func(c *Config) **bool, def bool) key {
	return key{
		get: func(c *Config) string {
			return strconv.FormatBool(boolOr(*field(c), def))
		},
		set: func(c *Config, value string) error {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean %q", value)
			}
			*field(c) = &b
			return nil
		},
		toggle: func(c *Config) {
			b := !boolOr(*field(c), def)
			*field(c) = &b
		},
	}
}

// clockKey addresses the hours or minutes of one SLA pair.
func clockKey(pick func(s *SLAOverrides) **ClockOverride, resolve func(c *Config) int, minutes bool) key {
	return key{
		get: func(c *Config) string {
			return strconv.Itoa(resolve(c))
		},
		set: func(c *Config, value string) error {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid number %q", value)
			}
			if c.SLA == nil {
				c.SLA = &SLAOverrides{}
			}
			slot := pick(c.SLA)
			if *slot == nil {
				*slot = &ClockOverride{}
			}
			if minutes {
				(*slot).Minutes = &n
			} else {
				(*slot).Hours = &n
			}
			return nil
		},
	}
}

var keys = map[string]key{
	"mailboxFolderUrl": {
		get: func(c *Config) string { return c.GetMailboxFolderURL() },
		set: func(c *Config, value string) error {
			u, err := url.Parse(value)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid URL %q", value)
			}
			c.MailboxFolderURL = value
			return nil
		},
	},
	"format": {
		get: func(c *Config) string { return c.GetDefaultFormat() },
		set: func(c *Config, value string) error {
			switch value {
			case "table", "json", "markdown":
			default:
				return fmt.Errorf("invalid format: %s (must be table, json or markdown)", value)
			}
			c.DefaultFormat = value
			return nil
		},
	},
	"priorityTag": {
		get: func(c *Config) string { return c.GetPriorityTag() },
		set: func(c *Config, value string) error {
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("priority tag must not be empty")
			}
			c.PriorityTag = value
			return nil
		},
	},
	"timerView":     boolKey(func(c *Config) **bool { return &c.TimerView }, true),
	"hideClock":     boolKey(func(c *Config) **bool { return &c.HideClock }, false),
	"filterPending": boolKey(func(c *Config) **bool { return &c.FilterPending }, false),
	"headless":      boolKey(func(c *Config) **bool { return &c.Headless }, false),

	"slaStart.hours":      clockKey(func(s *SLAOverrides) **ClockOverride { return &s.Start }, func(c *Config) int { return c.slaStart().Hours }, false),
	"slaStart.minutes":    clockKey(func(s *SLAOverrides) **ClockOverride { return &s.Start }, func(c *Config) int { return c.slaStart().Minutes }, true),
	"slaEnd.hours":        clockKey(func(s *SLAOverrides) **ClockOverride { return &s.End }, func(c *Config) int { return c.slaEnd().Hours }, false),
	"slaEnd.minutes":      clockKey(func(s *SLAOverrides) **ClockOverride { return &s.End }, func(c *Config) int { return c.slaEnd().Minutes }, true),
	"slaGeneral.hours":    clockKey(func(s *SLAOverrides) **ClockOverride { return &s.General }, func(c *Config) int { return c.slaGeneral().Hours }, false),
	"slaGeneral.minutes":  clockKey(func(s *SLAOverrides) **ClockOverride { return &s.General }, func(c *Config) int { return c.slaGeneral().Minutes }, true),
	"slaPriority.hours":   clockKey(func(s *SLAOverrides) **ClockOverride { return &s.Priority }, func(c *Config) int { return c.slaPriority().Hours }, false),
	"slaPriority.minutes": clockKey(func(s *SLAOverrides) **ClockOverride { return &s.Priority }, func(c *Config) int { return c.slaPriority().Minutes }, true),
}

// Keys returns every addressable key, sorted.
func Keys() []string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (key, error) {
	k, ok := keys[name]
	if !ok {
		return key{}, fmt.Errorf("unknown config key: %s", name)
	}
	return k, nil
}

// Get returns the effective value of a dotted key such as "slaStart.hours".
func (c *Config) Get(name string) (string, error) {
	k, err := lookup(name)
	if err != nil {
		return "", err
	}
	return k.get(c), nil
}

// Set parses value and stores it under the dotted key.
func (c *Config) Set(name, value string) error {
	k, err := lookup(name)
	if err != nil {
		return err
	}
	if err := k.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Toggle flips a boolean key.
func (c *Config) Toggle(name string) error {
	k, err := lookup(name)
	if err != nil {
		return err
	}
	if k.toggle == nil {
		return fmt.Errorf("%s is not a boolean key", name)
	}
	k.toggle(c)
	return nil
}

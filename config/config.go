package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spiffcs/slaclock/internal/sla"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// Unset fields fall back to the defaults in DefaultConfig.
type Config struct {
	MailboxFolderURL string `yaml:"mailbox_folder_url,omitempty" json:"mailboxFolderUrl,omitempty"`
	DefaultFormat    string `yaml:"default_format,omitempty" json:"defaultFormat,omitempty"`
	TimerView        *bool  `yaml:"timer_view,omitempty" json:"timerView,omitempty"`
	HideClock        *bool  `yaml:"hide_clock,omitempty" json:"hideClock,omitempty"`
	FilterPending    *bool  `yaml:"filter_pending,omitempty" json:"filterPending,omitempty"`
	Headless         *bool  `yaml:"headless,omitempty" json:"headless,omitempty"`
	PriorityTag      string `yaml:"priority_tag,omitempty" json:"priorityTag,omitempty"`

	SLA *SLAOverrides `yaml:"sla,omitempty" json:"sla,omitempty"`
}

// SLAOverrides holds the business window and the SLA allowances.
type SLAOverrides struct {
	Start    *ClockOverride `yaml:"start,omitempty" json:"start,omitempty"`
	End      *ClockOverride `yaml:"end,omitempty" json:"end,omitempty"`
	General  *ClockOverride `yaml:"general,omitempty" json:"general,omitempty"`
	Priority *ClockOverride `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// ClockOverride is an hours/minutes pair, used both for times of day and
// for durations.
type ClockOverride struct {
	Hours   *int `yaml:"hours,omitempty" json:"hours,omitempty"`
	Minutes *int `yaml:"minutes,omitempty" json:"minutes,omitempty"`
}

// Defaults.
const (
	DefaultMailboxFolderURL = "https://secure.helpscout.net/"
	DefaultFormat           = "table"
	DefaultPriorityTag      = "priority-support"
)

var (
	defaultStart    = sla.TimeOfDay{Hours: 9}
	defaultEnd      = sla.TimeOfDay{Hours: 17}
	defaultGeneral  = sla.TimeOfDay{Hours: 3}
	defaultPriority = sla.TimeOfDay{Hours: 1}
)

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".slaclock"
	}
	return filepath.Join(configDir, "slaclock")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".slaclock.yaml"
}

// Load loads the configuration from disk.
// It loads the global config first, then merges any local .slaclock.yaml
// on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the global and local config files at the given
// paths. Missing files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}

	return mergeConfig(global, local), nil
}

// readFile reads one config file. A missing file yields an empty Config.
func readFile(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	return &Config{
		MailboxFolderURL: firstString(local.MailboxFolderURL, global.MailboxFolderURL),
		DefaultFormat:    firstString(local.DefaultFormat, global.DefaultFormat),
		TimerView:        firstPtr(local.TimerView, global.TimerView),
		HideClock:        firstPtr(local.HideClock, global.HideClock),
		FilterPending:    firstPtr(local.FilterPending, global.FilterPending),
		Headless:         firstPtr(local.Headless, global.Headless),
		PriorityTag:      firstString(local.PriorityTag, global.PriorityTag),
		SLA:              mergeSLA(global.SLA, local.SLA),
	}
}

func mergeSLA(global, local *SLAOverrides) *SLAOverrides {
	if global == nil && local == nil {
		return nil
	}
	if global == nil {
		global = &SLAOverrides{}
	}
	if local == nil {
		local = &SLAOverrides{}
	}
	return &SLAOverrides{
		Start:    mergeClock(global.Start, local.Start),
		End:      mergeClock(global.End, local.End),
		General:  mergeClock(global.General, local.General),
		Priority: mergeClock(global.Priority, local.Priority),
	}
}

func mergeClock(global, local *ClockOverride) *ClockOverride {
	if global == nil && local == nil {
		return nil
	}
	if global == nil {
		global = &ClockOverride{}
	}
	if local == nil {
		local = &ClockOverride{}
	}
	return &ClockOverride{
		Hours:   firstPtr(local.Hours, global.Hours),
		Minutes: firstPtr(local.Minutes, global.Minutes),
	}
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPtr[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// GetMailboxFolderURL returns the mailbox folder the browser watches.
func (c *Config) GetMailboxFolderURL() string {
	return firstString(c.MailboxFolderURL, DefaultMailboxFolderURL)
}

// GetDefaultFormat returns the output format for the list command.
func (c *Config) GetDefaultFormat() string {
	return firstString(c.DefaultFormat, DefaultFormat)
}

// IsTimerView reports whether the countdown is shown instead of the clock.
func (c *Config) IsTimerView() bool {
	return boolOr(c.TimerView, true)
}

// IsHideClock reports whether the title is suppressed entirely.
func (c *Config) IsHideClock() bool {
	return boolOr(c.HideClock, false)
}

// IsFilterPending reports whether pending tickets are left out of ranking.
func (c *Config) IsFilterPending() bool {
	return boolOr(c.FilterPending, false)
}

// IsHeadless reports whether the browser runs without a window.
func (c *Config) IsHeadless() bool {
	return boolOr(c.Headless, false)
}

// GetPriorityTag returns the tag that selects the priority SLA.
func (c *Config) GetPriorityTag() string {
	return firstString(c.PriorityTag, DefaultPriorityTag)
}

// slaClock resolves one hours/minutes pair against its default.
func (c *Config) slaClock(pick func(*SLAOverrides) *ClockOverride, def sla.TimeOfDay) sla.TimeOfDay {
	if c.SLA == nil {
		return def
	}
	o := pick(c.SLA)
	if o == nil {
		return def
	}
	out := def
	if o.Hours != nil {
		out.Hours = *o.Hours
	}
	if o.Minutes != nil {
		out.Minutes = *o.Minutes
	}
	return out
}

func (c *Config) slaStart() sla.TimeOfDay {
	return c.slaClock(func(s *SLAOverrides) *ClockOverride { return s.Start }, defaultStart)
}

func (c *Config) slaEnd() sla.TimeOfDay {
	return c.slaClock(func(s *SLAOverrides) *ClockOverride { return s.End }, defaultEnd)
}

func (c *Config) slaGeneral() sla.TimeOfDay {
	return c.slaClock(func(s *SLAOverrides) *ClockOverride { return s.General }, defaultGeneral)
}

func (c *Config) slaPriority() sla.TimeOfDay {
	return c.slaClock(func(s *SLAOverrides) *ClockOverride { return s.Priority }, defaultPriority)
}

func toDuration(c sla.TimeOfDay) time.Duration {
	return time.Duration(c.Hours)*time.Hour + time.Duration(c.Minutes)*time.Minute
}

// SLAConfiguration returns a validated snapshot of the SLA settings.
// Invalid values are reported as *sla.ConfigurationError.
func (c *Config) SLAConfiguration() (sla.Configuration, error) {
	general, priority := c.slaGeneral(), c.slaPriority()
	for key, d := range map[string]sla.TimeOfDay{"slaGeneral": general, "slaPriority": priority} {
		if d.Hours < 0 || d.Minutes < 0 {
			return sla.Configuration{}, &sla.ConfigurationError{Key: key, Reason: "duration must not be negative"}
		}
	}

	snapshot := sla.Configuration{
		StartOfDay:       c.slaStart(),
		EndOfDay:         c.slaEnd(),
		GeneralDuration:  toDuration(general),
		PriorityDuration: toDuration(priority),
		FilterPending:    c.IsFilterPending(),
		PriorityTag:      c.GetPriorityTag(),
	}
	if err := snapshot.Validate(); err != nil {
		return sla.Configuration{}, err
	}
	return snapshot, nil
}

// Save writes the configuration to the global config file.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration as YAML to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return WriteFile(path, data)
}

// UpdateGlobal applies fn to the global config file alone, so local
// overrides are never copied into it, and saves the result.
func UpdateGlobal(fn func(*Config) error) error {
	return UpdateFile(ConfigPath(), fn)
}

// UpdateFile applies fn to the config file at path and saves it.
func UpdateFile(path string, fn func(*Config) error) error {
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return cfg.SaveTo(path)
}

// DefaultConfig returns a config with every value set to its default.
func DefaultConfig() *Config {
	timerView, hideClock, filterPending, headless := true, false, false, false
	clock := func(t sla.TimeOfDay) *ClockOverride {
		h, m := t.Hours, t.Minutes
		return &ClockOverride{Hours: &h, Minutes: &m}
	}

	return &Config{
		MailboxFolderURL: DefaultMailboxFolderURL,
		DefaultFormat:    DefaultFormat,
		TimerView:        &timerView,
		HideClock:        &hideClock,
		FilterPending:    &filterPending,
		Headless:         &headless,
		PriorityTag:      DefaultPriorityTag,
		SLA: &SLAOverrides{
			Start:    clock(defaultStart),
			End:      clock(defaultEnd),
			General:  clock(defaultGeneral),
			Priority: clock(defaultPriority),
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo describes where config files live and which exist.
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns information about config file locations
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a commented starter config.
func MinimalConfig() string {
	return `# slaclock configuration file
# See: slaclock config defaults  (for all available options)

# Mailbox folder to watch
mailbox_folder_url: https://secure.helpscout.net/

# Show a countdown (true) or the deadline as a clock time (false)
timer_view: true

# Leave pending conversations out of the ranking
filter_pending: false

# Business window and SLA allowances
# sla:
#   start: {hours: 9, minutes: 0}
#   end: {hours: 17, minutes: 0}
#   general: {hours: 3, minutes: 0}
#   priority: {hours: 1, minutes: 0}
`
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

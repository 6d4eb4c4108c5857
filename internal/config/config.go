package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultThreads    = 6
	DefaultDelay      = 1.0
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = 3 * time.Second
	// DefaultMaxRetries < 0 retries transient failures until they succeed.
	DefaultMaxRetries = -1
)

type Config struct {
	Output  string `yaml:"output"`
	Scraper string `yaml:"scraper"`
	Adapter string `yaml:"adapter"`

	Threads     int     `yaml:"threads"`
	Delay       float64 `yaml:"delay"`
	MaxChapters int     `yaml:"max_chapters"`
	Range       string  `yaml:"range"`
	List        string  `yaml:"list"`

	Timeout    time.Duration `yaml:"timeout"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	MaxRetries int           `yaml:"max_retries"`
	UserAgent  string        `yaml:"user_agent"`
	Cookie     string        `yaml:"cookie"`
	CookieFile string        `yaml:"cookie_file"`
	Cloudflare bool          `yaml:"cloudflare"`

	IncludeMetadata bool   `yaml:"include_metadata"`
	AudioExtension  string `yaml:"audio_extension"`
	TagAudio        bool   `yaml:"tag_audio"`

	Debug bool `yaml:"debug"`
}

// Options carries command-line overrides. Zero values leave the profile
// untouched; the pointer fields exist for settings where zero is a valid
// choice.
type Options struct {
	IgnoreConfig bool
	Debug        bool

	Output      string
	Scraper     string
	Adapter     string
	Threads     int
	Delay       *float64
	MaxChapters int
	Range       string
	List        string

	Timeout    time.Duration
	RetryDelay time.Duration
	MaxRetries *int
	UserAgent  string
	Cookie     string
	CookieFile string
	Cloudflare bool

	NoMetadata     bool
	AudioExtension string
	TagAudio       bool
}

func DefaultConfig() *Config {
	return &Config{
		Threads:         DefaultThreads,
		Delay:           DefaultDelay,
		Timeout:         DefaultTimeout,
		RetryDelay:      DefaultRetryDelay,
		MaxRetries:      DefaultMaxRetries,
		IncludeMetadata: true,
	}
}

// DelayDuration converts the delay in seconds to a time.Duration.
func (c *Config) DelayDuration() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadYAML reads a profile on top of DefaultConfig, so keys missing from the
// file keep their defaults.
func LoadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the active profile from the default store and applies
// opts over it. The returned string describes where the settings came from.
func LoadMerged(opts Options) (*Config, string, error) {
	return NewStore(Root()).LoadMerged(opts)
}

func (s *Store) LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := s.ActivePath()
	if err == ErrNoConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := LoadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Scraper != "" {
		c.Scraper = o.Scraper
	}
	if o.Adapter != "" {
		c.Adapter = o.Adapter
	}
	if o.Threads != 0 {
		c.Threads = o.Threads
	}
	if o.Delay != nil {
		c.Delay = *o.Delay
	}
	if o.MaxChapters != 0 {
		c.MaxChapters = o.MaxChapters
	}
	if o.Range != "" {
		c.Range = o.Range
	}
	if o.List != "" {
		c.List = o.List
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.RetryDelay != 0 {
		c.RetryDelay = o.RetryDelay
	}
	if o.MaxRetries != nil {
		c.MaxRetries = *o.MaxRetries
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.Cloudflare {
		c.Cloudflare = true
	}
	if o.NoMetadata {
		c.IncludeMetadata = false
	}
	if o.AudioExtension != "" {
		c.AudioExtension = o.AudioExtension
	}
	if o.TagAudio {
		c.TagAudio = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Threads <= 0 {
		c.Threads = DefaultThreads
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

func (c *Config) Print(w io.Writer) {
	if c.Output != "" {
		fmt.Fprintf(w, " -output: %s\n", c.Output)
	}
	if c.Scraper != "" {
		fmt.Fprintf(w, " -scraper: %s\n", c.Scraper)
	}
	if c.Adapter != "" {
		fmt.Fprintf(w, " -adapter: %s\n", c.Adapter)
	}
	fmt.Fprintf(w, " -threads: %d\n", c.Threads)
	fmt.Fprintf(w, " -delay: %gs\n", c.Delay)
	if c.MaxChapters > 0 {
		fmt.Fprintf(w, " -max_chapters: %d\n", c.MaxChapters)
	}
	if c.Range != "" {
		fmt.Fprintf(w, " -range: %s\n", c.Range)
	}
	if c.List != "" {
		fmt.Fprintf(w, " -list: %s\n", c.List)
	}
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	fmt.Fprintf(w, " -retry_delay: %s\n", c.RetryDelay)
	if c.MaxRetries < 0 {
		fmt.Fprintln(w, " -max_retries: unlimited")
	} else {
		fmt.Fprintf(w, " -max_retries: %d\n", c.MaxRetries)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.Cloudflare {
		fmt.Fprintf(w, " -cloudflare: %t\n", c.Cloudflare)
	}
	fmt.Fprintf(w, " -include_metadata: %t\n", c.IncludeMetadata)
	if c.AudioExtension != "" {
		fmt.Fprintf(w, " -audio_extension: %s\n", c.AudioExtension)
	}
	if c.TagAudio {
		fmt.Fprintf(w, " -tag_audio: %t\n", c.TagAudio)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
}

package config

import "time"

// Config represents the botpack-sync configuration file.
type Config struct {
	Version        int           `yaml:"version"`
	ContentDir     string        `yaml:"content_dir,omitempty"`
	StateFile      string        `yaml:"state_file,omitempty"`
	CacheDir       string        `yaml:"cache_dir,omitempty"`
	APIBaseURL     string        `yaml:"api_base_url,omitempty"`
	WebBaseURL     string        `yaml:"web_base_url,omitempty"`
	UserAgent      string        `yaml:"user_agent,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	Botpack        Pack          `yaml:"botpack"`
	Mappack        Pack          `yaml:"mappack"`
	Tuning         Tuning        `yaml:"tuning"`
	OnlineCheck    OnlineCheck   `yaml:"online_check"`
}

// Pack locates one content pack repository and its local folder.
type Pack struct {
	Owner  string `yaml:"owner,omitempty"`
	Name   string `yaml:"name,omitempty"`
	Branch string `yaml:"branch,omitempty"`
	// Folder is relative to ContentDir unless absolute.
	Folder string `yaml:"folder,omitempty"`
}

// Tuning holds the sync engine's thresholds and progress calibration.
type Tuning struct {
	MaxPatchGap      uint32        `yaml:"max_patch_gap,omitempty"`
	SizeScale        int64         `yaml:"size_scale,omitempty"`
	CompressionRatio float64       `yaml:"compression_ratio,omitempty"`
	FallbackSize     int64         `yaml:"fallback_size,omitempty"`
	ProgressInterval time.Duration `yaml:"progress_interval,omitempty"`
	// PrefetchWindow of 0 downloads the whole patch chain at once.
	PrefetchWindow             int  `yaml:"prefetch_window,omitempty"`
	FullDownloadOnPatchFailure bool `yaml:"full_download_on_patch_failure,omitempty"`
}

// OnlineCheck configures the connectivity probe run before network commands.
type OnlineCheck struct {
	Enabled *bool         `yaml:"enabled,omitempty"`
	Addrs   []string      `yaml:"addrs,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// IsEnabled reports whether the probe should run. Unset means enabled.
func (o OnlineCheck) IsEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

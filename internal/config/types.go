// Package config is wdx-core's service configuration surface: a single
// config.yaml plus a directory of WDM/WDD documents, with an optional
// watcher that reapplies the device directory on change.
package config

import "time"

// ServiceConfig is wdx-core's top-level configuration (spec's DOMAIN STACK
// wiring note: "a small YAML service configuration ... plus an fsnotify-
// based directory watcher").
type ServiceConfig struct {
	// ModelPath is the WDM document describing the device model.
	ModelPath string `yaml:"modelPath"`
	// DeviceDir holds one WDD document per device, named <device-id>.json.
	DeviceDir string `yaml:"deviceDir"`
	// WatchDeviceDir enables the fsnotify-based reload of DeviceDir.
	WatchDeviceDir bool `yaml:"watchDeviceDir,omitempty"`

	// MetricsListenAddr, when non-empty, serves /metrics on this address.
	MetricsListenAddr string `yaml:"metricsListenAddr,omitempty"`

	Timeouts TimeoutConfig `yaml:"timeouts,omitempty"`
}

// TimeoutConfig holds sweep-interval settings for the monitoring-list,
// upload-id, and method-run managers (spec §4.6-§4.8). They are parsed from
// config.yaml but not passed on to the managers: each manager sweeps at its
// own built-in interval.
type TimeoutConfig struct {
	MonitoringListSweepInterval time.Duration `yaml:"monitoringListSweepInterval,omitempty"`
	UploadIDSweepInterval       time.Duration `yaml:"uploadIdSweepInterval,omitempty"`
	MethodRunSweepInterval      time.Duration `yaml:"methodRunSweepInterval,omitempty"`
}

// DefaultConfig returns the configuration used when no config.yaml is
// present, mirroring each manager's own built-in default sweep interval.
func DefaultConfig() ServiceConfig {
	return ServiceConfig{
		ModelPath:         "model.wdm.json",
		DeviceDir:         "devices",
		WatchDeviceDir:    true,
		MetricsListenAddr: ":9100",
		Timeouts: TimeoutConfig{
			MonitoringListSweepInterval: time.Second,
			UploadIDSweepInterval:       time.Second,
			MethodRunSweepInterval:      time.Second,
		},
	}
}

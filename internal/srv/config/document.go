package config

import (
	_ "embed"
)

//go:embed config_default.yaml
var DefaultFile []byte

// Document is the on-disk shape of config.yaml. All reads go through the
// Store accessors, which substitute defaults for missing or out-of-range
// values.
type Document struct {
	Display      DisplayParam                 `yaml:"display"`
	ActiveModule string                       `yaml:"active_module"`
	Rotation     []RotationEntry              `yaml:"rotation"`
	Modules      map[string]map[string]string `yaml:"modules"`
	Api          ApiParam                     `yaml:"api"`
}

type DisplayParam struct {
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	RefreshMinutes int    `yaml:"refresh_interval_minutes"`
	Timezone       string `yaml:"timezone"`
}

// RotationEntry is one step of the cycling schedule. Order is significant,
// duplicates are allowed.
type RotationEntry struct {
	Module          string `yaml:"module" json:"module"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	Port    int64  `yaml:"port"`
	ApiKey  string `yaml:"api_key"`
}

const (
	DefaultRefreshMinutes  = 30
	DefaultDurationMinutes = 5
	DefaultTimezone        = "Europe/Brussels"
	DefaultWidth           = 800
	DefaultHeight          = 480
	DefaultActiveModule    = "clock"
)

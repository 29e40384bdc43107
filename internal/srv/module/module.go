// Package module defines the content provider contract and the registry of
// available modules. Each provider turns settings into a bitmap and owns
// whatever internal state it needs (e.g. the photo cursor); no provider
// state ever lives in the scheduler or the renderer.
package module

import (
	"image"
)

// Settings are the persisted per-module values, string keyed and string
// valued the way the configuration form submits them.
type Settings map[string]string

func (s Settings) Clone() Settings {
	copied := make(Settings, len(s))
	for key, value := range s {
		copied[key] = value
	}
	return copied
}

// RenderContext carries the cross-cutting values the renderer injects next
// to the settings, instead of smuggling them through reserved settings
// keys.
type RenderContext struct {
	// Timezone is the display timezone, always set.
	Timezone string

	// HabitsSettings is a snapshot of the habits module's settings, set
	// only for the tasks module. A deliberately special-cased integration
	// point, not a generic mechanism.
	HabitsSettings Settings
}

type Provider interface {
	Name() string
	DisplayName() string
	Description() string

	// Render returns a bitmap of exactly width x height.
	Render(width, height int, settings Settings, rctx RenderContext) (image.Image, error)

	DefaultSettings() Settings
}

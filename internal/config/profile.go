package config

import (
	"fmt"
	"sort"
)

// Profile is a named set of frame settings, typically one per channel or
// camera. Unset fields leave the current value alone.
type Profile struct {
	Width     int     `yaml:"width,omitempty"`
	Height    int     `yaml:"height,omitempty"`
	Threshold *int    `yaml:"threshold,omitempty"`
	Gap       *int    `yaml:"gap,omitempty"`
	Mode      string  `yaml:"mode,omitempty"`
	Contrast  float64 `yaml:"contrast,omitempty"`
	Blur      float64 `yaml:"blur,omitempty"`

	AutoOrient *bool `yaml:"autoOrient,omitempty"`
	Invert     *bool `yaml:"invert,omitempty"`
}

// File represents the structure of the .meshpix configuration file.
type File struct {
	// Defaults apply to every run, before the selected profile.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles maps profile names to their settings.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile returns the named profile merged over the defaults.
// An empty name returns the defaults alone.
func (cf *File) Profile(name string) (Profile, error) {
	result := cf.Defaults
	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return result.merge(p), nil
}

// Names returns the profile names in sorted order.
func (cf *File) Names() []string {
	names := make([]string, 0, len(cf.Profiles))
	for name := range cf.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// merge returns p with every field set in o overriding it.
func (p Profile) merge(o Profile) Profile {
	if o.Width != 0 {
		p.Width = o.Width
	}
	if o.Height != 0 {
		p.Height = o.Height
	}
	if o.Threshold != nil {
		p.Threshold = o.Threshold
	}
	if o.Gap != nil {
		p.Gap = o.Gap
	}
	if o.Mode != "" {
		p.Mode = o.Mode
	}
	if o.Contrast != 0 {
		p.Contrast = o.Contrast
	}
	if o.Blur != 0 {
		p.Blur = o.Blur
	}
	if o.AutoOrient != nil {
		p.AutoOrient = o.AutoOrient
	}
	if o.Invert != nil {
		p.Invert = o.Invert
	}
	return p
}

// Flag names a profile field maps to. ApplyProfile skips fields whose flag
// the user set explicitly.
const (
	FlagWidth      = "width"
	FlagHeight     = "height"
	FlagThreshold  = "threshold"
	FlagGap        = "gap"
	FlagMode       = "mode"
	FlagContrast   = "contrast"
	FlagBlur       = "blur"
	FlagAutoOrient = "auto-orient"
	FlagInvert     = "invert"
)

// ApplyProfile copies the fields set in p into c, except those whose flag
// changed reports as explicitly set. A nil changed applies every field.
func (c *Config) ApplyProfile(p Profile, changed func(flag string) bool) {
	keep := func(flag string) bool {
		return changed != nil && changed(flag)
	}

	if p.Width != 0 && !keep(FlagWidth) {
		c.Width = p.Width
	}
	if p.Height != 0 && !keep(FlagHeight) {
		c.Height = p.Height
	}
	if p.Threshold != nil && !keep(FlagThreshold) {
		c.Threshold = *p.Threshold
	}
	if p.Gap != nil && !keep(FlagGap) {
		c.Gap = *p.Gap
	}
	if p.Mode != "" && !keep(FlagMode) {
		c.Mode = p.Mode
	}
	if p.Contrast != 0 && !keep(FlagContrast) {
		c.Contrast = p.Contrast
	}
	if p.Blur != 0 && !keep(FlagBlur) {
		c.Blur = p.Blur
	}
	if p.AutoOrient != nil && !keep(FlagAutoOrient) {
		c.AutoOrient = *p.AutoOrient
	}
	if p.Invert != nil && !keep(FlagInvert) {
		c.Invert = *p.Invert
	}
}

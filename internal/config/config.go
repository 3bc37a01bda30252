// Package config loads the tuning constants of the ink engine from a TOML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration that decodes from strings such as "450ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete engine configuration.
type Config struct {
	Gesture  Gesture  `toml:"gesture"`
	Ink      Ink      `toml:"ink"`
	Viewport Viewport `toml:"viewport"`
	Mirror   Mirror   `toml:"mirror"`
}

// Gesture holds the classifier timing and distance thresholds. Distances are
// in screen pixels.
type Gesture struct {
	LongPressDelay  Duration `toml:"long_press_delay"`
	LongPressJitter float64  `toml:"long_press_jitter"`
	TapMaxDuration  Duration `toml:"tap_max_duration"`
	TapJitter       float64  `toml:"tap_jitter"`
	DoubleTapWindow Duration `toml:"double_tap_window"`
	// TouchDraws lets a single finger draw. When false only the pointer
	// channel draws and one finger pans.
	TouchDraws bool `toml:"touch_draws"`
	// SwipeThreshold is the fraction of the viewport height overscroll must
	// exceed for a page turn.
	SwipeThreshold float64 `toml:"swipe_threshold"`
	SwipeDamping   float64 `toml:"swipe_damping"`
}

// Ink holds pen defaults and the eraser, lasso and scratch parameters.
// Values named in normalized units are fractions of the page.
type Ink struct {
	Color            string  `toml:"color"`
	Width            float64 `toml:"width"`
	EraserRadius     float64 `toml:"eraser_radius"` // screen px
	SelectRadius     float64 `toml:"select_radius"`
	SelectionPadding float64 `toml:"selection_padding"`

	ScratchMinPoints    int     `toml:"scratch_min_points"`
	ScratchMaxExtent    float64 `toml:"scratch_max_extent"`
	ScratchMinReversals int     `toml:"scratch_min_reversals"`
	ScratchJitter       float64 `toml:"scratch_jitter"`
}

// Viewport holds zoom stepping and the fit mode.
type Viewport struct {
	ZoomStep    float64 `toml:"zoom_step"`
	FitToHeight bool    `toml:"fit_to_height"`
	AlignLeft   bool    `toml:"align_left"`
}

// Mirror configures the read-only live mirror server.
type Mirror struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Advertise bool   `toml:"advertise"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Gesture: Gesture{
			LongPressDelay:  Duration{500 * time.Millisecond},
			LongPressJitter: 8,
			TapMaxDuration:  Duration{250 * time.Millisecond},
			TapJitter:       10,
			DoubleTapWindow: Duration{400 * time.Millisecond},
			TouchDraws:      true,
			SwipeThreshold:  0.15,
			SwipeDamping:    0.4,
		},
		Ink: Ink{
			Color:               "black",
			Width:               3,
			EraserRadius:        16,
			SelectRadius:        0.03,
			SelectionPadding:    0.01,
			ScratchMinPoints:    8,
			ScratchMaxExtent:    0.12,
			ScratchMinReversals: 4,
			ScratchJitter:       0.004,
		},
		Viewport: Viewport{
			ZoomStep: 1.25,
		},
		Mirror: Mirror{
			Addr: ":8888",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown keys %v", ErrInvalid, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every threshold is usable.
func (c Config) Validate() error {
	g, i := c.Gesture, c.Ink
	switch {
	case g.LongPressDelay.Duration <= 0:
		return fmt.Errorf("%w: gesture.long_press_delay must be positive", ErrInvalid)
	case g.TapMaxDuration.Duration <= 0 || g.DoubleTapWindow.Duration <= 0:
		return fmt.Errorf("%w: tap durations must be positive", ErrInvalid)
	case g.SwipeDamping <= 0 || g.SwipeDamping >= 1:
		return fmt.Errorf("%w: gesture.swipe_damping must be in (0,1)", ErrInvalid)
	case g.SwipeThreshold <= 0:
		return fmt.Errorf("%w: gesture.swipe_threshold must be positive", ErrInvalid)
	case i.Width <= 0 || i.EraserRadius <= 0:
		return fmt.Errorf("%w: ink width and eraser radius must be positive", ErrInvalid)
	case i.ScratchMinPoints < 3 || i.ScratchMinReversals < 1:
		return fmt.Errorf("%w: scratch thresholds too small", ErrInvalid)
	case c.Viewport.ZoomStep <= 1:
		return fmt.Errorf("%w: viewport.zoom_step must be > 1", ErrInvalid)
	}
	return nil
}

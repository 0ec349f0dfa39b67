package tui

import "time"

// TimelineConfig carries the layout knobs loaded from configuration.
type TimelineConfig struct {
	BufferDays   int
	BaseDayWidth float64
	ZoomMin      float64
	ZoomMax      float64
	ZoomFactor   float64
}

// DefaultTimelineConfig mirrors the config package defaults.
func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		BufferDays:   5,
		BaseDayWidth: 3,
		ZoomMin:      0.1,
		ZoomMax:      5.0,
		ZoomFactor:   1.2,
	}
}

// Option mutates the model during construction.
type Option func(*Model)

// WithTimelineConfig overrides the layout knobs.
func WithTimelineConfig(cfg TimelineConfig) Option {
	return func(m *Model) {
		if cfg.BufferDays >= 0 {
			m.timeline.BufferDays = cfg.BufferDays
		}
		if cfg.BaseDayWidth > 0 {
			m.timeline.BaseDayWidth = cfg.BaseDayWidth
		}
		if cfg.ZoomMin > 0 && cfg.ZoomMax >= cfg.ZoomMin {
			m.timeline.ZoomMin = cfg.ZoomMin
			m.timeline.ZoomMax = cfg.ZoomMax
		}
		if cfg.ZoomFactor > 1 {
			m.timeline.ZoomFactor = cfg.ZoomFactor
		}
		m.viewport = NewViewport(m.timeline.BaseDayWidth, ZoomBounds{
			Min:    m.timeline.ZoomMin,
			Max:    m.timeline.ZoomMax,
			Factor: m.timeline.ZoomFactor,
		})
	}
}

// WithClock injects the "today" source used by jump-to-today, so tests
// can pin it.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithClipboard replaces the clipboard writer, so tests can capture
// yanked text without a system clipboard.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}

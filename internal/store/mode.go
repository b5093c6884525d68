package store

import "sync"

type Mode int

const (
	ModeLocal Mode = iota
	ModeConfigured
)

func (m Mode) String() string {
	if m == ModeConfigured {
		return "configured"
	}
	return "local"
}

// ModeResolver computes the configuration mode on first use and returns the
// same answer for the rest of the process.
type ModeResolver struct {
	detect func() Mode
	once   sync.Once
	mode   Mode
}

func NewModeResolver(detect func() Mode) *ModeResolver {
	return &ModeResolver{detect: detect}
}

// FromSettings reports ModeConfigured when both the store address and key
// are set.
func FromSettings(url, key string) func() Mode {
	return func() Mode {
		if url != "" && key != "" {
			return ModeConfigured
		}
		return ModeLocal
	}
}

func (r *ModeResolver) Mode() Mode {
	r.once.Do(func() {
		r.mode = r.detect()
	})
	return r.mode
}

func (r *ModeResolver) Configured() bool {
	return r.Mode() == ModeConfigured
}

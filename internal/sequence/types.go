// Package sequence plays a playlist of drawer clips: each clip selects a
// drawer, optionally applies settings or randomizes them, and automates
// settings over its duration with keyframed envelopes.
package sequence

// Keyframe represents a value at time T (seconds into the clip) with an
// easing function that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t" json:"t"`
	V    float64 `yaml:"v" json:"v"`
	Ease string  `yaml:"ease,omitempty" json:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe `yaml:"keys" json:"keys"`
}

// Clip is one entry of a playlist.
type Clip struct {
	Name      string  `yaml:"name,omitempty" json:"name,omitempty"`
	Drawer    string  `yaml:"drawer" json:"drawer"`
	DurationS float64 `yaml:"duration_s" json:"duration_s"`
	// Randomize draws fresh settings when the clip starts, before Settings
	// are applied.
	Randomize bool `yaml:"randomize,omitempty" json:"randomize,omitempty"`
	// Palette selects a curated palette when set.
	Palette  *int                `yaml:"palette,omitempty" json:"palette,omitempty"`
	Settings map[string]float64  `yaml:"settings,omitempty" json:"settings,omitempty"`
	Params   map[string]Envelope `yaml:"params,omitempty" json:"params,omitempty"`
}

// Program is a full playlist.
type Program struct {
	Loop  bool   `yaml:"loop" json:"loop"`
	Clips []Clip `yaml:"clips" json:"clips"`
}

// PlayerState enumerates playlist states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are the calls the player makes into the drawer manager.
type Hooks struct {
	SetDrawer      func(name string) error
	UpdateSettings func(partial map[string]float64) error
	Randomize      func() error
	SetCurated     func(i int)
}

// Status is a snapshot for the control surface.
type Status struct {
	State    PlayerState `json:"state" msgpack:"state"`
	Clip     int         `json:"clip" msgpack:"clip"`
	ClipName string      `json:"clip_name" msgpack:"clip_name"`
	Drawer   string      `json:"drawer" msgpack:"drawer"`
	LocalS   float64     `json:"local_s" msgpack:"local_s"`
	Clips    int         `json:"clips" msgpack:"clips"`
}

package render

import (
	"math"
	"math/rand/v2"
)

// ParamType enumerates supported setting value kinds.
type ParamType string

const (
	ParamInt   ParamType = "int"
	ParamFloat ParamType = "float"
	ParamBool  ParamType = "bool"
)

// Range is an inclusive [Min, Max] bound.
type Range struct{ Min, Max float64 }

// DefaultRange is reported for settings that declare no range.
var DefaultRange = Range{Min: 0, Max: 100}

// SettingInfo is the read-only view of one setting.
type SettingInfo struct {
	Value float64 `json:"value" msgpack:"value"`
	Min   float64 `json:"min" msgpack:"min"`
	Max   float64 `json:"max" msgpack:"max"`
}

// Settings holds a drawer's tunables: a value map paired with an optional
// range map. Kinds decide how values are stored and randomized.
type Settings struct {
	keys   []string
	values map[string]float64
	ranges map[string]Range
	kinds  map[string]ParamType
}

func NewSettings() *Settings {
	return &Settings{
		values: map[string]float64{},
		ranges: map[string]Range{},
		kinds:  map[string]ParamType{},
	}
}

// Define declares a ranged setting with a default value.
func (s *Settings) Define(key string, kind ParamType, def, min, max float64) *Settings {
	if min > max {
		min, max = max, min
	}
	s.declare(key, kind)
	s.ranges[key] = Range{Min: min, Max: max}
	s.values[key] = coerce(kind, clampf(def, min, max))
	return s
}

// Literal declares a setting with no range. Updates store it as-is.
func (s *Settings) Literal(key string, def float64) *Settings {
	s.declare(key, ParamFloat)
	s.values[key] = def
	return s
}

func (s *Settings) declare(key string, kind ParamType) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	if kind == "" {
		kind = ParamInt
	}
	s.kinds[key] = kind
}

// Update applies a partial update. Ranged keys are clamped, unranged known
// keys are stored as given, unknown keys are ignored.
func (s *Settings) Update(partial map[string]float64) {
	for k, v := range partial {
		if math.IsNaN(v) {
			continue
		}
		if r, ok := s.ranges[k]; ok {
			s.values[k] = coerce(s.kinds[k], clampf(v, r.Min, r.Max))
			continue
		}
		if _, ok := s.values[k]; ok {
			s.values[k] = v
		}
	}
}

// Randomize draws each ranged setting uniformly within its bounds.
func (s *Settings) Randomize(rng *rand.Rand) {
	for _, k := range s.keys {
		r, ok := s.ranges[k]
		if !ok {
			continue
		}
		switch s.kinds[k] {
		case ParamFloat:
			s.values[k] = r.Min + rng.Float64()*(r.Max-r.Min)
		default:
			lo, hi := int(math.Ceil(r.Min)), int(math.Floor(r.Max))
			if hi < lo {
				s.values[k] = r.Min
				continue
			}
			s.values[k] = float64(lo + rng.IntN(hi-lo+1))
		}
	}
}

func (s *Settings) Get(key string) float64 { return s.values[key] }
func (s *Settings) Int(key string) int      { return int(math.Round(s.values[key])) }
func (s *Settings) Has(key string) bool     { _, ok := s.values[key]; return ok }

// Range returns the declared range for key, or DefaultRange.
func (s *Settings) Range(key string) (Range, bool) {
	r, ok := s.ranges[key]
	if !ok {
		return DefaultRange, false
	}
	return r, true
}

func (s *Settings) Kind(key string) ParamType { return s.kinds[key] }

// Keys returns setting names in declaration order.
func (s *Settings) Keys() []string { return append([]string(nil), s.keys...) }

// Values returns a copy of the value map.
func (s *Settings) Values() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Info snapshots every setting with its bounds.
func (s *Settings) Info() map[string]SettingInfo {
	out := make(map[string]SettingInfo, len(s.values))
	for k, v := range s.values {
		r, _ := s.Range(k)
		out[k] = SettingInfo{Value: v, Min: r.Min, Max: r.Max}
	}
	return out
}

func coerce(kind ParamType, v float64) float64 {
	switch kind {
	case ParamInt, ParamBool:
		return math.Round(v)
	}
	return v
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

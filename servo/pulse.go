// Package servo models a bank of positional servo channels driven
// through a pulse-width sink.
package servo

// Geometry of the stock bank. Angles are whole degrees; the pulse
// range matches common hobby servo hardware (1000-2000 us around a
// 1500 us neutral).
const (
	DefaultChannels = 18
	MinAngle        = -140
	MaxAngle        = 140
)

// PulseMicros maps a command angle to a pulse width in microseconds.
// -140 maps to 1000, 0 to 1500, 140 to 2000. Callers validate the
// angle first; the mapping itself does not clamp.
func PulseMicros(angle int) float64 {
	return 1500.0 + float64(angle)*500.0/140.0
}

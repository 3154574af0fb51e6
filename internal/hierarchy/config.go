package hierarchy

import (
	"fmt"
	"strings"
)

// Signal is a layout or textual cue used to place a line in the outline.
type Signal int

const (
	SignalNone Signal = iota
	// SignalNumbering is a leading dotted-depth marker such as "2.1".
	SignalNumbering
	// SignalIndent is a bullet glyph or a change of indent bucket.
	SignalIndent
	// SignalFont is a font size or weight jump against the previous line.
	SignalFont
)

func (s Signal) String() string {
	switch s {
	case SignalNumbering:
		return "numbering"
	case SignalIndent:
		return "indent"
	case SignalFont:
		return "font"
	default:
		return "none"
	}
}

// ParseSignal maps a signal name to its Signal.
func ParseSignal(name string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "numbering", "number", "numbers":
		return SignalNumbering, nil
	case "indent", "indentation", "bullet", "bullets":
		return SignalIndent, nil
	case "font", "fontsize", "font-size":
		return SignalFont, nil
	default:
		return SignalNone, fmt.Errorf("unknown signal %q", name)
	}
}

// ParsePriority parses a comma-separated signal list such as
// "numbering,indent,font". An empty string yields the default order.
func ParsePriority(list string) ([]Signal, error) {
	if strings.TrimSpace(list) == "" {
		return DefaultPriority(), nil
	}
	seen := make(map[Signal]bool)
	var out []Signal
	for _, part := range strings.Split(list, ",") {
		s, err := ParseSignal(part)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			return nil, fmt.Errorf("signal %q listed twice", s)
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// DefaultPriority is numbering first, then indentation, then font.
func DefaultPriority() []Signal {
	return []Signal{SignalNumbering, SignalIndent, SignalFont}
}

// Config tunes how levels are inferred.
type Config struct {
	IndentUnit    float64  // Points per indent bucket.
	FontSizeDelta float64  // Minimum size difference, in points, that counts as a jump.
	Priority      []Signal // Signals consulted in order; the first present wins.
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		IndentUnit:    18,
		FontSizeDelta: 1,
		Priority:      DefaultPriority(),
	}
}

// Validate reports configuration values the builder cannot work with.
func (c Config) Validate() error {
	if c.IndentUnit <= 0 {
		return fmt.Errorf("indent unit must be positive, got %g", c.IndentUnit)
	}
	if c.FontSizeDelta <= 0 {
		return fmt.Errorf("font size delta must be positive, got %g", c.FontSizeDelta)
	}
	if len(c.Priority) == 0 {
		return fmt.Errorf("signal priority must name at least one signal")
	}
	for _, s := range c.Priority {
		if s == SignalNone {
			return fmt.Errorf("signal priority contains %q", s)
		}
	}
	return nil
}

// PriorityString renders the priority as ParsePriority accepts it.
func (c Config) PriorityString() string {
	names := make([]string, len(c.Priority))
	for i, s := range c.Priority {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}

package style

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the font size used when nothing is declared.
const DefaultFontSize = 16.0

// Value returns the trimmed value of a property, or "".
func (s ComputedStyle) Value(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// Length resolves a length property against containerSize for percentages.
func (s ComputedStyle) Length(name string, containerSize, def float64) float64 {
	return ParseLength(s.Value(name), containerSize, def)
}

// FontSize returns the font size in pixels.
func (s ComputedStyle) FontSize() float64 {
	if fs := ParseLength(s.Value("font-size"), DefaultFontSize, DefaultFontSize); fs > 0 {
		return fs
	}
	return DefaultFontSize
}

// LineHeight returns the line box height in pixels. Unitless values multiply
// the font size.
func (s ComputedStyle) LineHeight() float64 {
	fs := s.FontSize()
	v := s.Value("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fs
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f * fs
	}
	if lh := ParseLength(v, fs, 0); lh > 0 {
		return lh
	}
	return 1.2 * fs
}

// Font maps the style onto a core PDF font family and fpdf style string.
func (s ComputedStyle) Font() (family, fontStyle string) {
	family = "Helvetica"
	if ff := s.Value("font-family"); ff != "" {
		first := strings.TrimSpace(strings.Trim(strings.Split(ff, ",")[0], " '\""))
		switch strings.ToLower(first) {
		case "times", "times new roman", "serif":
			family = "Times"
		case "courier", "courier new", "monospace":
			family = "Courier"
		}
	}
	switch s.Value("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		fontStyle += "B"
	}
	if fs := s.Value("font-style"); fs == "italic" || fs == "oblique" {
		fontStyle += "I"
	}
	return family, fontStyle
}

// Color returns the RGB components of a color property, or def when it is
// missing or unparseable.
func (s ComputedStyle) Color(name string, def [3]int) [3]int {
	if c, ok := ParseColor(s.Value(name)); ok {
		return c
	}
	return def
}

// ParseLength parses a CSS length value
func ParseLength(value string, containerSize float64, defaultValue float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	num, factor := value, 1.0
	switch {
	case strings.HasSuffix(value, "%"):
		num, factor = value[:len(value)-1], containerSize/100
	case strings.HasSuffix(value, "rem"):
		num, factor = value[:len(value)-3], DefaultFontSize
	case strings.HasSuffix(value, "em"):
		num, factor = value[:len(value)-2], DefaultFontSize
	case strings.HasSuffix(value, "px"):
		num = value[:len(value)-2]
	case strings.HasSuffix(value, "pt"):
		num, factor = value[:len(value)-2], 96.0/72.0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return defaultValue
	}
	return f * factor
}

// ParseColor parses #RGB, #RRGGBB and rgb(r, g, b) colors.
func ParseColor(value string) ([3]int, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "black":
		return [3]int{0, 0, 0}, true
	case "white":
		return [3]int{255, 255, 255}, true
	}
	if hex, ok := strings.CutPrefix(value, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return [3]int{}, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return [3]int{}, false
		}
		return [3]int{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, true
	}
	if args, ok := strings.CutPrefix(value, "rgb("); ok {
		parts := strings.Split(strings.TrimSuffix(args, ")"), ",")
		if len(parts) != 3 {
			return [3]int{}, false
		}
		var c [3]int
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return [3]int{}, false
			}
			c[i] = v
		}
		return c, true
	}
	return [3]int{}, false
}

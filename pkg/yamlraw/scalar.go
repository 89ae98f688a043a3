package yamlraw

import (
	"math"
	"strconv"
	"strings"
)

// BoolValue returns the boolean value of a scalar
func (n *Node) BoolValue() bool {
	if b, ok := n.Parsed.(bool); ok {
		return b
	}
	b, _ := ParseBool(n.Text)
	return b
}

// IntValue returns the integer value of a scalar
func (n *Node) IntValue() int64 {
	switch v := n.Parsed.(type) {
	case int64:
		return v
	case uint64:
		if v > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(v)
	case int:
		return int64(v)
	}
	i, _ := ParseInt(n.Text)
	return i
}

// FloatValue returns the floating-point value of a scalar, integers included
func (n *Node) FloatValue() float64 {
	switch v := n.Parsed.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case int:
		return float64(v)
	}
	if n.Type == ScalarInt {
		i, _ := ParseInt(n.Text)
		return float64(i)
	}
	f, _ := ParseFloat(n.Text)
	return f
}

// ParseBool parses a YAML 1.2 core schema boolean
func ParseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// ParseInt parses a YAML integer: decimal, 0x hex, 0o octal or 0b binary,
// with an optional sign and "_" separators.
func ParseInt(s string) (int64, bool) {
	s = strings.ReplaceAll(s, "_", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0o"), strings.HasPrefix(s, "0O"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	}
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		if u > math.MaxInt64+1 {
			return math.MinInt64, false
		}
		return -int64(u), true
	}
	if u > math.MaxInt64 {
		return math.MaxInt64, false
	}
	return int64(u), true
}

// ParseFloat parses a YAML float, including .inf, -.inf and .nan
func ParseFloat(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return math.Inf(1), true
	case "-.inf":
		return math.Inf(-1), true
	case ".nan":
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

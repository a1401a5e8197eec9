package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Attribute keys recognised on diagram blocks. Anything else is ignored.
const (
	AttrWidth  = "width"
	AttrHeight = "height"
	AttrEcho   = "echo"
)

// ConfigurationError reports an authoring mistake that makes the whole run
// unusable, such as a malformed numeric attribute or an output directory that
// cannot be created.
type ConfigurationError struct {
	Key   string // offending attribute key, empty for non-attribute problems
	Value string // raw value as written in the document
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: attribute %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ParseDimensions reads the width and height attributes. Missing keys fall
// back to 500x200; present but malformed values are a ConfigurationError.
func ParseDimensions(attrs Attributes) (Dimensions, error) {
	width, err := dimension(attrs, AttrWidth, DefaultWidth)
	if err != nil {
		return Dimensions{}, err
	}
	height, err := dimension(attrs, AttrHeight, DefaultHeight)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{Width: width, Height: height}, nil
}

func dimension(attrs Attributes, key string, def float64) (float64, error) {
	raw, ok := attrs.Get(key)
	if !ok {
		return def, nil
	}
	v, ok := GetFloat64(attrs, key)
	if !ok {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: fmt.Errorf("not a number")}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, &ConfigurationError{Key: key, Value: raw, Err: fmt.Errorf("must be a positive finite number")}
	}
	return v, nil
}

// ParseEcho reads the echo attribute. Only "above" (any case) selects
// EchoAbove.
func ParseEcho(attrs Attributes) EchoPlacement {
	v, ok := GetString(attrs, AttrEcho)
	if ok && strings.EqualFold(v, "above") {
		return EchoAbove
	}
	return EchoBelow
}

// GetString returns the trimmed value of an attribute.
func GetString(attrs Attributes, key string) (string, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// GetFloat64 parses an attribute as a float.
func GetFloat64(attrs Attributes, key string) (float64, bool) {
	v, ok := GetString(attrs, key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetBool parses an attribute using the usual string spellings of booleans.
func GetBool(attrs Attributes, key string) (bool, bool) {
	v, ok := GetString(attrs, key)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

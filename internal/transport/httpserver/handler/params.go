package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseBoolParam returns nil for an empty value.
func parseBoolParam(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%q is not a boolean", value)
	}
	return &parsed, nil
}

// FlexBool decodes a JSON boolean or one of the strings "true" / "false".
type FlexBool struct {
	Value bool
	Set   bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = FlexBool{}
		return nil
	}

	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = FlexBool{Value: asBool, Set: true}
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("expected boolean, got %s", data)
	}
	switch strings.ToLower(strings.TrimSpace(asString)) {
	case "true":
		*b = FlexBool{Value: true, Set: true}
	case "false":
		*b = FlexBool{Value: false, Set: true}
	default:
		return fmt.Errorf("expected boolean, got %q", asString)
	}
	return nil
}

func (b FlexBool) Ptr() *bool {
	if !b.Set {
		return nil
	}
	value := b.Value
	return &value
}

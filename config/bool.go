package config

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ParseBool parses true/false, yes/no, and 1/0 in any letter case.
// Any other token is an error.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, errors.Errorf("unrecognized boolean value %q", s)
}

// Bool is a boolean that unmarshals from a JSON boolean or a string accepted by ParseBool.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Errorf("expected boolean, got %s", string(data))
	}
	v, err := ParseBool(s)
	if err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

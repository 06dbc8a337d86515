package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kardolus/settings-store/types"
)

// ParseAssignments turns key=value arguments into a Record. Values are typed
// leniently: true/false become booleans, numbers become float64 (matching how
// encoding/json decodes them back), everything else stays a string. A value
// starting with { or [ is parsed as a raw JSON fragment by the caller, not
// here.
func ParseAssignments(args []string) (types.Record, error) {
	record := types.Record{}

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", arg)
		}

		record[key] = typedValue(value)
	}

	return record, nil
}

func typedValue(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

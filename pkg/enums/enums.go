// Package enums holds the string enums stored in Postgres enum columns.
package enums

import (
	"fmt"
	"slices"
)

func known[T ~string](set []T, v T) bool { return slices.Contains(set, v) }

func parse[T ~string](what string, set []T, raw string) (T, error) {
	if v := T(raw); known(set, v) {
		return v, nil
	}
	return "", fmt.Errorf("invalid %s %q", what, raw)
}

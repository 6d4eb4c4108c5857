package chapters

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection narrows a resolved chapter list. Range ("5-12") wins over List
// ("1,3,5"); both are 1-based. Limit keeps the first N of what remains.
type Selection struct {
	Range string
	List  string
	Limit int
}

func (s Selection) IsZero() bool {
	return s.Range == "" && s.List == "" && s.Limit <= 0
}

// Apply runs the selection over a fully resolved list.
func Apply[T any](all []T, s Selection) ([]T, error) {
	out := all

	switch {
	case s.Range != "":
		r, err := FilterRange(all, s.Range)
		if err != nil {
			return nil, err
		}
		out = r
	case s.List != "":
		out = FilterList(all, s.List)
	}

	return Limit(out, s.Limit), nil
}

// Limit truncates to the first n items; n <= 0 keeps everything.
func Limit[T any](all []T, n int) []T {
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[:n]
}

func FilterRange[T any](all []T, rng string) ([]T, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range %q (want A-B)", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("invalid range %q (want A-B)", rng)
	}

	if start <= 0 || start > end {
		return nil, fmt.Errorf("invalid range %q", rng)
	}
	if start > len(all) {
		return nil, fmt.Errorf("range %q starts past the last chapter (%d)", rng, len(all))
	}

	return all[start-1 : min(end, len(all))], nil
}

func FilterList[T any](all []T, list string) []T {
	out := []T{}
	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		idx, err := atoi(n)
		if err != nil {
			continue
		}

		if idx > 0 && idx <= len(all) {
			out = append(out, all[idx-1])
		}
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

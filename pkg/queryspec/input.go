package queryspec

import (
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

// InputFromValues converts URL query values into raw pipeline input.
// Repeated keys become []string, and "key[sub]" keys are grouped into a
// map under "key", so ?views[min]=10&views[max]=50 feeds a RangeFilter.
func InputFromValues(values url.Values) map[string]interface{} {
	input := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		var value interface{} = vals[0]
		if len(vals) > 1 {
			value = append([]string(nil), vals...)
		}

		if open := strings.IndexByte(key, '['); open > 0 && strings.HasSuffix(key, "]") {
			outer, inner := key[:open], key[open+1:len(key)-1]
			if inner == "" {
				// key[]=a&key[]=b
				input[outer] = append([]string(nil), vals...)
				continue
			}
			group, ok := input[outer].(map[string]interface{})
			if !ok {
				group = make(map[string]interface{})
				input[outer] = group
			}
			group[inner] = value
			continue
		}
		input[key] = value
	}
	return input
}

// inputString returns input[key] as a string and whether it was present and
// not nil.
func inputString(input map[string]interface{}, key string) (string, bool) {
	v, ok := input[key]
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

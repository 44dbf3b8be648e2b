package gateway

import "strings"

// nextLink returns the target of the rel="next" entry of an RFC 8288 Link
// header, or "" when there is none. GitHub formats it as:
//
//	<https://api.github.com/repositories/1/commits?page=2>; rel="next", <...>; rel="last"
func nextLink(header string) string {
	for _, entry := range strings.Split(header, ",") {
		target, params, ok := strings.Cut(entry, ";")
		if !ok {
			continue
		}
		target = strings.TrimSpace(target)
		target, ok = strings.CutPrefix(target, "<")
		if !ok {
			continue
		}
		target, ok = strings.CutSuffix(target, ">")
		if !ok {
			continue
		}
		for _, param := range strings.Split(params, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(key, "rel") {
				continue
			}
			// rel may carry several space separated relation types.
			for _, rel := range strings.Fields(strings.Trim(value, `"`)) {
				if rel == "next" {
					return target
				}
			}
		}
	}
	return ""
}

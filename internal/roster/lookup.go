package roster

import (
	"strconv"
	"strings"
	"unicode"
)

// TeamRef identifies a team by any combination of id, tri-code and name.
type TeamRef struct {
	ID   string
	Abbr string
	Name string
}

// LookupTeamKeys returns the candidate roster keys for ref in lookup order:
// numeric id, upper-cased tri-code, upper-cased slug of the name, upper-cased name.
// Empty parts are skipped and duplicates removed.
func LookupTeamKeys(ref TeamRef) []string {
	keys := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	if id := strings.TrimSpace(ref.ID); id != "" {
		if n, err := strconv.Atoi(id); err == nil {
			add(strconv.Itoa(n))
		}
	}
	add(strings.ToUpper(strings.TrimSpace(ref.Abbr)))
	name := strings.TrimSpace(ref.Name)
	add(strings.ToUpper(Slugify(name)))
	add(strings.ToUpper(name))
	return keys
}

// Slugify lower-cases s and collapses every run of non-alphanumerics into a single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

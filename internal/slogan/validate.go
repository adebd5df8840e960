package slogan

import (
	"strings"
	"unicode"

	"posterforge/internal/domain"
)

const (
	minSloganWords = 1
	maxSloganWords = 4
	maxVisualLen   = 160
)

var deniedWords = map[string]struct{}{
	"blood": {}, "bloody": {}, "gore": {}, "gory": {}, "corpse": {}, "murder": {}, "kill": {}, "killer": {}, "suicide": {},
	"gun": {}, "guns": {}, "rifle": {}, "pistol": {}, "bullet": {}, "bullets": {}, "bomb": {}, "grenade": {},
	"drug": {}, "drugs": {}, "cocaine": {}, "heroin": {}, "weed": {}, "meth": {},
	"sex": {}, "sexy": {}, "nude": {}, "naked": {},
	"god": {}, "jesus": {}, "satan": {}, "church": {}, "allah": {}, "pentagram": {},
	"nazi": {}, "swastika": {}, "hate": {}, "terror": {}, "terrorist": {},
	"fuck": {}, "shit": {}, "damn": {}, "hell": {}, "bitch": {},
}

// Clean strips quotes, hashtags and emoji from s and collapses whitespace.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '"' || r == '\'' || r == '`' || r == '#':
			continue
		case r == '\u201c' || r == '\u201d' || r == '\u2018' || r == '\u2019':
			continue
		case r == '\u200d' || (r >= '\ufe00' && r <= '\ufe0f'):
			continue
		case unicode.Is(unicode.So, r) || unicode.Is(unicode.Cs, r) || unicode.Is(unicode.Co, r):
			continue
		case unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// validOption returns the cleaned option and whether it passes the content rules.
func validOption(o domain.SloganOption) (domain.SloganOption, bool) {
	o.Slogan = strings.Trim(Clean(o.Slogan), " .,;:!-")
	o.Visual = Clean(o.Visual)
	n := len(strings.Fields(o.Slogan))
	if n < minSloganWords || n > maxSloganWords {
		return o, false
	}
	if o.Visual == "" || len(o.Visual) > maxVisualLen {
		return o, false
	}
	if denied(o.Slogan) || denied(o.Visual) {
		return o, false
	}
	return o, true
}

func denied(s string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := deniedWords[w]; ok {
			return true
		}
	}
	return false
}

// filterOptions keeps valid options, dropping case-insensitive duplicate slogans.
func filterOptions(in []domain.SloganOption) []domain.SloganOption {
	out := make([]domain.SloganOption, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, o := range in {
		cleaned, ok := validOption(o)
		if !ok {
			continue
		}
		key := strings.ToLower(cleaned.Slogan)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

// Package motif rewrites free-text visual motifs produced by the slogan model
// into unambiguous, print-safe object descriptions for the image model.
package motif

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMotif is returned when the input carries no usable object.
const DefaultMotif = "3D bar chart (chrome)"

const (
	maxTokens = 3
	maxSplit  = 8
)

const trimCutset = " \t\r\n\"'`“”‘’.;:!"

var (
	threeD   = regexp.MustCompile(`(?i)\b3d\b`)
	bareBars = regexp.MustCompile(`\bbars\b`)
)

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithVaultContentOrder overrides the check order used when a vault token has
// several candidate contents. Unknown contents are ignored.
func WithVaultContentOrder(order ...Content) Option {
	return func(n *Normalizer) {
		var filtered []Content
		for _, c := range order {
			switch c {
			case ContentChart, ContentIngots, ContentCoins, ContentNotes:
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			n.vaultOrder = filtered
		}
	}
}

// Normalizer applies the motif rule set. The zero value is not usable; build
// one with New. A Normalizer is safe for concurrent use.
type Normalizer struct {
	vaultOrder []Content
}

// New returns a Normalizer using DefaultVaultContentOrder unless overridden.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{vaultOrder: append([]Content(nil), DefaultVaultContentOrder...)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var std = New()

// Normalize rewrites raw with the default rule set.
func Normalize(raw string) string {
	return std.Normalize(raw)
}

type token struct {
	base      string
	qualifier string
	words     []string
	allWords  []string
	kind      kind
	chartType string
	material  string
	index     int
}

// Normalize rewrites raw into at most three comma-separated object phrases,
// each carrying a parenthetical qualifier. It never fails: unusable input
// yields DefaultMotif.
func (n *Normalizer) Normalize(raw string) string {
	tokens := parseTokens(raw)
	if len(tokens) == 0 {
		return DefaultMotif
	}

	// Chart context anywhere in the input turns bare "bars" into a bar chart.
	anyChartCtx := false
	for _, t := range tokens {
		if chartContextWords.hasAny(t.allWords) {
			anyChartCtx = true
			break
		}
	}
	for i := range tokens {
		classify(&tokens[i], anyChartCtx)
	}

	tokens = selectTokens(tokens)

	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for i := range tokens {
		rendered := n.render(tokens, i, anyChartCtx)
		if _, dup := seen[rendered]; dup {
			continue
		}
		seen[rendered] = struct{}{}
		out = append(out, rendered)
	}
	if len(out) == 0 {
		return DefaultMotif
	}
	return strings.Join(out, ", ")
}

// Title returns the display casing of a normalized motif, keeping "3D" intact.
func Title(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	titled := cases.Title(language.English).String(s)
	return threeD.ReplaceAllString(titled, "3D")
}

func parseTokens(raw string) []token {
	var tokens []token
	for _, part := range splitTopLevel(raw) {
		part = strings.Trim(part, trimCutset)
		if part == "" {
			continue
		}
		base, qual := splitQualifier(strings.ToLower(part))
		words := tokenize(base)
		words = dropLeadingArticles(words)
		if len(words) == 0 {
			continue
		}
		t := token{
			base:      strings.Join(words, " "),
			qualifier: collapseSpaces(strings.Trim(qual, trimCutset)),
			words:     words,
			index:     len(tokens),
		}
		t.allWords = append(append([]string(nil), words...), tokenize(t.qualifier)...)
		tokens = append(tokens, t)
		if len(tokens) == maxSplit {
			break
		}
	}
	return tokens
}

// splitTopLevel splits on commas that are not inside parentheses.
func splitTopLevel(raw string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range raw {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, raw[start:])
}

// splitQualifier separates the first parenthetical group from the rest of s.
func splitQualifier(s string) (string, string) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return strings.ReplaceAll(s, ")", " "), ""
	}
	rest := s[open+1:]
	closeIdx := strings.IndexByte(rest, ')')
	if closeIdx < 0 {
		return s[:open], rest
	}
	base := s[:open] + " " + rest[closeIdx+1:]
	base = strings.NewReplacer("(", " ", ")", " ").Replace(base)
	return base, rest[:closeIdx]
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '&'
	})
}

func dropLeadingArticles(words []string) []string {
	for len(words) > 0 {
		if _, ok := articles[words[0]]; !ok {
			break
		}
		words = words[1:]
	}
	return words
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func classify(t *token, chartCtx bool) {
	w := t.words
	for _, word := range w {
		if m, ok := materials[word]; ok {
			t.material = m
			break
		}
	}
	switch {
	case hasVaultWord(w):
		t.kind = kindVault
	case chartWords.hasAny(w):
		t.kind = kindChart
	case barWords.hasAny(w) && chartCtx:
		t.kind = kindChart
	case barWords.hasAny(w), ingotWords.hasAny(w):
		t.kind = kindIngots
	case compassWords.hasAny(w):
		t.kind = kindCompass
	case deviceWords.hasAny(w):
		t.kind = kindDevice
	case ledgerWords.hasAny(w):
		t.kind = kindLedger
	case coinWords.hasAny(w):
		t.kind = kindCoins
	case noteWords.hasAny(w):
		t.kind = kindNotes
	default:
		t.kind = kindOther
	}
	if t.kind == kindChart {
		t.chartType = chartTypeOf(t.allWords)
	}
}

func hasVaultWord(words []string) bool {
	for _, w := range words {
		if _, ok := vaultBases[w]; ok {
			return true
		}
	}
	return false
}

func chartTypeOf(words []string) string {
	for _, ct := range chartTypes {
		if ct.words.hasAny(words) {
			return ct.name
		}
	}
	return defaultChartTy
}

// selectTokens keeps the highest-ranked tokens and puts charts first while
// preserving input order otherwise.
func selectTokens(tokens []token) []token {
	if len(tokens) > maxTokens {
		ranked := append([]token(nil), tokens...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return keepRank(ranked[i].kind) < keepRank(ranked[j].kind)
		})
		ranked = ranked[:maxTokens]
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].index < ranked[j].index })
		tokens = ranked
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].kind == kindChart && tokens[j].kind != kindChart
	})
	return tokens
}

func (n *Normalizer) render(tokens []token, i int, chartCtx bool) string {
	t := tokens[i]
	var base, qual string
	switch t.kind {
	case kindChart:
		base = "3D " + t.chartType + " chart"
		qual = firstNonEmpty(t.qualifier, t.material, chartMaterial)
	case kindIngots:
		base = ingotsBase
		qual = firstNonEmpty(t.qualifier, t.material, ingotMaterial)
	case kindVault:
		base = vaultBase(t.words)
		qual = n.vaultContent(tokens, i, chartCtx)
	case kindCoins:
		base = coinsBase
		qual = ensureQualifier(firstNonEmpty(t.qualifier, t.material), coinsQual)
	case kindNotes:
		base = notesBase
		qual = ensureQualifier(t.qualifier, notesQual)
	case kindCompass:
		base = t.base
		qual = ensureQualifier(t.qualifier, compassQual)
	case kindDevice:
		base = t.base
		qual = ensureQualifier(t.qualifier, deviceQual)
	case kindLedger:
		base = t.base
		qual = ensureQualifier(t.qualifier, ledgerQual)
	default:
		base = t.base
		qual = firstNonEmpty(t.qualifier, genericQual)
	}
	if !chartCtx {
		base = bareBars.ReplaceAllString(base, "bullion ingots")
		qual = bareBars.ReplaceAllString(qual, "bullion ingots")
	}
	base = threeD.ReplaceAllString(base, "3D")
	qual = threeD.ReplaceAllString(qual, "3D")
	return base + " (" + qual + ")"
}

func vaultBase(words []string) string {
	for _, w := range words {
		if b, ok := vaultBases[w]; ok {
			return b
		}
	}
	return "open vault"
}

// vaultContent states what emerges from the vault at tokens[i], looking at the
// vault's own words first and then at its siblings.
func (n *Normalizer) vaultContent(tokens []token, i int, chartCtx bool) string {
	mentioned := make(map[Content]string)
	note := func(c Content, chartType string) {
		if _, ok := mentioned[c]; !ok {
			mentioned[c] = chartType
		}
	}

	own := tokens[i].allWords
	if chartWords.hasAny(own) || (barWords.hasAny(own) && chartCtx) {
		note(ContentChart, chartTypeOf(own))
	}
	if ingotWords.hasAny(own) || (barWords.hasAny(own) && !chartCtx) {
		note(ContentIngots, "")
	}
	if coinWords.hasAny(own) {
		note(ContentCoins, "")
	}
	if noteWords.hasAny(own) {
		note(ContentNotes, "")
	}

	for j, sib := range tokens {
		if j == i {
			continue
		}
		switch sib.kind {
		case kindChart:
			note(ContentChart, sib.chartType)
		case kindIngots:
			note(ContentIngots, "")
		case kindCoins:
			note(ContentCoins, "")
		case kindNotes:
			note(ContentNotes, "")
		}
	}

	for _, c := range n.vaultOrder {
		chartType, ok := mentioned[c]
		if !ok {
			continue
		}
		if c == ContentChart {
			if chartType == "" {
				chartType = defaultChartTy
			}
			return "3D " + chartType + " chart rising out"
		}
		return contentPhrases[c]
	}
	return contentPhrases[ContentIngots]
}

func ensureQualifier(q, required string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return required
	}
	if strings.Contains(q, required) {
		return q
	}
	return q + ", " + required
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

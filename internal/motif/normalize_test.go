package motif

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: DefaultMotif},
		{name: "whitespace and quotes", in: `  " ,  ' `, want: DefaultMotif},
		{name: "bars and vault", in: "bars, vault", want: "3D bullion ingots (brushed metal), open vault (3D bullion ingots spilling out)"},
		{name: "compass", in: "compass", want: "compass (no numbers or letters)"},
		{name: "graph folds to chart", in: "graph", want: "3D bar chart (chrome)"},
		{name: "line graph keeps qualifier", in: "Line graph (neon glow)", want: "3D line chart (neon glow)"},
		{name: "bars with chart sibling", in: "bars, candlestick chart", want: "3D bar chart (chrome), 3D candlestick chart (chrome)"},
		{name: "duplicate charts collapse", in: "bars, rising chart", want: "3D bar chart (chrome)"},
		{name: "gold bars keep material", in: "gold bars", want: "3D bullion ingots (gold)"},
		{name: "safe takes coins from sibling", in: "skull, safe, coins", want: "skull (generic, no text), open safe (plain coins spilling out, no symbols), plain coins (no symbols)"},
		{name: "cash folds to notes", in: "cash (stacked)", want: "plain notes (stacked, no symbols or text)"},
		{name: "gold coins", in: "gold coins", want: "plain coins (gold, no symbols)"},
		{name: "calculator", in: "calculator", want: "calculator (no numbers or text)"},
		{name: "ledger appends constraint", in: "old ledger (leather)", want: "old ledger (leather, no text)"},
		{name: "quoted phrases and articles", in: `"A flaming skull", lightning.`, want: "flaming skull (generic, no text), lightning (generic, no text)"},
		{name: "comma inside qualifier", in: "compass (brass, antique)", want: "compass (brass, antique, no numbers or letters)"},
		{name: "chart is kept and moved first", in: "skull, fire, wings, chart", want: "3D bar chart (chrome), skull (generic, no text), fire (generic, no text)"},
		{name: "vault mentions its own content", in: "vault full of banknotes", want: "open vault (plain notes spilling out, no symbols or text)"},
		{name: "vault with chart sibling", in: "vault, area graph", want: "3D area chart (chrome), open vault (3D area chart rising out)"},
		{name: "bars inside qualifier", in: "skull (bars)", want: "skull (bullion ingots)"},
		{name: "3d survives lower casing", in: "3d skull", want: "3D skull (generic, no text)"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Compass (No Numbers Or Letters)", Title(Normalize("compass")))
	assert.Equal(t, "3D Bar Chart (Chrome)", Title(DefaultMotif))
	assert.Equal(t, "", Title(""))
}

func TestVaultContentOrder(t *testing.T) {
	t.Parallel()

	got := Normalize("vault, coins, notes")
	assert.Contains(t, got, "open vault (plain coins spilling out, no symbols)")

	n := New(WithVaultContentOrder(ContentNotes, ContentCoins))
	got = n.Normalize("vault, coins, notes")
	assert.Contains(t, got, "open vault (plain notes spilling out, no symbols or text)")

	ignored := New(WithVaultContentOrder("rubies"))
	assert.Equal(t, Normalize("vault, coins"), ignored.Normalize("vault, coins"))
}

func TestNormalizeProperties(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"bars",
		"bars, vault",
		"shiny bars (stacked)",
		"bars, skull, lightning",
		"chart",
		"graph, coins",
		"line graph, safe",
		"candlestick chart (molten)",
		"vault",
		"safe, notes",
		"open safe, cash, compass",
		"coins",
		"coins (shiny)",
		"notes",
		"cash, bills",
		"dollar bills (crisp)",
		"vault, bars, chart",
	}
	bareBarsRe := regexp.MustCompile(`\bbars\b`)
	chartTypeRe := regexp.MustCompile(`3D (bar|line|area|candlestick) chart`)
	vaultRe := regexp.MustCompile(`open (vault|safe) \(([^)]*)\)`)

	for _, in := range inputs {
		in := in
		out := Normalize(in)
		lower := strings.ToLower(in)
		words := tokenize(lower)
		has := func(set wordSet) bool { return set.hasAny(words) }

		if has(barWords) && !has(chartContextWords) {
			assert.False(t, bareBarsRe.MatchString(out), "input %q produced bare bars: %q", in, out)
			assert.Contains(t, out, "bullion ingots", "input %q", in)
		}
		if has(chartWords) {
			assert.Regexp(t, chartTypeRe, out, "input %q", in)
		}
		if hasVaultWord(words) {
			m := vaultRe.FindStringSubmatch(out)
			require.NotNil(t, m, "input %q produced no vault: %q", in, out)
			assert.Regexp(t, `chart|ingots|coins|notes`, m[2], "input %q", in)
		}
		if has(coinWords) && !hasVaultWord(words) {
			assert.Contains(t, out, "no symbols", "input %q", in)
		}
		if has(newWordSet("notes", "cash", "bills")) && !hasVaultWord(words) {
			assert.Contains(t, out, "no symbols or text", "input %q", in)
		}
		assert.LessOrEqual(t, len(splitTopLevel(out)), maxTokens, "input %q", in)
	}
}

func TestNormalizeCanonicalFormsAreStable(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"bars, vault", "compass", "graph, safe", "coins, skull"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestSplitTopLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a (b, c)", " d"}, splitTopLevel("a (b, c), d"))
	assert.Equal(t, []string{"unbalanced (x, y"}, splitTopLevel("unbalanced (x, y"))
}

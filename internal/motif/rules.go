package motif

// kind is the object category a token resolves to.
type kind int

const (
	kindOther kind = iota
	kindChart
	kindIngots
	kindVault
	kindCoins
	kindNotes
	kindCompass
	kindDevice
	kindLedger
)

// Content names what spills out of an open vault or safe.
type Content string

const (
	ContentChart  Content = "chart"
	ContentIngots Content = "ingots"
	ContentCoins  Content = "coins"
	ContentNotes  Content = "notes"
)

// DefaultVaultContentOrder is the check order used to pick a single vault
// content when several are mentioned. The first match wins.
var DefaultVaultContentOrder = []Content{ContentChart, ContentIngots, ContentCoins, ContentNotes}

const (
	chartMaterial  = "chrome"
	ingotMaterial  = "brushed metal"
	genericQual    = "generic, no text"
	compassQual    = "no numbers or letters"
	coinsQual      = "no symbols"
	notesQual      = "no symbols or text"
	deviceQual     = "no numbers or text"
	ledgerQual     = "no text"
	coinsBase      = "plain coins"
	notesBase      = "plain notes"
	ingotsBase     = "3D bullion ingots"
	defaultChartTy = "bar"
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) hasAny(words []string) bool {
	for _, w := range words {
		if _, ok := s[w]; ok {
			return true
		}
	}
	return false
}

var (
	chartWords        = newWordSet("chart", "charts", "graph", "graphs", "candlestick", "candlesticks")
	chartContextWords = newWordSet("chart", "charts", "graph", "graphs", "candlestick", "candlesticks", "trend", "trendline", "axis", "axes")
	barWords          = newWordSet("bar", "bars")
	ingotWords        = newWordSet("ingot", "ingots", "bullion")
	coinWords         = newWordSet("coin", "coins")
	noteWords         = newWordSet("note", "notes", "banknote", "banknotes", "cash", "bill", "bills", "money", "dollar", "dollars", "currency")
	compassWords      = newWordSet("compass", "compasses")
	deviceWords       = newWordSet("calculator", "calculators", "computer", "computers", "laptop", "laptops", "screen", "screens", "monitor", "monitors")
	ledgerWords       = newWordSet("ledger", "ledgers", "spreadsheet", "spreadsheets", "receipt", "receipts", "invoice", "invoices")
	articles          = newWordSet("a", "an", "the")
)

var vaultBases = map[string]string{
	"vault":  "open vault",
	"vaults": "open vault",
	"safe":   "open safe",
	"safes":  "open safe",
}

var materials = map[string]string{
	"gold":     "gold",
	"golden":   "gold",
	"silver":   "silver",
	"platinum": "platinum",
	"bronze":   "bronze",
	"copper":   "copper",
	"brass":    "brass",
	"steel":    "steel",
	"iron":     "iron",
	"chrome":   "chrome",
}

// chartTypes is checked in order; the first present word names the sub-type.
var chartTypes = []struct {
	words wordSet
	name  string
}{
	{newWordSet("candlestick", "candlesticks", "candle", "candles"), "candlestick"},
	{newWordSet("line", "lines"), "line"},
	{newWordSet("area"), "area"},
	{newWordSet("bar", "bars"), "bar"},
}

var contentPhrases = map[Content]string{
	ContentIngots: "3D bullion ingots spilling out",
	ContentCoins:  "plain coins spilling out, no symbols",
	ContentNotes:  "plain notes spilling out, no symbols or text",
}

// keepRank orders kinds when more tokens arrive than can be kept.
func keepRank(k kind) int {
	switch k {
	case kindChart:
		return 0
	case kindVault:
		return 1
	case kindOther:
		return 3
	default:
		return 2
	}
}

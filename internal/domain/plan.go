package domain

// Layout describes where the headline sits on the poster.
type Layout string

const (
	LayoutSingleTop      Layout = "single_top"
	LayoutStackedTop     Layout = "stacked_top"
	LayoutSplitTopBottom Layout = "split_top_bottom"
)

// NormalizeLayout coerces unknown values to LayoutSingleTop.
func NormalizeLayout(v string) Layout {
	switch Layout(v) {
	case LayoutStackedTop, LayoutSplitTopBottom:
		return Layout(v)
	default:
		return LayoutSingleTop
	}
}

// PromptPlan is the model-authored edit instruction for a reference poster.
type PromptPlan struct {
	Prompt        string `json:"prompt"`
	Layout        Layout `json:"layout"`
	VisualSummary string `json:"visual_summary"`
}

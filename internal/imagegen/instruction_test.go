package imagegen

import (
	"strings"
	"testing"

	"posterforge/internal/domain"
)

func TestBuildInstruction(t *testing.T) {
	entry := domain.ReferenceEntry{File: "tee.png", Replace: "skull", Keep: "barbed wire"}

	got := BuildInstruction(`  "Audit  The Storm" `, "compass (no numbers or letters)", entry)

	want := `Replace text in the image with "Audit The Storm", replace skull with compass (no numbers or letters), keep barbed wire.`
	if !strings.HasPrefix(got, want) {
		t.Fatalf("instruction = %q, want prefix %q", got, want)
	}
	for _, expect := range []string{styleInstruction, printInstruction, cleanInstruction} {
		if !strings.Contains(got, expect) {
			t.Fatalf("instruction missing %q: %s", expect, got)
		}
	}
}

func TestBuildInstructionDefaults(t *testing.T) {
	got := BuildInstruction("Profit Reign", "3D bar chart (chrome)", domain.ReferenceEntry{File: "unknown.png"})
	checks := []string{
		"replace the main graphic with 3D bar chart (chrome)",
		"keep the shirt, fabric texture, folds, colours, lighting and background.",
	}
	for _, expect := range checks {
		if !strings.Contains(got, expect) {
			t.Fatalf("instruction missing %q: %s", expect, got)
		}
	}
}

func TestBuildInstructionPartialInputs(t *testing.T) {
	cases := []struct {
		name   string
		slogan string
		motif  string
		prefix string
	}{
		{name: "slogan_only", slogan: "Tax Titan", prefix: `Replace text in the image with "Tax Titan", keep `},
		{name: "motif_only", motif: "plain coins (no symbols)", prefix: "Replace the main graphic with plain coins (no symbols), keep "},
		{name: "neither", prefix: styleInstruction},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := BuildInstruction(tc.slogan, tc.motif, domain.ReferenceEntry{})
			if !strings.HasPrefix(got, tc.prefix) {
				t.Fatalf("instruction = %q, want prefix %q", got, tc.prefix)
			}
		})
	}
}

package imagegen

import (
	"fmt"
	"strings"

	"posterforge/internal/domain"
)

const (
	styleInstruction = "Match the original headline lettering, casing, warp and placement."
	printInstruction = "Render the new graphic in the same print style, colours and lighting as the original artwork."
	cleanInstruction = "Do not add any other text, logos, numbers or symbols."
)

// BuildInstruction assembles the edit instruction sent to the image model for
// one slogan, motif and reference entry. Missing entry fields fall back to
// domain.DefaultReferenceEntry.
func BuildInstruction(slogan, motif string, entry domain.ReferenceEntry) string {
	slogan = strings.Join(strings.Fields(strings.NewReplacer(`"`, "", "“", "", "”", "").Replace(slogan)), " ")
	motif = strings.TrimSpace(motif)
	replace := coalesce(entry.Replace, domain.DefaultReferenceEntry.Replace)
	keep := coalesce(entry.Keep, domain.DefaultReferenceEntry.Keep)

	parts := []string{}
	switch {
	case slogan != "" && motif != "":
		parts = append(parts, fmt.Sprintf("Replace text in the image with \"%s\", replace %s with %s, keep %s.", slogan, replace, motif, keep))
	case slogan != "":
		parts = append(parts, fmt.Sprintf("Replace text in the image with \"%s\", keep %s.", slogan, keep))
	case motif != "":
		parts = append(parts, fmt.Sprintf("Replace %s with %s, keep %s.", replace, motif, keep))
	}
	parts = append(parts, styleInstruction, printInstruction, cleanInstruction)
	return strings.Join(parts, " ")
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

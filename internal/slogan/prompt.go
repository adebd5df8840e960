package slogan

import "strings"

const systemPrompt = "You write slogans for a heavy metal-inspired finance t-shirt line. Only output a JSON array of objects with slogan and visual keys. No extra text."

const promptTemplate = `You are an expert copywriter and designer creating slogans for a fictional
heavy metal-inspired finance t-shirt line.

Each output should contain three options.
Each option must have:
- A short slogan (1-4 words only).
- A matching visual motif (one concrete thing or symbol that could appear on a t-shirt).

Rules:
- Tone: dark, intense, poetic, playful, like metal band names.
- Allowed imagery: skulls, fire, lightning, chains, wings, coins, vaults, serpents, machines, storms, beasts, iron, energy, chaos.
- Forbidden imagery: real violence, real weapons, blood, gore, religion, sex, drugs, politics, hate.
- Make motifs physical and visual, things you could depict on a shirt.
- Never include quotation marks, hashtags, or emojis.
- Output in JSON array format, like:
[
  { "slogan": "YOUR SLOGAN", "visual": "YOUR VISUAL" },
  ...
]

Now generate three slogans and visuals inspired by what the user loves about finance:
"{{love}}"
`

const repairPrompt = `The reply below was supposed to be a JSON array of exactly three objects,
each with a "slogan" (1-4 words) and a "visual" string. Rewrite it as that JSON
array and nothing else. Keep the original wording where it is usable; replace
anything unusable with a new option in the same spirit.

Reply:
`

// BuildPrompt interpolates the user's phrase into the slogan template.
func BuildPrompt(love string) string {
	love = strings.ReplaceAll(strings.TrimSpace(love), `"`, "'")
	return strings.Replace(promptTemplate, "{{love}}", love, 1)
}

func buildRepairPrompt(raw string) string {
	return repairPrompt + strings.TrimSpace(raw)
}

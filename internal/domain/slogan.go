package domain

// SloganOption is one generated slogan with the motif to depict next to it.
type SloganOption struct {
	Slogan    string `json:"slogan"`
	Visual    string `json:"visual"`
	RawVisual string `json:"raw_visual,omitempty"`
}

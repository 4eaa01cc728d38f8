package assistant

// Profile captures the assistant attributes exposed to the frontend.
type Profile struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	OpeningLine string   `json:"openingLine"`
	Placeholder string   `json:"placeholder"`
	Suggestions []string `json:"suggestions"`
}

// Default provides the HEVA assistant profile.
func Default() Profile {
	return Profile{
		Name:        "HEVA Bot",
		Title:       "HEVA Assistant",
		Status:      "Always ready to help • Online",
		OpeningLine: "Hello! I'm HEVA's AI assistant. I can help you with funding opportunities, business advice, and connecting with resources. What would you like to know?",
		Placeholder: "Ask me about funding, grants, or business advice...",
		Suggestions: []string{
			"How do I apply for grants?",
			"Business mentorship program",
			"Funding opportunities",
		},
	}
}

// WithName returns a copy of the profile using the given display name.
// A blank name keeps the current one.
func (p Profile) WithName(name string) Profile {
	if name != "" {
		p.Name = name
	}
	p.Suggestions = append([]string(nil), p.Suggestions...)
	return p
}

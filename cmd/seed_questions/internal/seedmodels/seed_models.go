package seedmodels

// SeedTrait defines the structure for a trait entry in the JSON seed file.
// Min/max bounds default to 0..100 when omitted.
type SeedTrait struct {
	Name        string `json:"name"`
	Polarity    string `json:"polarity"`
	Description string `json:"description"`
	MinValue    *int   `json:"min_value,omitempty"`
	MaxValue    *int   `json:"max_value,omitempty"`
}

// SeedOption defines one selectable option of a choice question.
// Value falls back to the label when omitted.
type SeedOption struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// SeedQuestion defines a question entry in the JSON seed file. Follow-ups
// become child questions gated on this question being answered.
type SeedQuestion struct {
	Text         string         `json:"text"`
	Type         string         `json:"type"`
	Category     string         `json:"category,omitempty"`
	Required     bool           `json:"required"`
	DisplayOrder int            `json:"display_order"`
	Options      []SeedOption   `json:"options,omitempty"`
	FollowUps    []SeedQuestion `json:"follow_ups,omitempty"`
}

// SeedFile is the top-level document of the seed file.
type SeedFile struct {
	Traits    []SeedTrait    `json:"traits"`
	Questions []SeedQuestion `json:"questions"`
}

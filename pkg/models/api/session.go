package api

type Trigger struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

type PanelLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Panel struct {
	Title string      `json:"title"`
	Lines []PanelLine `json:"lines,omitempty"`
	Error string      `json:"error,omitempty"`
}

// SessionState is the JSON projection of a session served by /api/v1/state.
type SessionState struct {
	Phase    string         `json:"phase"`
	Form     AnalyzeRequest `json:"form"`
	Trigger  Trigger        `json:"trigger"`
	Data     []DataPoint    `json:"data,omitempty"`
	Insights *Panel         `json:"insights,omitempty"`
}

type FieldUpdate struct {
	Value string `json:"value"`
}

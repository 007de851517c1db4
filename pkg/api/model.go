package api

// ModelDescriptor describes one selectable model. Names are unique within a registry.
type ModelDescriptor struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	Endpoint      string `json:"endpoint,omitempty"`
	UpstreamModel string `json:"upstreamModel"`
	Icon          string `json:"icon,omitempty"`
	Color         string `json:"color,omitempty"`
	Enabled       bool   `json:"enabled"`
}

package models

// ComputeSensitivityRequest represents a request to compute sensitivity curves
type ComputeSensitivityRequest struct {
	Body struct {
		NoiseBudget string   `json:"noise_budget" required:"true" doc:"Noise budget name: redbook or scird, case-insensitive"`
		Duration    float64  `json:"duration" minimum:"0" required:"true" doc:"Mission duration in years"`
		Sources     []string `json:"sources,omitempty" doc:"Selected source names, or 'select all'"`
	}
}

// ComputeSensitivityResponseBody is the body of the sensitivity response
type ComputeSensitivityResponseBody struct {
	ComputationID string `json:"computation_id" doc:"Identifier of this computation, for log correlation"`
	SensitivityResult
}

// ComputeSensitivityResponse represents the computed curves
type ComputeSensitivityResponse struct {
	Body ComputeSensitivityResponseBody
}

// ListSourcesRequest represents a request for the source catalog
type ListSourcesRequest struct{}

// ListSourcesResponseBody is the body of the source catalog response
type ListSourcesResponseBody struct {
	Options []string       `json:"options" doc:"Selector options; 'select all' first, then catalog order"`
	Sources []SourceRecord `json:"sources" doc:"Catalog records"`
}

// ListSourcesResponse represents the source catalog
type ListSourcesResponse struct {
	Body ListSourcesResponseBody
}

// NoiseBudgetOption describes a selectable noise budget
type NoiseBudgetOption struct {
	Name      string    `json:"name" doc:"Noise budget name"`
	Durations []float64 `json:"durations" doc:"Admissible mission durations in years"`
}

// ListConfigurationsResponse represents the selectable configurations
type ListConfigurationsResponse struct {
	Body struct {
		NoiseBudgets []NoiseBudgetOption `json:"noise_budgets" doc:"Noise budgets and their admissible durations"`
	}
}

// GetWaterfallRequest represents a request for waterfall contour data
type GetWaterfallRequest struct {
	NoiseBudget string  `query:"noise_budget" required:"true" doc:"Noise budget name: redbook or scird, case-insensitive"`
	Duration    float64 `query:"duration" required:"true" doc:"Mission duration in years"`
}

// GetWaterfallResponse represents waterfall contour data
type GetWaterfallResponse struct {
	Body WaterfallContour
}

// SectionPage is a dashboard page listed under a section
type SectionPage struct {
	Name string `json:"name" yaml:"name" doc:"Page title"`
	Path string `json:"path" yaml:"path" doc:"Relative page path"`
}

// Section is a navigation section of the dashboard
type Section struct {
	Name        string        `json:"name" yaml:"name" doc:"Section key"`
	Description string        `json:"description" yaml:"description" doc:"Section description shown on hover"`
	Pages       []SectionPage `json:"pages,omitempty" yaml:"pages" doc:"Pages of the section"`
}

// ListSectionsResponse represents the navigation sections
type ListSectionsResponse struct {
	Body struct {
		Sections []Section `json:"sections"`
	}
}

package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/wigwag/internal/api/handlers"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, h *handlers.SensitivityHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listConfigurations",
		Method:      http.MethodGet,
		Path:        "/api/configurations",
		Summary:     "List noise configurations",
		Description: "Returns the noise budgets and their admissible mission durations",
		Tags:        []string{"Sensitivity"},
	}, h.ListConfigurations)

	huma.Register(api, huma.Operation{
		OperationID: "listSources",
		Method:      http.MethodGet,
		Path:        "/api/sources",
		Summary:     "List catalog sources",
		Description: "Returns the source selector options and the verification binary catalog",
		Tags:        []string{"Sensitivity"},
	}, h.ListSources)

	huma.Register(api, huma.Operation{
		OperationID: "computeSensitivity",
		Method:      http.MethodPost,
		Path:        "/api/sensitivity",
		Summary:     "Compute sensitivity",
		Description: "Computes the noise curves and the selected source points for a noise configuration",
		Tags:        []string{"Sensitivity"},
	}, h.ComputeSensitivity)

	huma.Register(api, huma.Operation{
		OperationID: "getWaterfall",
		Method:      http.MethodGet,
		Path:        "/api/waterfall",
		Summary:     "Get SNR waterfall",
		Description: "Returns the precomputed SNR contour over redshift and total mass",
		Tags:        []string{"Waterfall"},
	}, h.GetWaterfall)

	huma.Register(api, huma.Operation{
		OperationID: "listSections",
		Method:      http.MethodGet,
		Path:        "/api/sections",
		Summary:     "List dashboard sections",
		Description: "Returns the navigation sections with their descriptions and pages",
		Tags:        []string{"Navigation"},
	}, h.ListSections)
}

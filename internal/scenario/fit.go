package scenario

import (
	"transitsim/internal/distribution"
	"transitsim/internal/fitting"
)

// FitAlightingRequest runs the discrete-count fitter over every station/
// time-range block in req and renders the external response shape.
func FitAlightingRequest(req *FitRequest) *FitResponse {
	return runFit(req, fitting.FitAlighting)
}

// FitInterarrivalRequest runs the continuous-gap fitter over every
// station/time-range block in req and renders the external response
// shape.
func FitInterarrivalRequest(req *FitRequest) *FitResponse {
	return runFit(req, fitting.FitInterarrival)
}

func runFit(req *FitRequest, fit func([]float64) distribution.Spec) *FitResponse {
	resp := &FitResponse{DataFitResponse: make([]FitResultRow, 0, len(req.Data))}
	for _, block := range req.Data {
		values := make([]float64, len(block.Records))
		for i, r := range block.Records {
			values[i] = r.NumericValue
		}
		spec := fit(values)
		resp.DataFitResponse = append(resp.DataFitResponse, FitResultRow{
			Station:      block.Station,
			TimeRange:    block.TimeRange,
			Distribution: string(spec.Family),
			ArgumentList: spec.Args(),
		})
	}
	return resp
}

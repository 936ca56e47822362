package benchreport

import "github.com/samber/lo"

// StageTimes holds the named stage durations scraped from one run, in seconds.
// A nil field means the stage line was not found in the output.
type StageTimes struct {
	SetupTime          *float64 `json:"setup_time_s,omitempty"`
	RandomInputTime    *float64 `json:"random_input_time_s,omitempty"`
	DBConversionTime   *float64 `json:"db_conversion_time_s,omitempty"`
	UpdateClientTime   *float64 `json:"update_client_time_s,omitempty"`
	UpdateServerTime   *float64 `json:"update_server_time_s,omitempty"`
	PostProcessingTime *float64 `json:"post_processing_time_s,omitempty"`
}

// SearchVariant is one measured search: Value is the searched key,
// TimeSeconds its duration.
type SearchVariant struct {
	Value       int     `json:"value"`
	TimeSeconds float64 `json:"time_s"`
}

// Search holds the two fixed search settings of a sweep point.
// VariantA searches 0, VariantB searches input_range-1.
type Search struct {
	VariantA *SearchVariant `json:"param1,omitempty"`
	VariantB *SearchVariant `json:"param2,omitempty"`
}

// ClientResult is the integer pair reported by one client, one value per
// search variant.
type ClientResult struct {
	VariantA int `json:"param1"`
	VariantB int `json:"param2"`
}

// Results is either fully populated or empty.
type Results struct {
	Client0 *ClientResult `json:"client0,omitempty"`
	Client1 *ClientResult `json:"client1,omitempty"`
}

// Complete reports whether both client payloads are present.
func (r Results) Complete() bool {
	return r.Client0 != nil && r.Client1 != nil
}

// Record is the measurement captured for one successfully built sweep point.
// JSON keys stay compatible with the dataset consumed by visual/script.js.
type Record struct {
	RunID      int `json:"run"`
	InputRange int `json:"input_index_range"`
	StageTimes
	// AvgSearchTime is set only when both search lines were found.
	AvgSearchTime *float64 `json:"avg_search_time_s,omitempty"`
	Search        Search   `json:"search"`
	Results       Results  `json:"results"`
}

// Clone returns a copy of r that shares no pointers with it.
func (r Record) Clone() Record {
	out := r
	out.SetupTime = clonePtr(r.SetupTime)
	out.RandomInputTime = clonePtr(r.RandomInputTime)
	out.DBConversionTime = clonePtr(r.DBConversionTime)
	out.UpdateClientTime = clonePtr(r.UpdateClientTime)
	out.UpdateServerTime = clonePtr(r.UpdateServerTime)
	out.PostProcessingTime = clonePtr(r.PostProcessingTime)
	out.AvgSearchTime = clonePtr(r.AvgSearchTime)
	out.Search.VariantA = clonePtr(r.Search.VariantA)
	out.Search.VariantB = clonePtr(r.Search.VariantB)
	out.Results.Client0 = clonePtr(r.Results.Client0)
	out.Results.Client1 = clonePtr(r.Results.Client1)

	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return lo.ToPtr(*p)
}

// VariantAValue is the key searched by variant A.
const VariantAValue = 0

// VariantBValue is the key searched by variant B for a given input range.
func VariantBValue(inputRange int) int { return inputRange - 1 }

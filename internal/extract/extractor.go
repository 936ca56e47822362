package extract

import (
	"regexp"
	"strconv"

	"github.com/ciricc/sweepbench/pkg/benchreport"
	"github.com/samber/lo"
)

// number accepts plain and scientific notation, e.g. 2.3386e-05.
const number = `([\d.eE+-]+)`

const (
	keySearchA = "search.param1.time_s"
	keySearchB = "search.param2.time_s"
	keyResults = "results"
)

type stage struct {
	key   string
	re    *regexp.Regexp
	field func(*benchreport.StageTimes) **float64
}

func stageLine(label, verb string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(label) + ` ` + verb + `: ` + number + ` seconds`)
}

var stages = []stage{
	{"setup_time_s", stageLine("Setup", "took"), func(s *benchreport.StageTimes) **float64 { return &s.SetupTime }},
	{"random_input_time_s", stageLine("Generate Random Input", "took"), func(s *benchreport.StageTimes) **float64 { return &s.RandomInputTime }},
	{"db_conversion_time_s", stageLine("DB Conversion", "took"), func(s *benchreport.StageTimes) **float64 { return &s.DBConversionTime }},
	{"update_client_time_s", stageLine("Update Client", "takes"), func(s *benchreport.StageTimes) **float64 { return &s.UpdateClientTime }},
	{"update_server_time_s", stageLine("Update Server", "takes"), func(s *benchreport.StageTimes) **float64 { return &s.UpdateServerTime }},
	{"post_processing_time_s", stageLine("Post Processing", "took"), func(s *benchreport.StageTimes) **float64 { return &s.PostProcessingTime }},
}

var (
	searchARe = stageLine("Search 1", "took")
	searchBRe = stageLine("Search 2", "took")

	// resultRe matches "0 - 0 : -1" style lines.
	resultRe = regexp.MustCompile(`(\d+) - (\d+) : (-?\d+)`)

	// tagRe matches keyed lines: "@bench results.client0.param1=-1".
	tagRe = regexp.MustCompile(`(?m)^[ \t]*@bench[ \t]+([A-Za-z0-9_.]+)[ \t]*=[ \t]*(\S+)[ \t]*\r?$`)
)

var resultKeys = []string{
	"results.client0.param1",
	"results.client0.param2",
	"results.client1.param1",
	"results.client1.param2",
}

// Extraction is the outcome of scraping one run's output.
type Extraction struct {
	Record benchreport.Record
	// Missing lists the keys whose pattern was not found.
	Missing []string
	// PositionalFallback is set when results were assigned by occurrence
	// order rather than by tagged keys.
	PositionalFallback bool
}

// Extractor turns free-text program output into a record fragment.
// It never fails: a pattern that does not match leaves its field unset.
type Extractor struct {
	mode Mode
}

func New(opts ...ExtractorOpt) *Extractor {
	o := buildOpts(ExtractorOpts{Mode: ModeAuto}, opts...)
	return &Extractor{mode: o.Mode}
}

func (e *Extractor) Mode() Mode { return e.mode }

// Extract parses text produced by a run for inputRange. RunID is left zero;
// it is assigned when the record is appended to a dataset.
func (e *Extractor) Extract(text string, inputRange int) Extraction {
	var (
		out  = Extraction{Record: benchreport.Record{InputRange: inputRange}}
		tags = e.tags(text)
	)

	for _, st := range stages {
		v, ok := floatValue(text, tags, st.key, st.re)
		if !ok {
			out.Missing = append(out.Missing, st.key)
			continue
		}
		*st.field(&out.Record.StageTimes) = lo.ToPtr(v)
	}

	a, okA := floatValue(text, tags, keySearchA, searchARe)
	b, okB := floatValue(text, tags, keySearchB, searchBRe)
	if okA {
		out.Record.Search.VariantA = &benchreport.SearchVariant{Value: benchreport.VariantAValue, TimeSeconds: a}
	} else {
		out.Missing = append(out.Missing, keySearchA)
	}
	if okB {
		out.Record.Search.VariantB = &benchreport.SearchVariant{Value: benchreport.VariantBValue(inputRange), TimeSeconds: b}
	} else {
		out.Missing = append(out.Missing, keySearchB)
	}
	if okA && okB {
		out.Record.AvgSearchTime = lo.ToPtr((a + b) / 2)
	}

	results, positional, invalid := e.results(text, tags)
	out.Record.Results = results
	out.PositionalFallback = positional && e.mode == ModeAuto
	if !results.Complete() {
		out.Missing = append(out.Missing, keyResults)
		out.Missing = append(out.Missing, invalid...)
	}

	return out
}

// tags collects the first value of every tagged key. Positional mode
// ignores tagged lines entirely.
func (e *Extractor) tags(text string) map[string]string {
	if e.mode == ModePositional {
		return nil
	}

	tags := make(map[string]string)
	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		if _, seen := tags[m[1]]; !seen {
			tags[m[1]] = m[2]
		}
	}

	return tags
}

// results returns the client payloads, whether they were assigned by line
// order, and the keys whose value could not be parsed as an int. A single
// invalid value leaves all payloads empty.
func (e *Extractor) results(text string, tags map[string]string) (benchreport.Results, bool, []string) {
	if lo.SomeBy(resultKeys, func(k string) bool { _, ok := tags[k]; return ok }) {
		res, invalid := taggedResults(tags)
		return res, false, invalid
	}
	if e.mode == ModeTagged {
		return benchreport.Results{}, false, nil
	}

	res, invalid := positionalResults(text)
	return res, res.Complete(), invalid
}

func taggedResults(tags map[string]string) (benchreport.Results, []string) {
	raw := lo.Map(resultKeys, func(k string, _ int) string { return tags[k] })
	return buildResults(raw)
}

// positionalOrder maps the n-th result line to its key: the first two are
// the variant A answers of client0 and client1, the next two the variant B
// answers. Any reordering of the program's output silently mis-assigns them.
var positionalOrder = []int{0, 2, 1, 3}

func positionalResults(text string) (benchreport.Results, []string) {
	matches := resultRe.FindAllStringSubmatch(text, -1)
	if len(matches) < 4 {
		return benchreport.Results{}, nil
	}

	raw := make([]string, len(resultKeys))
	for i, key := range positionalOrder {
		raw[key] = matches[i][3]
	}

	return buildResults(raw)
}

// buildResults parses raw values given in resultKeys order. Absent values
// are not reported as invalid.
func buildResults(raw []string) (benchreport.Results, []string) {
	var (
		vals    = make([]int, len(raw))
		invalid []string
	)
	for i, r := range raw {
		v, err := strconv.Atoi(r)
		if err != nil {
			if r != "" {
				invalid = append(invalid, resultKeys[i])
			}
			continue
		}
		vals[i] = v
	}
	if len(invalid) > 0 || lo.Contains(raw, "") {
		return benchreport.Results{}, invalid
	}

	return benchreport.Results{
		Client0: &benchreport.ClientResult{VariantA: vals[0], VariantB: vals[1]},
		Client1: &benchreport.ClientResult{VariantA: vals[2], VariantB: vals[3]},
	}, nil
}

// floatValue prefers a tagged value for key and falls back to the labelled line.
func floatValue(text string, tags map[string]string, key string, re *regexp.Regexp) (float64, bool) {
	if raw, ok := tags[key]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, true
		}
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

package extract

import (
	"testing"

	"github.com/ciricc/sweepbench/pkg/benchreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `
Setup took: 1.2500 seconds
Generate Random Input took: 0.5 seconds
DB Conversion took: 2.3386e-05 seconds
Update Client takes: 0.01 seconds
Update Server takes: 0.02 seconds
Search 1 took: 0.0001 seconds
0 - 0 : -1
0 - 0 : -1
Search 2 took: 0.0003 seconds
99 - 99 : 1
99 - 99 : 1
Post Processing took: 3 seconds
`

func TestExtract_FullOutput(t *testing.T) {
	ex := New().Extract(sampleOutput, 100)
	rec := ex.Record

	assert.Equal(t, 100, rec.InputRange)
	assert.Zero(t, rec.RunID)
	require.NotNil(t, rec.SetupTime)
	assert.Equal(t, 1.25, *rec.SetupTime)
	require.NotNil(t, rec.RandomInputTime)
	assert.Equal(t, 0.5, *rec.RandomInputTime)
	require.NotNil(t, rec.DBConversionTime)
	assert.Equal(t, 2.3386e-05, *rec.DBConversionTime)
	require.NotNil(t, rec.UpdateClientTime)
	assert.Equal(t, 0.01, *rec.UpdateClientTime)
	require.NotNil(t, rec.UpdateServerTime)
	assert.Equal(t, 0.02, *rec.UpdateServerTime)
	require.NotNil(t, rec.PostProcessingTime)
	assert.Equal(t, 3.0, *rec.PostProcessingTime)

	require.NotNil(t, rec.Search.VariantA)
	assert.Equal(t, 0, rec.Search.VariantA.Value)
	assert.Equal(t, 0.0001, rec.Search.VariantA.TimeSeconds)
	require.NotNil(t, rec.Search.VariantB)
	assert.Equal(t, 99, rec.Search.VariantB.Value)
	assert.Equal(t, 0.0003, rec.Search.VariantB.TimeSeconds)
	require.NotNil(t, rec.AvgSearchTime)
	assert.InDelta(t, 0.0002, *rec.AvgSearchTime, 1e-12)

	assert.Equal(t, &benchreport.ClientResult{VariantA: -1, VariantB: 1}, rec.Results.Client0)
	assert.Equal(t, &benchreport.ClientResult{VariantA: -1, VariantB: 1}, rec.Results.Client1)
	assert.True(t, ex.PositionalFallback)
	assert.Empty(t, ex.Missing)
}

func TestExtract_PositionalMapping(t *testing.T) {
	text := "1 - 1 : 10\n2 - 2 : 20\n3 - 3 : 30\n4 - 4 : 40\n5 - 5 : 50\n"

	rec := New().Extract(text, 10).Record

	assert.Equal(t, &benchreport.ClientResult{VariantA: 10, VariantB: 30}, rec.Results.Client0)
	assert.Equal(t, &benchreport.ClientResult{VariantA: 20, VariantB: 40}, rec.Results.Client1)
}

func TestExtract_FewerThanFourResults(t *testing.T) {
	text := "0 - 0 : -1\n0 - 0 : -1\n99 - 99 : 1\n"

	ex := New().Extract(text, 100)

	assert.Nil(t, ex.Record.Results.Client0)
	assert.Nil(t, ex.Record.Results.Client1)
	assert.False(t, ex.PositionalFallback)
	assert.Contains(t, ex.Missing, "results")
}

func TestExtract_OverflowingResultIsReported(t *testing.T) {
	text := "0 - 0 : -1\n0 - 0 : 99999999999999999999\n5 - 5 : 4\n6 - 6 : 4\n"

	ex := New().Extract(text, 100)

	assert.Nil(t, ex.Record.Results.Client0)
	assert.Nil(t, ex.Record.Results.Client1)
	assert.False(t, ex.PositionalFallback)
	assert.Contains(t, ex.Missing, "results")
	assert.Contains(t, ex.Missing, "results.client1.param1")
}

func TestExtract_InvalidTaggedResultIsReported(t *testing.T) {
	text := `@bench results.client0.param1=-1
@bench results.client0.param2=7
@bench results.client1.param1=abc
@bench results.client1.param2=4
`

	ex := New(WithMode(ModeTagged)).Extract(text, 100)

	assert.False(t, ex.Record.Results.Complete())
	assert.Equal(t, []string{"results", "results.client1.param1"}, ex.Missing[len(ex.Missing)-2:])
}

func TestExtract_EmptyOutput(t *testing.T) {
	ex := New().Extract("", 50)
	rec := ex.Record

	assert.Equal(t, 50, rec.InputRange)
	assert.Nil(t, rec.SetupTime)
	assert.Nil(t, rec.PostProcessingTime)
	assert.Nil(t, rec.AvgSearchTime)
	assert.Nil(t, rec.Search.VariantA)
	assert.Nil(t, rec.Search.VariantB)
	assert.False(t, rec.Results.Complete())
	assert.Len(t, ex.Missing, len(stages)+3)
}

func TestExtract_OnlyOneSearch(t *testing.T) {
	rec := New().Extract("Search 2 took: 0.5 seconds\n", 8).Record

	assert.Nil(t, rec.Search.VariantA)
	require.NotNil(t, rec.Search.VariantB)
	assert.Equal(t, 7, rec.Search.VariantB.Value)
	assert.Nil(t, rec.AvgSearchTime)
}

func TestExtract_UnparsableNumberLeavesFieldUnset(t *testing.T) {
	rec := New().Extract("Setup took: 1.2.3 seconds\nDB Conversion took: -- seconds\n", 1).Record

	assert.Nil(t, rec.SetupTime)
	assert.Nil(t, rec.DBConversionTime)
}

func TestExtract_FirstMatchWins(t *testing.T) {
	rec := New().Extract("Setup took: 1 seconds\nSetup took: 2 seconds\n", 1).Record

	require.NotNil(t, rec.SetupTime)
	assert.Equal(t, 1.0, *rec.SetupTime)
}

func TestExtract_TaggedResultsAreOrderIndependent(t *testing.T) {
	text := `
@bench results.client1.param2=4
@bench results.client0.param1=1
99 - 99 : 7
@bench results.client1.param1=3
0 - 0 : 7
@bench results.client0.param2=2
0 - 0 : 7
99 - 99 : 7
`
	for _, mode := range []Mode{ModeAuto, ModeTagged} {
		t.Run(string(mode), func(t *testing.T) {
			ex := New(WithMode(mode)).Extract(text, 100)

			assert.Equal(t, &benchreport.ClientResult{VariantA: 1, VariantB: 2}, ex.Record.Results.Client0)
			assert.Equal(t, &benchreport.ClientResult{VariantA: 3, VariantB: 4}, ex.Record.Results.Client1)
			assert.False(t, ex.PositionalFallback)
		})
	}
}

func TestExtract_PositionalModeIgnoresTags(t *testing.T) {
	text := `
@bench setup_time_s=9
@bench results.client0.param1=1
Setup took: 1 seconds
5 - 5 : 5
6 - 6 : 6
7 - 7 : 7
8 - 8 : 8
`
	ex := New(WithMode(ModePositional)).Extract(text, 10)

	require.NotNil(t, ex.Record.SetupTime)
	assert.Equal(t, 1.0, *ex.Record.SetupTime)
	assert.Equal(t, &benchreport.ClientResult{VariantA: 5, VariantB: 7}, ex.Record.Results.Client0)
	assert.False(t, ex.PositionalFallback)
}

func TestExtract_TaggedModeDoesNotFallBack(t *testing.T) {
	ex := New(WithMode(ModeTagged)).Extract(sampleOutput, 100)

	assert.False(t, ex.Record.Results.Complete())
	assert.False(t, ex.PositionalFallback)
	require.NotNil(t, ex.Record.AvgSearchTime)
}

func TestExtract_IncompleteTagsLeaveResultsEmpty(t *testing.T) {
	text := "@bench results.client0.param1=1\n0 - 0 : 1\n0 - 0 : 1\n0 - 0 : 1\n0 - 0 : 1\n"

	ex := New().Extract(text, 10)

	assert.False(t, ex.Record.Results.Complete())
	assert.False(t, ex.PositionalFallback)
}

func TestExtract_TaggedStageOverridesLabel(t *testing.T) {
	text := "Setup took: 1 seconds\n@bench setup_time_s=1.5\n@bench search.param1.time_s=2e-4\n"

	rec := New().Extract(text, 10).Record

	require.NotNil(t, rec.SetupTime)
	assert.Equal(t, 1.5, *rec.SetupTime)
	require.NotNil(t, rec.Search.VariantA)
	assert.Equal(t, 2e-4, rec.Search.VariantA.TimeSeconds)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	m, err = ParseMode("positional")
	require.NoError(t, err)
	assert.Equal(t, ModePositional, m)

	_, err = ParseMode("bogus")
	assert.Error(t, err)
}

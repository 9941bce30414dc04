package rules_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timepay-engine/rules"
)

func TestParseMinuteOfDay(t *testing.T) {
	m, err := rules.ParseMinuteOfDay("07:30")
	require.NoError(t, err)
	assert.Equal(t, rules.MinuteOfDay(450), m)
	assert.Equal(t, "07:30", m.String())

	for _, bad := range []string{"", "7:30", "24:00", "12:60", "12-30", "noon"} {
		_, err := rules.ParseMinuteOfDay(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestMinuteOfDayAt(t *testing.T) {
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	m, _ := rules.ParseMinuteOfDay("12:05")
	assert.Equal(t, time.Date(2025, time.March, 10, 12, 5, 0, 0, time.UTC), m.At(date))
}

func TestDefaultsValidate(t *testing.T) {
	// GIVEN: the documented defaults
	// THEN: they validate as-is
	set, err := rules.Defaults().Validate()
	require.NoError(t, err)
	assert.Equal(t, 5, set.GraceMinutes)
	assert.Equal(t, 30, set.StandardLunchMinutes)
	assert.Equal(t, 2*time.Minute, set.MainDuplicateGap)
	assert.Equal(t, time.Minute, set.BathroomDuplicateGap)
}

func TestMergeWithDefaults_PartialDocument(t *testing.T) {
	// GIVEN: a document overriding only the grace period
	doc := rules.Document{GraceMinutes: 10}

	// WHEN: merging against defaults
	set, err := doc.MergeWithDefaults().Validate()
	require.NoError(t, err)

	// THEN: the override sticks and everything else is default
	assert.Equal(t, 10, set.GraceMinutes)
	assert.Equal(t, rules.MinuteOfDay(450), set.StandardStart) // 07:30
	assert.Equal(t, 15, set.LongBathroomMinutes)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	// GIVEN: a document with several independent problems
	doc := rules.Defaults()
	doc.Clock1MaxTime = "25:00"
	doc.GraceMinutes = 99
	doc.LongBathroomMinutes = 500

	// WHEN: validating
	_, err := doc.Validate()
	require.Error(t, err)

	// THEN: all three violations are reported together
	var vErr *rules.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 3)
}

func TestValidate_WindowOrdering(t *testing.T) {
	doc := rules.Defaults()
	doc.Clock2WindowStart = "13:00"
	doc.Clock2WindowEnd = "11:00"

	_, err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clock2 window")
}

package split

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		target   float64
		want     int
	}{
		{"shorter than target", 30, 60, 1},
		{"exactly target", 60, 60, 1},
		{"just over target", 60.001, 60, 2},
		{"uneven", 113, 60, 2},
		{"even multiple", 1800, 600, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentCount(tt.duration, tt.target))
		})
	}
}

func TestSelectSplits_SnapsToSilence(t *testing.T) {
	got, err := SelectSplits([]Silence{{Start: 53, End: 55}}, 113, 60, 20)
	require.NoError(t, err)

	if diff := cmp.Diff([]float64{54.0}, got); diff != "" {
		t.Errorf("SelectSplits() mismatch (-want +got):\n%s", diff)
	}

	segments := BuildSegments(got)
	require.Len(t, segments, 2)
	assert.Equal(t, "0.000-54.000", segments[0].String())
	assert.Equal(t, "54.000-end", segments[1].String())
}

func TestSelectSplits_NoSilences(t *testing.T) {
	got, err := SelectSplits(nil, 113, 60, 20)
	require.NoError(t, err)
	assert.Equal(t, []float64{56.5}, got)
}

func TestSelectSplits_SilencesOutsideTolerance(t *testing.T) {
	silences := []Silence{
		{Start: 2, End: 4},
		{Start: 20, End: 25},
		{Start: 50, End: 59},
	}

	got, err := SelectSplits(silences, 1800, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{600.0, 1200.0}, got)
}

func TestSelectSplits_SingleSegment(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
	}{
		{"shorter than target", 10},
		{"equal to target", 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectSplits([]Silence{{Start: 1, End: 2}}, tt.duration, 600, 30)
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.NotNil(t, got)
		})
	}
}

func TestSelectSplits_LongestSilenceWins(t *testing.T) {
	short := Silence{Start: 595, End: 596}
	long := Silence{Start: 603, End: 607}

	for _, order := range [][]Silence{{short, long}, {long, short}} {
		got, err := SelectSplits(order, 1800, 600, 30)
		require.NoError(t, err)
		assert.Equal(t, []float64{605.0, 1200.0}, got)
	}
}

func TestSelectSplits_EqualLengthKeepsFirst(t *testing.T) {
	first := Silence{Start: 590, End: 592}
	second := Silence{Start: 610, End: 612}

	got, err := SelectSplits([]Silence{first, second}, 1800, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{591.0, 1200.0}, got)

	got, err = SelectSplits([]Silence{second, first}, 1800, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{611.0, 1200.0}, got)
}

func TestSelectSplits_SilenceAssignedToOneBoundary(t *testing.T) {
	silences := []Silence{
		{Start: 598, End: 602},
		{Start: 1195, End: 1197},
	}

	got, err := SelectSplits(silences, 1800, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{600.0, 1196.0}, got)
}

// Ownership uses the target grid while the tolerance check uses the even grid.
// These cases pin the resulting behavior where the two disagree.
func TestSelectSplits_DualGrid(t *testing.T) {
	t.Run("silence near second boundary owned by first", func(t *testing.T) {
		// duration 1300, target 600: three segments, even length 433.33.
		// Midpoint 880 is 13.3s from the second uniform boundary but projects
		// onto index 0 of the target grid, where it is 446s away.
		got, err := SelectSplits([]Silence{{Start: 878, End: 882}}, 1300, 600, 30)
		require.NoError(t, err)

		even := 1300.0 / 3
		assert.Equal(t, []float64{1 * even, 2 * even}, got)
	})

	t.Run("silence within tolerance but below first grid cell", func(t *testing.T) {
		// duration 1000, target 600: two segments, boundary at 500.
		// Midpoint 290 is within 250s of it but projects to index -1.
		got, err := SelectSplits([]Silence{{Start: 288, End: 292}}, 1000, 600, 250)
		require.NoError(t, err)
		assert.Equal(t, []float64{500.0}, got)
	})

	t.Run("silence just inside first grid cell", func(t *testing.T) {
		got, err := SelectSplits([]Silence{{Start: 308, End: 312}}, 1000, 600, 250)
		require.NoError(t, err)
		assert.Equal(t, []float64{310.0}, got)
	})
}

func TestSelectSplits_ToleranceBoundaryInclusive(t *testing.T) {
	got, err := SelectSplits([]Silence{{Start: 569, End: 571}}, 1800, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{570.0, 1200.0}, got)

	got, err = SelectSplits([]Silence{{Start: 568, End: 570}}, 1800, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{600.0, 1200.0}, got)
}

func TestSelectSplits_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		target    float64
		tolerance float64
	}{
		{"zero duration", 0, 600, 30},
		{"negative duration", -1, 600, 30},
		{"NaN duration", math.NaN(), 600, 30},
		{"infinite duration", math.Inf(1), 600, 30},
		{"zero target", 100, 0, 30},
		{"negative target", 100, -5, 30},
		{"negative tolerance", 100, 60, -1},
		{"NaN tolerance", 100, 60, math.NaN()},
		{"too many segments", 3600, 0.000001, 0},
		{"just over segment cap", MaxSegments + 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectSplits(nil, tt.duration, tt.target, tt.tolerance)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestSelectSplits_UniformWithoutSilences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for n := 0; n < 200; n++ {
		duration := 1 + rng.Float64()*10000
		target := 1 + rng.Float64()*900

		got, err := SelectSplits(nil, duration, target, 30)
		require.NoError(t, err)

		count := int(math.Ceil(duration / target))
		require.Len(t, got, count-1)
		for k := 1; k < count; k++ {
			assert.Equal(t, float64(k)*(duration/float64(count)), got[k-1])
		}
	}
}

func TestSelectSplits_OrderedAndInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n < 200; n++ {
		duration := 60 + rng.Float64()*7200
		target := 10 + rng.Float64()*600
		even := duration / float64(SegmentCount(duration, target))
		tolerance := rng.Float64() * even / 2

		var silences []Silence
		for j := rng.Intn(50); j > 0; j-- {
			start := rng.Float64() * duration
			end := math.Min(duration, start+rng.Float64()*5)
			silences = append(silences, Silence{Start: start, End: end})
		}

		got, err := SelectSplits(silences, duration, target, tolerance)
		require.NoError(t, err)
		require.Len(t, got, SegmentCount(duration, target)-1)

		prev := 0.0
		for _, p := range got {
			assert.Greater(t, p, prev)
			assert.Less(t, p, duration)
			prev = p
		}

		again, err := SelectSplits(silences, duration, target, tolerance)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestSelectSplits_AtSegmentCap(t *testing.T) {
	got, err := SelectSplits(nil, MaxSegments, 1, 0)
	require.NoError(t, err)
	assert.Len(t, got, MaxSegments-1)
}

func TestSelectSplits_WideToleranceCanReorder(t *testing.T) {
	// Three segments of 403.33s; midpoint 890 is owned by the first boundary
	// but lands past the second one.
	got, err := SelectSplits([]Silence{{Start: 888, End: 892}}, 1210, 600, 500)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 890.0, got[0])
	assert.Greater(t, got[0], got[1])
}

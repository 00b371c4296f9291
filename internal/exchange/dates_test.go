package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplitDateRange(t *testing.T) {
	t.Run("single day", func(t *testing.T) {
		got := SplitDateRange(day(2025, 1, 1), day(2025, 1, 1), 30)
		require.Equal(t, []DateRange{{From: day(2025, 1, 1), To: day(2025, 1, 1)}}, got)
	})

	t.Run("exact chunk", func(t *testing.T) {
		got := SplitDateRange(day(2025, 1, 1), day(2025, 1, 30), 30)
		require.Len(t, got, 1)
		require.Equal(t, day(2025, 1, 30), got[0].To)
	})

	t.Run("chunks are contiguous", func(t *testing.T) {
		got := SplitDateRange(day(2024, 12, 15), day(2025, 3, 2), 30)
		require.Len(t, got, 3)
		require.Equal(t, day(2024, 12, 15), got[0].From)
		require.Equal(t, day(2025, 1, 13), got[0].To)
		require.Equal(t, day(2025, 1, 14), got[1].From)
		require.Equal(t, day(2025, 2, 12), got[1].To)
		require.Equal(t, day(2025, 2, 13), got[2].From)
		require.Equal(t, day(2025, 3, 2), got[2].To)
	})

	t.Run("reversed range", func(t *testing.T) {
		require.Nil(t, SplitDateRange(day(2025, 2, 1), day(2025, 1, 1), 30))
	})

	t.Run("non-positive chunk size", func(t *testing.T) {
		got := SplitDateRange(day(2025, 1, 1), day(2025, 1, 3), 0)
		require.Len(t, got, 3)
	})
}

func TestQueryValidation(t *testing.T) {
	_, err := SecuritiesQuery{Group: "zz"}.params()
	require.ErrorIs(t, err, ErrInvalidGroup)

	params, err := SecuritiesQuery{Group: "b"}.params()
	require.NoError(t, err)
	require.Equal(t, "B", params["Group"])

	params, err = SecuritiesQuery{}.params()
	require.NoError(t, err)
	require.Equal(t, "A", params["Group"])
	require.Equal(t, "Equity", params["segment"])
	require.Equal(t, "Active", params["status"])

	_, err = MoversQuery{PctChange: "7"}.params("gainer")
	require.Error(t, err)

	params, err = MoversQuery{By: MoversByAll}.params("loser")
	require.NoError(t, err)
	require.NotContains(t, params, "IndxGrpval")

	params, err = MoversQuery{By: MoversByIndex, Name: "bse 500"}.params("gainer")
	require.NoError(t, err)
	require.Equal(t, "BSE 500", params["IndxGrpval"])

	params, err = MoversQuery{By: MoversByIndex, Name: "S&P BSE 500"}.highLowParams()
	require.NoError(t, err)
	require.Equal(t, "S&P BSE 500", params["indexcode"])
	require.Empty(t, params["Grpcode"])

	params, err = MoversQuery{By: MoversByIndex, Name: "bse 500"}.highLowParams()
	require.NoError(t, err)
	require.Equal(t, "bse 500", params["indexcode"])

	_, err = ResultCalendarQuery{From: day(2025, 2, 1), To: day(2025, 1, 1)}.params()
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestAnnouncementDefaultsToToday(t *testing.T) {
	now := time.Date(2025, 6, 9, 14, 0, 0, 0, time.UTC)
	params, err := AnnouncementQuery{}.params(now)
	require.NoError(t, err)
	require.Equal(t, "20250609", params["strPrevDate"])
	require.Equal(t, "20250609", params["strToDate"])
	require.Equal(t, "-1", params["strCat"])
	require.Equal(t, "C", params["strType"])
	require.NotContains(t, params, "strscrip")
}

func TestParseSegment(t *testing.T) {
	seg, err := ParseSegment("")
	require.NoError(t, err)
	require.Equal(t, SegmentEquity, seg)

	seg, err = ParseSegment(" MF_ETF ")
	require.NoError(t, err)
	require.Equal(t, SegmentMFETF, seg)

	_, err = ParseSegment("futures")
	require.Error(t, err)
}

package lookup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const peerSearchFragment = `<ul>
  <li class="quotemenu">
    <a href="/stock-share-price/hdfc-bank-ltd/hdfcbank/500180/">HDFC Bank Ltd<br>HDFCBANK&nbsp;&nbsp;&nbsp;INE040A01034<br>500180</a>
  </li>
  <li class="quotemenu">
    <a href="/stock-share-price/hdfc-life/hdfclife/540777/">HDFC Life Insurance Company Ltd<br>HDFCLIFE&nbsp;&nbsp;&nbsp;INE795G01014<br>540777</a>
  </li>
</ul>`

func TestParseFragment(t *testing.T) {
	entries := Parse(peerSearchFragment)

	require.Equal(t, []Entry{
		{CompanyName: "HDFC Bank Ltd", Symbol: "HDFCBANK", ISIN: "INE040A01034", BSECode: "500180"},
		{CompanyName: "HDFC Life Insurance Company Ltd", Symbol: "HDFCLIFE", ISIN: "INE795G01014", BSECode: "540777"},
	}, entries)
}

func TestParseIgnoresTextOutsideAnchors(t *testing.T) {
	entries := Parse(`<div>No match <b>found</b></div>`)
	require.Empty(t, entries)
}

func TestParseMalformedMarkup(t *testing.T) {
	entries := Parse(`<a>Only a name`)
	require.Empty(t, entries)
}

func TestFeedTracksParserState(t *testing.T) {
	p := NewParser()
	Feed(p, `<a>HDFC Bank Ltd<br>HDFCBANK  INE040A01034`)

	require.True(t, p.Active())
	require.Equal(t, 3, p.Index())
}

func TestMatchScripName(t *testing.T) {
	markup := `<li><a><span>HDFC&nbsp;&nbsp;&nbsp;INE001A01036&nbsp;&nbsp;&nbsp;<strong>500010</strong></span></a></li>`

	name, ok := MatchScripName(markup, "500010")
	require.True(t, ok)
	require.Equal(t, "HDFC", name)

	_, ok = MatchScripName(markup, "500180")
	require.False(t, ok)

	_, ok = MatchScripName(markup, "")
	require.False(t, ok)
}

func TestMatchScripCode(t *testing.T) {
	markup := `<li><a><strong>HDFC</strong>&nbsp;&nbsp;&nbsp;INE001A01036&nbsp;&nbsp;&nbsp;500010</a></li>`

	code, ok := MatchScripCode(markup, "hdfc")
	require.True(t, ok)
	require.Equal(t, "500010", code)

	_, ok = MatchScripCode(markup, "HDFCBANK")
	require.False(t, ok)
}

func TestFindHelpers(t *testing.T) {
	entries := Parse(peerSearchFragment)

	e, ok := FindByCode(entries, "540777")
	require.True(t, ok)
	require.Equal(t, "HDFCLIFE", e.Symbol)

	e, ok = FindBySymbol(entries, "hdfcbank")
	require.True(t, ok)
	require.Equal(t, "500180", e.BSECode)

	_, ok = FindByCode(entries, "")
	require.False(t, ok)
}

const highlightedFragment = `<ul>` +
	`<li><a href="#"><strong>HDFC</strong> Bank Ltd<br>HDFCBANK&nbsp;&nbsp;&nbsp;INE040A01034<br>500180</a></li>` +
	`<li><a href="#"><strong>HDFC</strong> Life Insurance Company Ltd<br>HDFCLIFE&nbsp;&nbsp;&nbsp;INE795G01014<br>540777</a></li>` +
	`</ul>`

func TestParseSplitTextShiftsFields(t *testing.T) {
	entries := Parse(highlightedFragment)

	require.Len(t, entries, 2)
	require.Equal(t, "HDFC", entries[0].CompanyName)
	require.Equal(t, "500180", entries[1].CompanyName)
	require.Equal(t, "HDFC", entries[1].Symbol)
	for _, e := range entries {
		require.False(t, e.Valid(), "%+v", e)
	}

	_, ok := FindBySymbol(entries, "HDFC")
	require.False(t, ok)
	_, ok = FindByCode(entries, "500180")
	require.False(t, ok)
}

func TestParseNestedSpans(t *testing.T) {
	markup := `<a><span>HDFC Bank <em>Ltd</em></span><br><span>HDFCBANK</span> <span>INE040A01034</span><br>500180</a>`

	var entries []Entry
	require.NotPanics(t, func() { entries = Parse(markup) })
	require.Equal(t, []Entry{{
		CompanyName: "HDFC Bank",
		Symbol:      "Ltd",
		ISIN:        "HDFCBANK",
		BSECode:     "INE040A01034",
	}}, entries)
	require.False(t, entries[0].Valid())

	_, ok := FindByCode(entries, "500180")
	require.False(t, ok)
}

func TestEntryValid(t *testing.T) {
	require.True(t, Entry{Symbol: "HDFCBANK", ISIN: "INE040A01034", BSECode: "500180"}.Valid())
	require.False(t, Entry{Symbol: "HDFCLIFE   INE795G01014", ISIN: "INE795G01014", BSECode: "540777"}.Valid())
	require.False(t, Entry{Symbol: "HDFC", ISIN: "Life Insurance Company Ltd", BSECode: "500180"}.Valid())
	require.False(t, Entry{Symbol: "HDFCBANK", ISIN: "INE040A01034", BSECode: "50018"}.Valid())

	require.True(t, ValidSymbol("M2M"))
	require.False(t, ValidSymbol("hdfc"))
	require.True(t, ValidCode("500180"))
	require.False(t, ValidCode("HDFCLIFE   INE795G01014"))
}

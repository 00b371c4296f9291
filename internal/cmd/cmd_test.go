package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bselens/bselens/internal/config"
	apperrors "github.com/bselens/bselens/internal/errors"
	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/lookup"
	"github.com/bselens/bselens/internal/store"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)

	for _, value := range []string{"2025-03-14", "20250314", "14/03/2025"} {
		got, err := parseDate(value)
		require.NoError(t, err, value)
		assert.True(t, want.Equal(got), value)
	}

	got, err := parseDate("  ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDate("14 March")
	require.Error(t, err)
}

func TestDateRangeFlagsRequireBoth(t *testing.T) {
	c := newTestCommand()
	require.NoError(t, c.Flags().Set("from", "2025-01-01"))

	_, _, err := dateRangeFlags(c)
	require.Error(t, err)

	require.NoError(t, c.Flags().Set("to", "2025-01-31"))
	from, to, err := dateRangeFlags(c)
	require.NoError(t, err)
	assert.Equal(t, 30, int(to.Sub(from).Hours()/24))
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]exchange.IndexPeriod{
		"":        exchange.PeriodDaily,
		"daily":   exchange.PeriodDaily,
		"M":       exchange.PeriodMonthly,
		"yearly":  exchange.PeriodYearly,
		" Daily ": exchange.PeriodDaily,
	}
	for input, want := range cases {
		got, err := parsePeriod(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := parsePeriod("weekly")
	require.Error(t, err)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ExitCodeFor(fmt.Errorf("quote: %w", exchange.ErrTimeout)))
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ExitCodeFor(&exchange.StatusError{Endpoint: "HighLow", StatusCode: 500}))
	assert.Equal(t, foundry.ExitConfigInvalid, ExitCodeFor(apperrors.WrapConfigInvalid(context.Background(), fmt.Errorf("bad"), "invalid")))
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(exchange.ErrScripNotFound))
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(nil))
}

func TestMarshalConfigMasksToken(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "libsql", URL: "libsql://db.turso.io", AuthToken: "secret"}}

	data, err := marshalConfig(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "libsql://db.turso.io")
	assert.Equal(t, "secret", cfg.Store.AuthToken)
}

func TestCachedScripsDataset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := cachedScripsDataset([]store.CachedScrip{{
		Entry:     lookup.Entry{CompanyName: "Infosys Ltd", Symbol: "INFY", ISIN: "INE009A01021", BSECode: "500209"},
		CachedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}}, now)

	require.Len(t, d.Rows, 1)
	assert.Equal(t, "500209", d.Rows[0][0])
	assert.Equal(t, "true", d.Rows[0][6])
	assert.Equal(t, "1 cached", d.Footer)
}

func TestLookupCommand(t *testing.T) {
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/PeerSmartSearch/w" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<li><a href="#">Infosys Ltd<br>INFY&nbsp;&nbsp;&nbsp;INE009A01021<br>500209</a></li>`))
	}))
	t.Cleanup(fake.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
exchange:
  api_url: %s/api
cache:
  lookup_ttl: 0s
`, fake.URL)), 0o600))
	outPath := filepath.Join(dir, "out.json")

	rootCmd.SetArgs([]string{"--config", cfgPath, "lookup", "infosys", "-o", "json", "--out", outPath})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var entries []lookup.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Equal(t, []lookup.Entry{{CompanyName: "Infosys Ltd", Symbol: "INFY", ISIN: "INE009A01021", BSECode: "500209"}}, entries)
}

func newTestCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addDateRangeFlags(c)
	return c
}

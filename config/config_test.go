package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hsharma0052/etlverify/etlbase"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "etlverify.yaml")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0644))
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
environments:
  staging:
    reference: postgres://ref@localhost:5432/etl
    candidate: postgres://cand@localhost:5433/etl
categories:
  sales:
    - orders
    - order_items
  crm:
    - customers
pool:
  min_conns: 1
  max_conns: 3
query_timeout: 30s
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, []string{"staging"}, cfg.EnvironmentNames())
	require.Equal(t, []string{"crm", "sales"}, cfg.CategoryNames())
	require.Equal(t, []string{"orders", "order_items"}, cfg.TablesFor("sales"))
	require.Equal(t, 1, cfg.Pool.MinConns)
	require.Equal(t, 3, cfg.Pool.MaxConns)
	require.Equal(t, 30*time.Second, cfg.QueryTimeout)

	ref, err := cfg.ConnString("staging", SourceReference)
	require.NoError(t, err)
	require.Equal(t, "postgres://ref@localhost:5432/etl", ref)
	cand, err := cfg.ConnString("staging", SourceCandidate)
	require.NoError(t, err)
	require.Equal(t, "postgres://cand@localhost:5433/etl", cand)
}

func TestLoadDefaults(t *testing.T) {
	p := writeConfig(t, `
environments:
  staging:
    reference: postgres://ref@localhost:5432/etl
    candidate: postgres://cand@localhost:5433/etl
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, DefaultMinConns, cfg.Pool.MinConns)
	require.Equal(t, DefaultMaxConns, cfg.Pool.MaxConns)
	require.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout)
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		contents string
	}{
		{desc: "no environments", contents: `categories: {}`},
		{
			desc: "missing candidate",
			contents: `
environments:
  staging:
    reference: postgres://ref@localhost:5432/etl
`,
		},
		{
			desc: "min above max",
			contents: `
environments:
  staging:
    reference: a
    candidate: b
pool:
  min_conns: 10
  max_conns: 2
`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.contents))
			require.Error(t, err)
			require.True(t, etlbase.IsConfiguration(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, etlbase.IsConfiguration(err))
}

func TestUnknownLookups(t *testing.T) {
	cfg := &Config{
		Environments: map[string]Environment{
			"staging": {Reference: "a", Candidate: "b"},
		},
		Categories: map[string][]string{"sales": {"orders"}},
	}

	require.Empty(t, cfg.TablesFor("unknown"))

	_, err := cfg.ConnString("unknown", SourceReference)
	require.Error(t, err)
	require.True(t, etlbase.IsConfiguration(err))

	_, err = cfg.ConnString("staging", "neither")
	require.Error(t, err)
	require.True(t, etlbase.IsConfiguration(err))
}

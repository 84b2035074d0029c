package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesde-ntp/tablero/copywriter"
	"github.com/cesde-ntp/tablero/faults"
)

const salesCSV = `Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales
1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74
2,Super Mario Bros.,NES,1985,Platform,Nintendo,29.08,3.58,6.81,0.77,40.24
3,Mario Kart Wii,Wii,2008,Racing,Nintendo,15.85,12.88,3.79,3.31,35.82
17,Grand Theft Auto V,PS3,2013,Action,Take-Two Interactive,7.01,9.27,0.97,4.14,21.4
29,Gran Turismo 3: A-Spec,PS2,2001,Racing,Sony Computer Entertainment,6.85,5.09,1.87,1.16,14.98
220,FIFA 16,PS4,2015,Sports,Electronic Arts,1.11,3.27,0.06,0.96,5.4
`

// resetFlags restores every flag and package-level flag variable.
func resetFlags() {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			f.Changed = false
			_ = f.Value.Set(f.DefValue)
		})
	}
	reset(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}

	// pflag's slice Set("[]") appends a literal "[]" rather than clearing.
	exploreToggles = nil
	chartsPublishers, chartsPlatforms = nil, nil
	filterEq, filterNe, filterIn = nil, nil, nil
	filterGt, filterGte, filterLt, filterLte = nil, nil, nil, nil
	filterColumns = nil
	profileRecover = nil
	copyBrief = copywriter.DefaultBrief()
}

// testEnv points config and secrets at an empty directory and writes the
// sales fixture into it.
func testEnv(t *testing.T) (dir, data string) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)
	for _, k := range []string{
		"GOOGLE_API_KEY", "OPENWEATHER_API_KEY", "ANTHROPIC_API_KEY",
		"TABLERO_DATA", "TABLERO_COPY_PROVIDER", "TABLERO_COPY_MODEL", "TABLERO_COPY_ENDPOINT",
		"TABLERO_WEATHER_BASE_URL",
	} {
		t.Setenv(k, "")
	}
	dir = t.TempDir()
	data = filepath.Join(dir, "vgsales.csv")
	require.NoError(t, os.WriteFile(data, []byte(salesCSV), 0o600))
	return dir, data
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--no-color", "--quiet"))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ece *exitCodeError
	require.True(t, errors.As(err, &ece), "want exitCodeError, got %v", err)
	return ece.code
}

// ============================================================================
// ROOT
// ============================================================================

func TestRootHelp(t *testing.T) {
	resetFlags()
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "explore", "filter", "query", "profile", "charts", "standings", "weather", "copy", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "quiet", "no-color", "log-format", "data", "config-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "verbose", rootCmd.PersistentFlags().ShorthandLookup("v").Name)
	assert.Equal(t, "quiet", rootCmd.PersistentFlags().ShorthandLookup("q").Name)
}

func TestVersion(t *testing.T) {
	dir, _ := testEnv(t)
	out, err := execute(t, "version", "--config-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "tablero dev\n", out)
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{fmt.Errorf("load: %w", faults.ErrDataUnavailable), ExitDataUnavailable},
		{fmt.Errorf("call: %w", faults.ErrRemoteUnavailable), ExitRemoteUnavailable},
		{fmt.Errorf("key: %w", faults.ErrMissingCredential), ExitInvalidArgs},
		{errors.New("other"), ExitInvalidArgs},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCodeFor(tt.err), "%v", tt.err)
	}
	assert.Nil(t, classify(nil))
	assert.Equal(t, 7, exitCode(t, classify(exitError(7, "x"))))
}

func TestInvalidConfig(t *testing.T) {
	dir, _ := testEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tablero.yaml"), []byte("log_format: xml\n"), 0o600))
	_, err := execute(t, "standings", "--config-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
}

// ============================================================================
// PAGES
// ============================================================================

func TestStandings(t *testing.T) {
	dir, _ := testEnv(t)
	out, err := execute(t, "standings", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Club")
	assert.Contains(t, out, "Puntos")
}

func TestExplore(t *testing.T) {
	dir, data := testEnv(t)
	out, err := execute(t, "explore", "--config-dir", dir, "--data", data, "--toggle", "mostrar_global_20m")
	require.NoError(t, err)
	assert.Contains(t, out, "Wii Sports")
	assert.Contains(t, out, "Grand Theft Auto V")
}

func TestExploreUnknownToggle(t *testing.T) {
	dir, data := testEnv(t)
	_, err := execute(t, "explore", "--config-dir", dir, "--data", data, "--toggle", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
}

func TestExploreMissingData(t *testing.T) {
	dir, _ := testEnv(t)
	_, err := execute(t, "explore", "--config-dir", dir, "--data", filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitDataUnavailable, exitCode(t, err))
}

func TestCharts(t *testing.T) {
	dir, data := testEnv(t)
	out, err := execute(t, "charts", "--config-dir", dir, "--data", data, "--genre", "Racing")
	require.NoError(t, err)
	assert.Contains(t, out, "Racing")
}

// ============================================================================
// FILTER / QUERY / PROFILE
// ============================================================================

func records(t *testing.T, out string) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	return rows
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"equality and numeric", []string{"--eq", "Editor=Nintendo", "--gt", "Ventas_NA=20"}, 2},
		{"membership", []string{"--in", "Plataforma=PS4|PS3"}, 2},
		{"negated", []string{"--in", "Género=Sports|Racing", "--not"}, 2},
		{"any", []string{"--eq", "Plataforma=NES", "--eq", "Plataforma=PS2", "--any"}, 2},
		{"numeric equality", []string{"--eq", "Año=2013"}, 1},
		{"no conditions", nil, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, data := testEnv(t)
			args := append([]string{"filter", "--config-dir", dir, "--data", data, "--json"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Len(t, records(t, out), tt.want)
		})
	}
}

func TestFilterMask(t *testing.T) {
	dir, data := testEnv(t)
	out, err := execute(t, "filter", "--config-dir", dir, "--data", data, "--json", "--lt", "Ventas_GLOBALES=20", "--mask")
	require.NoError(t, err)
	rows := records(t, out)
	require.Len(t, rows, 6)
	assert.Nil(t, rows[5]["Nombre"])
	assert.Equal(t, "Wii Sports", rows[0]["Nombre"])
}

func TestFilterErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--eq", "Nope=1"},
		{"--eq", "missing-separator"},
		{"--gt", "Editor=3"},
		{"--gt", "Ventas_NA=many"},
	} {
		dir, data := testEnv(t)
		_, err := execute(t, append([]string{"filter", "--config-dir", dir, "--data", data}, args...)...)
		require.Error(t, err, "%v", args)
		assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
	}
}

func TestQueryAggregation(t *testing.T) {
	dir, data := testEnv(t)
	q := `{"aggregation":{"groupBy":["Género"],"reducer":"sum","topN":1}}`
	out, err := execute(t, "query", q, "--config-dir", dir, "--data", data, "--json")
	require.NoError(t, err)
	rows := records(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sports", rows[0]["Género"])
	assert.InDelta(t, 88.14, rows[0]["Ventas_GLOBALES"], 1e-9)
}

func TestQueryInferredFile(t *testing.T) {
	dir, _ := testEnv(t)
	path := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("Producto,Categoria,Ventas\nA,Ropa,10\nB,Ropa,5\nC,Hogar,7\n"), 0o600))

	q := `{"filter":{"op":"gt","column":"Ventas","value":6},"sortBy":"Ventas"}`
	out, err := execute(t, "query", q, "--config-dir", dir, "--file", path, "--sales=false", "--json")
	require.NoError(t, err)
	rows := records(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "C", rows[0]["Producto"])
}

func TestQueryBadJSON(t *testing.T) {
	dir, data := testEnv(t)
	_, err := execute(t, "query", "{", "--config-dir", dir, "--data", data)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
}

func TestProfile(t *testing.T) {
	dir, data := testEnv(t)
	out, err := execute(t, "profile", data, "--config-dir", dir)
	require.NoError(t, err)

	var p struct {
		Name    string `json:"name"`
		Rows    int    `json:"rows"`
		Columns []struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "vgsales", p.Name)
	assert.Equal(t, 6, p.Rows)
	assert.NotEmpty(t, p.Columns)
}

// ============================================================================
// REMOTE COMMANDS
// ============================================================================

func TestWeatherMissingKey(t *testing.T) {
	dir, _ := testEnv(t)
	_, err := execute(t, "weather", "--config-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
}

func TestWeatherUnknownCity(t *testing.T) {
	dir, _ := testEnv(t)
	_, err := execute(t, "weather", "--config-dir", dir, "--city", "Atlantis")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
}

func TestWeather(t *testing.T) {
	dir, _ := testEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Cali", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `{"weather":[{"description":"cielo claro","icon":"01d"}],"main":{"temp":27.04,"humidity":70},"coord":{"lat":3.44,"lon":-76.52}}`)
	}))
	defer srv.Close()
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("TABLERO_WEATHER_BASE_URL", srv.URL)

	out, err := execute(t, "weather", "--config-dir", dir, "--city", "Cali")
	require.NoError(t, err)
	assert.Contains(t, out, "27.0 °C")
	assert.Contains(t, out, "Cielo claro")
}

func TestWeatherRemoteFailure(t *testing.T) {
	dir, _ := testEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusBadGateway)
	}))
	defer srv.Close()
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("TABLERO_WEATHER_BASE_URL", srv.URL)

	_, err := execute(t, "weather", "--config-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitRemoteUnavailable, exitCode(t, err))
}

func geminiServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		body, _ := io.ReadAll(r.Body)
		text := "Una cafetera para cada mañana."
		if strings.Contains(string(body), "copywriter publicitario") {
			text = "1. Café en 30 segundos.\n2. Tu app, tu café.\n3. Aroma sin esperas."
		}
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCopy(t *testing.T) {
	dir, _ := testEnv(t)
	srv := geminiServer(t, http.StatusOK)
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("TABLERO_COPY_ENDPOINT", srv.URL)
	t.Setenv("TABLERO_COPY_MODEL", "gemini-1.5-flash")

	out, err := execute(t, "copy", "--config-dir", dir, "--copies", "2", "--tone", "divertido")
	require.NoError(t, err)
	assert.Contains(t, out, "Una cafetera para cada mañana.")
	assert.Contains(t, out, "Copy 1: Café en 30 segundos.")
	assert.Contains(t, out, "Copy 2: Tu app, tu café.")
	assert.NotContains(t, out, "Copy 3")
	assert.Contains(t, out, "Tono: Divertido")
}

func TestCopyJSON(t *testing.T) {
	dir, _ := testEnv(t)
	srv := geminiServer(t, http.StatusOK)
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("TABLERO_COPY_ENDPOINT", srv.URL)
	t.Setenv("TABLERO_COPY_MODEL", "gemini-1.5-flash")

	out, err := execute(t, "copy", "--config-dir", dir, "--json")
	require.NoError(t, err)
	var res copywriter.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "gemini-1.5-flash", res.Model)
	assert.Len(t, res.Copies, 3)
}

func TestCopyErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		dir, _ := testEnv(t)
		_, err := execute(t, "copy", "--config-dir", dir)
		require.Error(t, err)
		assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
	})
	t.Run("blank product", func(t *testing.T) {
		dir, _ := testEnv(t)
		t.Setenv("GOOGLE_API_KEY", "test-key")
		_, err := execute(t, "copy", "--config-dir", dir, "--product", " ")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
	})
	t.Run("bad tone", func(t *testing.T) {
		dir, _ := testEnv(t)
		_, err := execute(t, "copy", "--config-dir", dir, "--tone", "9")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
	})
	t.Run("remote failure", func(t *testing.T) {
		dir, _ := testEnv(t)
		srv := geminiServer(t, http.StatusInternalServerError)
		t.Setenv("GOOGLE_API_KEY", "test-key")
		t.Setenv("TABLERO_COPY_ENDPOINT", srv.URL)
		t.Setenv("TABLERO_COPY_MODEL", "gemini-1.5-flash")
		out, err := execute(t, "copy", "--config-dir", dir)
		require.Error(t, err)
		assert.Equal(t, ExitRemoteUnavailable, exitCode(t, err))
		assert.Contains(t, out, copywriter.Placeholder)
	})
}

func TestParseTone(t *testing.T) {
	tone, err := parseTone("3")
	require.NoError(t, err)
	assert.Equal(t, copywriter.Tones[2], tone)

	tone, err = parseTone("LUJOSO")
	require.NoError(t, err)
	assert.Equal(t, copywriter.Tones[5], tone)

	_, err = parseTone("0")
	assert.Error(t, err)
	_, err = parseTone("aburrido")
	assert.Error(t, err)
}


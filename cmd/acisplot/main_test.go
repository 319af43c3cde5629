package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acisops/acispy/internal/dataset"
	"github.com/acisops/acispy/internal/testutil"
)

const tracelog = `TIME 1DPAMZT 1DPICACU 1DP28AVO
1073415269.184 20.5 2.1 30.0
1073415301.984 20.7 2.2 30.0
1073415334.784 20.9 2.0 30.0
`

const statesFile = `datestart datestop tstart tstop pcad_mode ccd_count pitch q1 q2 q3 q4
2019:006:00:00:00.000 2019:006:01:00:00.000 663120069.184 663123669.184 NPNT 4 90.5 0 0 0 1
2019:006:01:00:00.000 2019:006:02:00:00.000 663123669.184 663127269.184 NMAN 6 120.0 0 0 0 1
`

const modelFile = `date time 1dpamzt
2019:006:00:00:00.000 663120069.184 20.0
2019:006:00:30:00.000 663121869.184 21.0
2019:006:01:00:00.000 663123669.184 22.0
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"-quiet"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

type fixture struct {
	tracelog, states, model, tdb string
}

func newFixture(t *testing.T) fixture {
	return fixture{
		tracelog: testutil.WriteFile(t, "acis.tl", tracelog),
		states:   testutil.WriteFile(t, "states.dat", statesFile),
		model:    testutil.WriteFile(t, "temperatures.dat", modelFile),
		tdb:      filepath.Join(t.TempDir(), "missing.db"),
	}
}

func TestRun_Usage(t *testing.T) {
	_, stderr, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "Usage: acisplot")

	_, stderr, err = runCLI(t, "bogus")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "Unknown command: bogus")

	stdout, _, err := runCLI(t, "help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "find-load")
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "acisplot dev"))
}

func TestPlot(t *testing.T) {
	fx := newFixture(t)
	out := t.TempDir()
	stdout, _, err := runCLI(t, "plot",
		"-tracelog", fx.tracelog, "-states", fx.states, "-tdb", fx.tdb,
		"-fields", "1dpamzt", "-field2", "states/pitch", "-out", out, "-format", "svg")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	runDir := lines[0]
	assert.True(t, strings.HasPrefix(runDir, out))
	assert.Equal(t, "1dpamzt.svg", strings.TrimSpace(lines[1]))

	data, err := os.ReadFile(filepath.Join(runDir, "manifest.json"))
	require.NoError(t, err)
	var m struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []string{"1dpamzt.svg"}, m.Files)
}

func TestPlot_PanelsHTML(t *testing.T) {
	fx := newFixture(t)
	out := t.TempDir()
	stdout, _, err := runCLI(t, "plot",
		"-model", "model="+fx.model, "-states", fx.states, "-tdb", fx.tdb,
		"-panel", "model/1dpamzt", "-panel", "states/ccd_count",
		"-out", out, "-format", "html")
	require.NoError(t, err)
	assert.Contains(t, stdout, "model_1dpamzt-states_ccd_count.html")
}

func TestPlot_Errors(t *testing.T) {
	fx := newFixture(t)
	_, _, err := runCLI(t, "plot", "-tracelog", fx.tracelog)
	assert.ErrorIs(t, err, errUsage)

	_, _, err = runCLI(t, "plot", "-fields", "1dpamzt")
	assert.ErrorContains(t, err, "no input files")

	_, _, err = runCLI(t, "plot", "-tracelog", fx.tracelog, "-tdb", fx.tdb,
		"-fields", "nosuch", "-out", t.TempDir())
	assert.ErrorIs(t, err, dataset.ErrFieldNotFound)
}

func TestDescribe(t *testing.T) {
	fx := newFixture(t)
	stdout, _, err := runCLI(t, "describe", "-tracelog", fx.tracelog, "-tdb", fx.tdb)
	require.NoError(t, err)
	assert.Contains(t, stdout, "msids/1dpamzt")
	assert.Contains(t, stdout, "msids/dpa_a_power")

	stdout, _, err = runCLI(t, "describe", "-tracelog", fx.tracelog, "-tdb", fx.tdb, "-fields", "1dpamzt")
	require.NoError(t, err)
	assert.Contains(t, stdout, "20.500")
	assert.Contains(t, stdout, "20.900")
}

func TestExport(t *testing.T) {
	fx := newFixture(t)
	stdout, _, err := runCLI(t, "export", "-tracelog", fx.tracelog, "-tdb", fx.tdb, "-fields", "1dpamzt,msids/1dpicacu")
	require.NoError(t, err)
	header := strings.Fields(strings.SplitN(stdout, "\n", 2)[0])
	assert.Equal(t, []string{"msids_1dpamzt", "msids_1dpicacu", "times", "dates"}, header)

	stdout, _, err = runCLI(t, "export", "-states", fx.states, "-tdb", fx.tdb, "-states-table")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pcad_mode")

	_, _, err = runCLI(t, "export", "-tracelog", fx.tracelog, "-tdb", fx.tdb)
	assert.ErrorIs(t, err, errUsage)
}

func TestStatesAt(t *testing.T) {
	fx := newFixture(t)
	stdout, _, err := runCLI(t, "states-at", "-states", fx.states, "-tdb", fx.tdb, "2019:006:01:30:00")
	require.NoError(t, err)
	assert.Contains(t, stdout, "NMAN")

	_, _, err = runCLI(t, "states-at", "-tracelog", fx.tracelog, "-tdb", fx.tdb)
	assert.ErrorIs(t, err, dataset.ErrNoStates)
}

func TestTDBAndCodes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tdb.sqlite")
	csvPath := testutil.WriteFile(t, "codes.csv", "msid,state_code,low_raw_count,high_raw_count\n1STAT1,OFF,0,0\n1STAT1,ON,1,1\n")

	stdout, _, err := runCLI(t, "tdb", "-tdb", dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "schema version 1")

	stdout, _, err = runCLI(t, "tdb", "-tdb", dbPath, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "imported 2 state codes")

	stdout, _, err = runCLI(t, "codes", "-tdb", dbPath, "1stat1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "OFF")
	assert.Contains(t, stdout, "ON")

	_, _, err = runCLI(t, "tdb", "-tdb", dbPath, "drop")
	assert.ErrorIs(t, err, errUsage)
}

func TestFindLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2016", "JAN1116", "oflsa"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2016", "JAN1116", "oflsb"), 0o755))

	stdout, _, err := runCLI(t, "find-load", "-root", root, "jan1116")
	require.NoError(t, err)
	assert.Equal(t, "JAN1116B\t"+filepath.Join(root, "2016", "JAN1116", "oflsb")+"\n", stdout)

	_, _, err = runCLI(t, "find-load", "-root", root, "JAN1116C")
	assert.ErrorContains(t, err, "does not exist")
}

func TestParseField(t *testing.T) {
	assert.Equal(t, dataset.Field{Type: "states", Name: "pitch"}, parseField("states/pitch"))
	assert.Equal(t, "1deamzt", parseField("1deamzt"))
	assert.Equal(t, []any{"a", dataset.Field{Type: "msids", Name: "b"}}, parseFieldList(" a, ,msids/b"))

	ftype, path := parseModelArg("dpa=/tmp/x.dat")
	assert.Equal(t, "dpa", ftype)
	assert.Equal(t, "/tmp/x.dat", path)
	ftype, _ = parseModelArg("/tmp/x.dat")
	assert.Equal(t, "model", ftype)
}

func TestTracelogCache(t *testing.T) {
	fx := newFixture(t)
	cache := t.TempDir()
	for i := 0; i < 2; i++ {
		stdout, _, err := runCLI(t, "describe", "-tracelog", fx.tracelog, "-tdb", fx.tdb, "-cache", cache, "-fields", "1dpicacu")
		require.NoError(t, err)
		assert.Contains(t, stdout, "2.100")
	}
}

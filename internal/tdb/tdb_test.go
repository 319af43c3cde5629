package tdb

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/statecodes"
	"github.com/acisops/acispy/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(testutil.TempDBPath(t), monitoring.Nop)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp())
	return db
}

const stateCodesCSV = `msid,state_code,low_raw_count,high_raw_count
1STAT1,OFF,0,0
1stat1,ON,1,1
# comment line
AOPCADMD,NPNT,1,1
AOPCADMD,STBY,0,
`

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	v, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestImportAndLookup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.ImportStateCodesCSV(ctx, strings.NewReader(stateCodesCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, db.AddMSID(ctx, MSID{Name: "1dpamzt", Description: "DPA temperature"}))

	entries, err := db.StateCodes(ctx, "aopcadmd")
	require.NoError(t, err)
	assert.Equal(t, []statecodes.Entry{
		{StateCode: "STBY", LowRawCount: 0},
		{StateCode: "NPNT", LowRawCount: 1},
	}, entries)

	_, err = db.StateCodes(ctx, "1dpamzt")
	assert.ErrorIs(t, err, statecodes.ErrNoStateCodes)

	_, err = db.StateCodes(ctx, "NOSUCH")
	assert.ErrorIs(t, err, statecodes.ErrUnknownMSID)

	msids, err := db.MSIDs(ctx)
	require.NoError(t, err)
	names := make([]string, len(msids))
	for i, m := range msids {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"1DPAMZT", "1STAT1", "AOPCADMD"}, names)
	assert.Equal(t, "DPA temperature", msids[0].Description)
}

func TestStateCodesThroughCache(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ImportStateCodesCSV(ctx, strings.NewReader(stateCodesCSV))
	require.NoError(t, err)

	table, ok := statecodes.GetStateCodes(ctx, db, "1STAT1", monitoring.Nop)
	require.True(t, ok)
	assert.Equal(t, []string{"OFF", "ON"}, table.States())

	_, ok = statecodes.GetStateCodes(ctx, db, "UNKNOWN", monitoring.Nop)
	assert.False(t, ok)
}

func TestImportStateCodesCSV_Errors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"empty", "", "csv header"},
		{"missing column", "msid,state_code\nA,B\n", "lacks low_raw_count"},
		{"bad count", "msid,state_code,low_raw_count\nA,B,x\n", "low_raw_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ImportStateCodesCSV(ctx, strings.NewReader(tt.csv))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	// A failed import leaves nothing behind.
	msids, err := db.MSIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, msids)
}

package etl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixDataTypes_IssuesOneUpdatePerValueTable(t *testing.T) {
	db := &fakeSQL{}
	require.NoError(t, FixDataTypes(context.Background(), db, false))

	require.Len(t, db.executed, 4)
	assert.Equal(t,
		"UPDATE [UFRecordFields] SET [DataType] = 'Bit' WHERE [DataType] = 'String' AND [Key] IN (SELECT [Key] FROM [UFRecordDataBit])",
		db.executed[0])
	assert.Contains(t, db.executed[1], "SET [DataType] = 'DateTime'")
	assert.Contains(t, db.executed[1], "[UFRecordDataDateTime]")
	assert.Contains(t, db.executed[2], "SET [DataType] = 'Integer'")
	assert.Contains(t, db.executed[2], "[UFRecordDataInteger]")
	assert.Contains(t, db.executed[3], "SET [DataType] = 'LongString'")
	assert.Contains(t, db.executed[3], "[UFRecordDataLongString]")
	for _, stmt := range db.executed {
		assert.Contains(t, stmt, "WHERE [DataType] = 'String'", "only generic tags are rewritten")
	}
}

func TestFixDataTypes_DryRunExecutesNothing(t *testing.T) {
	db := &fakeSQL{}
	require.NoError(t, FixDataTypes(context.Background(), db, true))
	assert.Empty(t, db.executed)
}

func TestFixDataTypes_FailureIsFatal(t *testing.T) {
	stmts := DataTypeRepairStatements()
	db := &fakeSQL{failOn: stmts[1]}

	err := FixDataTypes(context.Background(), db, false)
	require.Error(t, err)
	assert.Len(t, db.executed, 1, "statements after the failing one are not run")
}

func TestFixDataStringLength(t *testing.T) {
	tests := []struct {
		name        string
		maxLength   int
		columnWidth int
		want        string
	}{
		{"fits default width", 255, 0, ""},
		{"empty table", 0, 0, ""},
		{"widened to observed max", 500, 0, "ALTER TABLE [UFRecordDataString] ALTER COLUMN [Value] NVARCHAR(500);"},
		{"beyond nvarchar limit", 12000, 0, "ALTER TABLE [UFRecordDataString] ALTER COLUMN [Value] NVARCHAR(MAX);"},
		{"wide column beyond nvarchar limit", 12000, 4000, "ALTER TABLE [UFRecordDataString] ALTER COLUMN [Value] NVARCHAR(MAX);"},
		{"partly widened column", 800, 500, "ALTER TABLE [UFRecordDataString] ALTER COLUMN [Value] NVARCHAR(800);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeSQL{maxLength: tt.maxLength, columnWidth: tt.columnWidth}
			widened, err := FixDataStringLength(context.Background(), db, false)
			require.NoError(t, err)
			if tt.want == "" {
				assert.False(t, widened)
				assert.Empty(t, db.executed)
			} else {
				assert.True(t, widened)
				assert.Equal(t, []string{tt.want}, db.executed)
			}
		})
	}
}

// A column that is already wide enough is left alone, so the repair never
// narrows it and running it twice changes nothing.
func TestFixDataStringLength_NeverNarrows(t *testing.T) {
	tests := []struct {
		name        string
		columnWidth int
	}{
		{"nvarchar max", -1},
		{"nvarchar 4000", 4000},
		{"exact fit", 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeSQL{maxLength: 300, columnWidth: tt.columnWidth}
			widened, err := FixDataStringLength(context.Background(), db, false)
			require.NoError(t, err)
			assert.False(t, widened)
			assert.Equal(t, 2, db.scalarReads)
			assert.Empty(t, db.executed)
		})
	}
}

func TestFixDataStringLength_SecondRunIsNoop(t *testing.T) {
	db := &fakeSQL{maxLength: 5000}
	widened, err := FixDataStringLength(context.Background(), db, false)
	require.NoError(t, err)
	require.True(t, widened)

	db.columnWidth = -1
	widened, err = FixDataStringLength(context.Background(), db, false)
	require.NoError(t, err)
	assert.False(t, widened)
	assert.Len(t, db.executed, 1)
}

func TestFixDataStringLength_DryRun(t *testing.T) {
	db := &fakeSQL{maxLength: 500}
	widened, err := FixDataStringLength(context.Background(), db, true)
	require.NoError(t, err)
	assert.False(t, widened)
	assert.Equal(t, 2, db.scalarReads)
	assert.Empty(t, db.executed)
}

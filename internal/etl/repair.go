package etl

import (
	"context"
	"fmt"

	"github.com/BartekS5/ufmigrate/pkg/logger"
)

const (
	// DefaultStringValueLength is the width of UFRecordDataString.Value in
	// the new schema.
	DefaultStringValueLength = 255
	// maxNVarCharLength is the largest explicit NVARCHAR(n) width.
	maxNVarCharLength = 4000
)

// dataTypeRepairs pairs each specific data type tag with the value table
// holding values of that type.
var dataTypeRepairs = []struct {
	Tag   string
	Table string
}{
	{"Bit", "UFRecordDataBit"},
	{"DateTime", "UFRecordDataDateTime"},
	{"Integer", "UFRecordDataInteger"},
	{"LongString", "UFRecordDataLongString"},
}

// DataTypeRepairStatements returns the updates that retag record fields
// marked 'String' whose value lives in a type-specific table.
func DataTypeRepairStatements() []string {
	stmts := make([]string, 0, len(dataTypeRepairs))
	for _, r := range dataTypeRepairs {
		stmts = append(stmts, fmt.Sprintf(
			"UPDATE [UFRecordFields] SET [DataType] = '%s' WHERE [DataType] = 'String' AND [Key] IN (SELECT [Key] FROM [%s])",
			r.Tag, r.Table))
	}
	return stmts
}

// FixDataTypes rewrites wrongly tagged record fields in the legacy database.
// This changes data in the source database.
func FixDataTypes(ctx context.Context, db SchemaSQL, dryRun bool) error {
	for _, stmt := range DataTypeRepairStatements() {
		if dryRun {
			logger.Infof("[DRY RUN] Would execute: %s", stmt)
			continue
		}
		n, err := db.Exec(ctx, stmt)
		if err != nil {
			return fmt.Errorf("data type repair failed: %w", err)
		}
		logger.Infof("Data type repair updated %d record fields: %s", n, stmt)
	}
	return nil
}

// WidenColumnStatement returns the ALTER for the given observed max length.
func WidenColumnStatement(maxLength int) string {
	width := fmt.Sprintf("%d", maxLength)
	if maxLength > maxNVarCharLength {
		width = "MAX"
	}
	return fmt.Sprintf("ALTER TABLE [UFRecordDataString] ALTER COLUMN [Value] NVARCHAR(%s);", width)
}

const (
	maxValueLengthQuery = "SELECT MAX(LEN([Value])) FROM [UFRecordDataString]"
	columnWidthQuery    = "SELECT [CHARACTER_MAXIMUM_LENGTH] FROM [INFORMATION_SCHEMA].[COLUMNS] " +
		"WHERE [TABLE_NAME] = 'UFRecordDataString' AND [COLUMN_NAME] = 'Value'"

	// nvarcharMaxWidth is what INFORMATION_SCHEMA reports for NVARCHAR(MAX).
	nvarcharMaxWidth = -1
)

// FixDataStringLength widens UFRecordDataString.Value when stored values
// are longer than the default width and the column is narrower than the
// longest value. It never narrows the column. It reports whether the
// column was altered.
func FixDataStringLength(ctx context.Context, db SchemaSQL, dryRun bool) (bool, error) {
	maxLength, err := db.ScalarInt(ctx, maxValueLengthQuery)
	if err != nil {
		return false, fmt.Errorf("failed to read longest string value: %w", err)
	}
	if maxLength <= DefaultStringValueLength {
		logger.Infof("Longest string value is %d characters, no column change needed", maxLength)
		return false, nil
	}

	width, err := db.ScalarInt(ctx, columnWidthQuery)
	if err != nil {
		return false, fmt.Errorf("failed to read string value column width: %w", err)
	}
	if width == nvarcharMaxWidth || width >= maxLength {
		logger.Infof("String value column (width %d) already holds values up to %d characters", width, maxLength)
		return false, nil
	}

	stmt := WidenColumnStatement(maxLength)
	if dryRun {
		logger.Infof("[DRY RUN] Would execute: %s", stmt)
		return false, nil
	}
	if _, err := db.Exec(ctx, stmt); err != nil {
		return false, fmt.Errorf("failed to widen string value column: %w", err)
	}
	logger.Infof("Widened UFRecordDataString.Value from %d for values up to %d characters", width, maxLength)
	return true, nil
}

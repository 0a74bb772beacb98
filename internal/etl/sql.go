package etl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/BartekS5/ufmigrate/pkg/utils"
	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"
)

// SQLLegacyStore reads the legacy forms schema from SQL Server and runs the
// raw repair statements against it.
type SQLLegacyStore struct {
	DB *sql.DB
}

// guid scans a SQL Server uniqueidentifier, NULL becoming uuid.Nil.
type guid uuid.UUID

func (g *guid) Scan(v interface{}) error {
	if v == nil {
		*g = guid(uuid.Nil)
		return nil
	}
	var u mssql.UniqueIdentifier
	if err := u.Scan(v); err != nil {
		return err
	}
	*g = guid(u)
	return nil
}

func (g guid) UUID() uuid.UUID { return uuid.UUID(g) }

// query runs q and calls scan for every row. The rows are always closed.
func (s *SQLLegacyStore) query(ctx context.Context, q string, scan func(*sql.Rows) error, args ...interface{}) error {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLLegacyStore) Exec(ctx context.Context, query string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ScalarInt returns the first column of the first row, NULL reading as 0.
func (s *SQLLegacyStore) ScalarInt(ctx context.Context, query string) (int, error) {
	var n sql.NullInt64
	if err := s.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

func (s *SQLLegacyStore) settings(ctx context.Context, ownerID uuid.UUID) ([]models.Setting, error) {
	var out []models.Setting
	err := s.query(ctx, "SELECT [Key], [Value] FROM [UFSettings] WHERE [Id] = @p1 ORDER BY [Key]",
		func(rows *sql.Rows) error {
			var key, value sql.NullString
			if err := rows.Scan(&key, &value); err != nil {
				return err
			}
			out = append(out, models.Setting{Key: key.String, Value: value.String})
			return nil
		}, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settings of %s: %w", ownerID, err)
	}
	return out, nil
}

func (s *SQLLegacyStore) settingsMap(ctx context.Context, ownerID uuid.UUID) (map[string]string, error) {
	list, err := s.settings(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(list))
	for _, st := range list {
		m[st.Key] = st.Value
	}
	return m, nil
}

func (s *SQLLegacyStore) FieldSettings(ctx context.Context, fieldID uuid.UUID) ([]models.Setting, error) {
	return s.settings(ctx, fieldID)
}

func (s *SQLLegacyStore) PreValueSources(ctx context.Context) ([]models.LegacyPreValueSource, error) {
	var out []models.LegacyPreValueSource
	err := s.query(ctx, "SELECT [Id], [Name], [Type] FROM [UFPrevalueSources] ORDER BY [Name]",
		func(rows *sql.Rows) error {
			var id, typ guid
			var name sql.NullString
			if err := rows.Scan(&id, &name, &typ); err != nil {
				return err
			}
			pvs := models.LegacyPreValueSource{ID: id.UUID(), Name: name.String}
			if typ.UUID() != uuid.Nil {
				pvs.Type = uuid.NullUUID{UUID: typ.UUID(), Valid: true}
			}
			out = append(out, pvs)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pre-value sources: %w", err)
	}

	for i := range out {
		if out[i].Settings, err = s.settingsMap(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Forms loads the non-archived forms and enriches them with their child
// tables, each read once and grouped by parent id.
func (s *SQLLegacyStore) Forms(ctx context.Context) ([]*models.LegacyForm, error) {
	var forms []*models.LegacyForm
	byID := make(map[uuid.UUID]*models.LegacyForm)

	err := s.query(ctx, `
		SELECT [Id], [Name], [Created], [Archived], [DisableDefaultStylesheet], [FieldIndicationType],
		       [Indicator], [GotoPageOnSubmit], [HideFieldValidation], [ShowValidationSummary],
		       [ManualApproval], [StoreRecordsLocally], [MessageOnSubmit], [RequiredErrorMessage],
		       [InvalidErrorMessage], [XPathOnSubmit]
		FROM [UFForms] WHERE [Archived] = 0 ORDER BY [Name]`,
		func(rows *sql.Rows) error {
			var id guid
			var name, indicator, msg, reqMsg, invMsg, xpath sql.NullString
			var created sql.NullTime
			var archived, noCSS, hideVal, showSummary, approval, storeLocal sql.NullBool
			var indication, gotoPage sql.NullInt64
			if err := rows.Scan(&id, &name, &created, &archived, &noCSS, &indication,
				&indicator, &gotoPage, &hideVal, &showSummary,
				&approval, &storeLocal, &msg, &reqMsg,
				&invMsg, &xpath); err != nil {
				return err
			}
			f := &models.LegacyForm{
				ID:                       id.UUID(),
				Name:                     name.String,
				Created:                  created.Time,
				Archived:                 archived.Bool,
				DisableDefaultStylesheet: noCSS.Bool,
				FieldIndicationType:      models.LegacyFormFieldIndication(indication.Int64),
				Indicator:                indicator.String,
				GoToPageOnSubmit:         int(gotoPage.Int64),
				HideFieldValidation:      hideVal.Bool,
				ShowValidationSummary:    showSummary.Bool,
				ManualApproval:           approval.Bool,
				StoreRecordsLocally:      storeLocal.Bool,
				MessageOnSubmit:          msg.String,
				RequiredErrorMessage:     reqMsg.String,
				InvalidErrorMessage:      invMsg.String,
				XPathOnSubmit:            xpath.String,
			}
			forms = append(forms, f)
			byID[f.ID] = f
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forms: %w", err)
	}

	pages := make(map[uuid.UUID]*models.LegacyPage)
	err = s.query(ctx, "SELECT [Id], [Form], [Caption], [SortOrder] FROM [UFPages] ORDER BY [SortOrder]",
		func(rows *sql.Rows) error {
			var id, form guid
			var caption sql.NullString
			var sort sql.NullInt64
			if err := rows.Scan(&id, &form, &caption, &sort); err != nil {
				return err
			}
			parent, ok := byID[form.UUID()]
			if !ok {
				return nil
			}
			p := &models.LegacyPage{ID: id.UUID(), FormID: parent.ID, Caption: caption.String, SortOrder: int(sort.Int64)}
			parent.Pages = append(parent.Pages, p)
			pages[p.ID] = p
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pages: %w", err)
	}

	fieldsets := make(map[uuid.UUID]*models.LegacyFieldSet)
	err = s.query(ctx, "SELECT [Id], [Page], [Caption], [SortOrder] FROM [UFFieldsets] ORDER BY [SortOrder]",
		func(rows *sql.Rows) error {
			var id, page guid
			var caption sql.NullString
			var sort sql.NullInt64
			if err := rows.Scan(&id, &page, &caption, &sort); err != nil {
				return err
			}
			parent, ok := pages[page.UUID()]
			if !ok {
				return nil
			}
			fs := &models.LegacyFieldSet{ID: id.UUID(), PageID: parent.ID, Caption: caption.String, SortOrder: int(sort.Int64)}
			parent.FieldSets = append(parent.FieldSets, fs)
			fieldsets[fs.ID] = fs
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fieldsets: %w", err)
	}

	fields := make(map[uuid.UUID]*models.LegacyField)
	err = s.query(ctx, `
		SELECT [Id], [Fieldset], [Caption], [ToolTip], [FieldType], [InvalidErrorMessage],
		       [RequiredErrorMessage], [Mandatory], [RegEx], [PreValueProvider], [SortOrder]
		FROM [UFFields] ORDER BY [SortOrder]`,
		func(rows *sql.Rows) error {
			var id, fieldset, fieldType, pvs guid
			var caption, tooltip, invMsg, reqMsg, regex sql.NullString
			var mandatory sql.NullBool
			var sort sql.NullInt64
			if err := rows.Scan(&id, &fieldset, &caption, &tooltip, &fieldType, &invMsg,
				&reqMsg, &mandatory, &regex, &pvs, &sort); err != nil {
				return err
			}
			parent, ok := fieldsets[fieldset.UUID()]
			if !ok {
				return nil
			}
			f := &models.LegacyField{
				ID:                   id.UUID(),
				FieldSetID:           parent.ID,
				Caption:              caption.String,
				ToolTip:              tooltip.String,
				FieldTypeID:          fieldType.UUID(),
				InvalidErrorMessage:  invMsg.String,
				RequiredErrorMessage: reqMsg.String,
				Mandatory:            mandatory.Bool,
				RegEx:                regex.String,
				PreValueSourceID:     pvs.UUID(),
				SortOrder:            int(sort.Int64),
			}
			parent.Fields = append(parent.Fields, f)
			fields[f.ID] = f
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fields: %w", err)
	}

	conditions := make(map[uuid.UUID]*models.LegacyField)
	err = s.query(ctx, "SELECT [Id], [Field], [Enabled], [ActionType], [LogicType] FROM [UFFieldConditions]",
		func(rows *sql.Rows) error {
			var id, field guid
			var enabled sql.NullBool
			var action, logic sql.NullInt64
			if err := rows.Scan(&id, &field, &enabled, &action, &logic); err != nil {
				return err
			}
			owner, ok := fields[field.UUID()]
			if !ok {
				return nil
			}
			owner.Condition = models.LegacyCondition{
				ID:         id.UUID(),
				Enabled:    enabled.Bool,
				ActionType: models.LegacyFieldConditionActionType(action.Int64),
				LogicType:  models.LegacyFieldConditionLogicType(logic.Int64),
			}
			conditions[owner.Condition.ID] = owner
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch field conditions: %w", err)
	}

	err = s.query(ctx, "SELECT [Id], [FieldCondition], [Field], [Operator], [Value] FROM [UFFieldConditionRules]",
		func(rows *sql.Rows) error {
			var id, condition, field guid
			var op sql.NullInt64
			var value sql.NullString
			if err := rows.Scan(&id, &condition, &field, &op, &value); err != nil {
				return err
			}
			owner, ok := conditions[condition.UUID()]
			if !ok {
				return nil
			}
			owner.Condition.Rules = append(owner.Condition.Rules, models.LegacyRule{
				ID:       id.UUID(),
				Field:    field.UUID(),
				Operator: models.LegacyFieldConditionRuleOperator(op.Int64),
				Value:    value.String,
			})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch field condition rules: %w", err)
	}

	return forms, nil
}

func (s *SQLLegacyStore) PreValues(ctx context.Context, fieldID uuid.UUID) ([]models.LegacyPreValue, error) {
	var out []models.LegacyPreValue
	err := s.query(ctx, "SELECT [Id], [Field], [Value], [SortOrder] FROM [UFPrevalues] WHERE [Field] = @p1",
		func(rows *sql.Rows) error {
			var id, field guid
			var value sql.NullString
			var sort sql.NullInt64
			if err := rows.Scan(&id, &field, &value, &sort); err != nil {
				return err
			}
			out = append(out, models.LegacyPreValue{ID: id.UUID(), FieldID: field.UUID(), Value: value.String, SortOrder: int(sort.Int64)})
			return nil
		}, fieldID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pre-values of field %s: %w", fieldID, err)
	}
	return out, nil
}

func (s *SQLLegacyStore) Workflows(ctx context.Context, formID uuid.UUID) ([]models.LegacyWorkflow, error) {
	var out []models.LegacyWorkflow
	err := s.query(ctx, `
		SELECT [Id], [Form], [Name], [Type], [ExecutesOn], [Active], [SortOrder]
		FROM [UFWorkflows] WHERE [Form] = @p1 ORDER BY [SortOrder]`,
		func(rows *sql.Rows) error {
			var id, form, typ guid
			var name sql.NullString
			var executesOn, sort sql.NullInt64
			var active sql.NullBool
			if err := rows.Scan(&id, &form, &name, &typ, &executesOn, &active, &sort); err != nil {
				return err
			}
			out = append(out, models.LegacyWorkflow{
				ID:         id.UUID(),
				FormID:     form.UUID(),
				Name:       name.String,
				Type:       typ.UUID(),
				ExecutesOn: models.LegacyFormState(executesOn.Int64),
				Active:     active.Bool,
				SortOrder:  int(sort.Int64),
			})
			return nil
		}, formID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflows of form %s: %w", formID, err)
	}

	for i := range out {
		if out[i].Settings, err = s.settingsMap(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// valueTables lists the per-type value tables of the legacy record store.
var valueTables = []struct {
	Table    string
	DataType models.LegacyFieldDataType
}{
	{"UFRecordDataString", models.LegacyDataString},
	{"UFRecordDataLongString", models.LegacyDataLongString},
	{"UFRecordDataInteger", models.LegacyDataInteger},
	{"UFRecordDataDateTime", models.LegacyDataDateTime},
	{"UFRecordDataBit", models.LegacyDataBit},
}

func (s *SQLLegacyStore) Records(ctx context.Context, formID uuid.UUID) ([]*models.LegacyRecord, error) {
	var records []*models.LegacyRecord
	byID := make(map[uuid.UUID]*models.LegacyRecord)

	err := s.query(ctx, `
		SELECT [Id], [Form], [Created], [Updated], [State], [CurrentPage], [UmbracoPageId], [IP], [MemberKey]
		FROM [UFRecords] WHERE [Form] = @p1 ORDER BY [Created]`,
		func(rows *sql.Rows) error {
			var id, form, page guid
			var created, updated sql.NullTime
			var state, ip, member sql.NullString
			var pageID sql.NullInt64
			if err := rows.Scan(&id, &form, &created, &updated, &state, &page, &pageID, &ip, &member); err != nil {
				return err
			}
			st, err := models.ParseLegacyFormState(state.String)
			if err != nil {
				return fmt.Errorf("record %s: %w", id.UUID(), err)
			}
			r := &models.LegacyRecord{
				ID:            id.UUID(),
				FormID:        form.UUID(),
				Created:       created.Time,
				Updated:       updated.Time,
				State:         st,
				CurrentPage:   page.UUID(),
				UmbracoPageID: int(pageID.Int64),
				IP:            ip.String,
				MemberKey:     member.String,
				RecordFields:  make(map[uuid.UUID]*models.LegacyRecordField),
			}
			records = append(records, r)
			byID[r.ID] = r
			return nil
		}, formID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records of form %s: %w", formID, err)
	}
	if len(records) == 0 {
		return records, nil
	}

	recordFields := make(map[uuid.UUID]*models.LegacyRecordField)
	err = s.query(ctx, `
		SELECT f.[Key], f.[Record], f.[Field], f.[DataType], f.[DataTypeAlias]
		FROM [UFRecordFields] f JOIN [UFRecords] r ON r.[Id] = f.[Record]
		WHERE r.[Form] = @p1`,
		func(rows *sql.Rows) error {
			var key, record, field guid
			var dataType, alias sql.NullString
			if err := rows.Scan(&key, &record, &field, &dataType, &alias); err != nil {
				return err
			}
			owner, ok := byID[record.UUID()]
			if !ok {
				return nil
			}
			dt, err := models.ParseLegacyFieldDataType(dataType.String)
			if err != nil {
				return fmt.Errorf("record field %s: %w", key.UUID(), err)
			}
			rf := &models.LegacyRecordField{
				Key:           key.UUID(),
				RecordID:      owner.ID,
				FieldID:       field.UUID(),
				DataType:      dt,
				DataTypeAlias: alias.String,
			}
			owner.RecordFields[rf.Key] = rf
			recordFields[rf.Key] = rf
			return nil
		}, formID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record fields of form %s: %w", formID, err)
	}

	for _, vt := range valueTables {
		q := fmt.Sprintf(`
			SELECT d.[Key], d.[Value]
			FROM [%s] d
			JOIN [UFRecordFields] f ON f.[Key] = d.[Key]
			JOIN [UFRecords] r ON r.[Id] = f.[Record]
			WHERE r.[Form] = @p1 ORDER BY d.[Id]`, vt.Table)
		err = s.query(ctx, q, func(rows *sql.Rows) error {
			var key guid
			var raw interface{}
			if err := rows.Scan(&key, &raw); err != nil {
				return err
			}
			rf, ok := recordFields[key.UUID()]
			if !ok {
				return nil
			}
			val, err := utils.ConvertRecordValue(raw, vt.DataType)
			if err != nil {
				return fmt.Errorf("record field %s: %w", rf.Key, err)
			}
			rf.Values = append(rf.Values, val)
			return nil
		}, formID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s values of form %s: %w", vt.Table, formID, err)
		}
	}

	return records, nil
}

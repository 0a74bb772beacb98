package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BartekS5/ufmigrate/pkg/models"
)

// ConvertRecordValue normalizes a value read from one of the legacy
// UFRecordData* tables into the Go type matching its data type tag.
func ConvertRecordValue(val interface{}, dt models.LegacyFieldDataType) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch dt {
	case models.LegacyDataDateTime:
		return ConvertDateTime(val)
	case models.LegacyDataInteger:
		return ConvertToInt(val)
	case models.LegacyDataBit:
		return ConvertToBool(val)
	case models.LegacyDataString, models.LegacyDataLongString:
		return ConvertToString(val), nil
	default:
		return val, nil
	}
}

func ConvertToString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func ConvertDateTime(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string:
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05.000",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, f := range formats {
			if t, err := time.Parse(f, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse datetime: %s", v)
	case []byte:
		return ConvertDateTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to datetime", val)
	}
}

func ConvertToInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(v)))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
}

func ConvertToBool(val interface{}) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case []byte:
		return ConvertToBool(string(v))
	default:
		return false, fmt.Errorf("cannot convert %T to bool", val)
	}
}

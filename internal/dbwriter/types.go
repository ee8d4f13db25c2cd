package dbwriter

import "strconv"

// ColumnType is the SQLite affinity chosen for a column.
type ColumnType int

const (
	ColumnTypeText ColumnType = iota
	ColumnTypeInteger
	ColumnTypeReal
)

// String returns the SQL type name.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// InferColumnType scans a column's values and picks the narrowest type that
// holds them all. Empty cells are ignored (they become NULL); a column with
// no non-empty values is TEXT.
func InferColumnType(values []string) ColumnType {
	sawValue := false
	allInt := true
	allReal := true
	for _, v := range values {
		if v == "" {
			continue
		}
		sawValue = true
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if !allInt && allReal {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allReal = false
				break
			}
		}
	}
	switch {
	case !sawValue:
		return ColumnTypeText
	case allInt:
		return ColumnTypeInteger
	case allReal:
		return ColumnTypeReal
	default:
		return ColumnTypeText
	}
}

// convert returns the driver value for a cell under the given type. Empty
// cells are NULL. Values that no longer parse (possible only if callers
// bypass inference) fall back to the raw string.
func (ct ColumnType) convert(v string) interface{} {
	if v == "" {
		return nil
	}
	switch ct {
	case ColumnTypeInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case ColumnTypeReal:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

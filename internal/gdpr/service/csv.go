package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"fooddrop/internal/gdpr/models"
	"fooddrop/internal/validation"
)

// FormatDataAsCSV renders an export as "Data Type,Field,Value" rows. Nested
// fields are flattened to dotted paths; list entries are indexed, as in
// collections[0]. Metadata is not included.
func FormatDataAsCSV(export *models.UserDataExport) (string, error) {
	record, err := validation.ToRecord(export)
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Data Type", "Field", "Value"}); err != nil {
		return "", err
	}
	for _, dataType := range models.DataTypeOrder {
		switch v := record[dataType].(type) {
		case []any:
			for i, item := range v {
				if err := writeRows(w, fmt.Sprintf("%s[%d]", dataType, i), item); err != nil {
					return "", err
				}
			}
		case map[string]any:
			if err := writeRows(w, dataType, v); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeRows(w *csv.Writer, dataType string, v any) error {
	fields := map[string]string{}
	flatten("", v, fields)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.Write([]string{dataType, k, fields[k]}); err != nil {
			return err
		}
	}
	return nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	case []any:
		for i, val := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), val, out)
		}
	default:
		if prefix == "" {
			prefix = "value"
		}
		out[prefix] = scalar(t)
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

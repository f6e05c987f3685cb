package extract

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/smallbiznis/loadstone/internal/store"
)

const timestampLayout = time.RFC3339

// writeCSV drains rows into a CSV payload at path. The payload is
// buffered and only persisted when at least one row exists, so a quiet
// entity leaves no file behind.
func writeCSV(st store.Store, path string, header []string, rows *sql.Rows) (int64, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return 0, err
	}

	record := make([]string, len(header))
	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var count int64
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return 0, fmt.Errorf("scan source row: %w", err)
		}
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return 0, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}

	out, err := st.Create(path)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(out, &buf); err != nil {
		out.Close()
		return 0, fmt.Errorf("write payload %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	return count, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.UTC().Format(timestampLayout)
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

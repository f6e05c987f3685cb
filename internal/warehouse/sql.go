package warehouse

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/loadstone/internal/entity"
)

// The merge statements are generated from the entity spec so every
// entity follows the same two-phase shape: refresh matched rows, then
// insert unmatched ones resolving parent surrogates through joins.
// Both statements take (etl_batch_no, etl_batch_date) as parameters.

func buildUpdateSQL(spec entity.Spec) string {
	var set []string
	for _, col := range spec.Attributes {
		set = append(set, fmt.Sprintf("%s = a.%s", col, col))
	}
	for i, p := range spec.Parents {
		if p.RefreshOnUpdate {
			set = append(set, fmt.Sprintf("%s = p%d.%s", p.TargetColumn, i, p.ParentSurrogate))
		}
	}
	set = append(set,
		"src_update_timestamp = a.update_timestamp",
		"dw_update_timestamp = CURRENT_TIMESTAMP",
		"etl_batch_no = ?",
		"etl_batch_date = ?",
	)

	from := fmt.Sprintf("%s AS a", spec.StageTable)
	for i, p := range spec.Parents {
		if !p.RefreshOnUpdate {
			continue
		}
		from += fmt.Sprintf(" %s %s AS p%d ON p%d.%s = a.%s",
			joinKind(p), p.ParentTable, i, i, p.ParentKey, p.LocalColumn)
	}

	return fmt.Sprintf(
		"UPDATE %s AS b SET %s FROM %s WHERE %s",
		spec.WarehouseTable,
		strings.Join(set, ", "),
		from,
		keyMatch(spec, "a", "b"),
	)
}

func buildInsertSQL(spec entity.Spec) string {
	var cols, sel []string
	for _, col := range spec.NaturalKey {
		cols = append(cols, col)
		sel = append(sel, "a."+col)
	}
	for _, col := range spec.InsertOnly {
		cols = append(cols, col)
		sel = append(sel, "a."+col)
	}
	for _, col := range spec.Attributes {
		cols = append(cols, col)
		sel = append(sel, "a."+col)
	}
	for i, p := range spec.Parents {
		cols = append(cols, p.TargetColumn)
		sel = append(sel, fmt.Sprintf("p%d.%s", i, p.ParentSurrogate))
	}
	cols = append(cols,
		"src_create_timestamp", "src_update_timestamp",
		"dw_create_timestamp", "etl_batch_no", "etl_batch_date",
	)
	sel = append(sel,
		"a.create_timestamp", "a.update_timestamp",
		"CURRENT_TIMESTAMP", "?", "?",
	)

	from := fmt.Sprintf("%s AS a", spec.StageTable)
	for i, p := range spec.Parents {
		from += fmt.Sprintf(" %s %s AS p%d ON p%d.%s = a.%s",
			joinKind(p), p.ParentTable, i, i, p.ParentKey, p.LocalColumn)
	}
	from += fmt.Sprintf(" LEFT JOIN %s AS b ON %s", spec.WarehouseTable, keyMatch(spec, "a", "b"))

	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s WHERE b.%s IS NULL",
		spec.WarehouseTable,
		strings.Join(cols, ", "),
		strings.Join(sel, ", "),
		from,
		spec.NaturalKey[0],
	)
}

// buildSelfRefSQL resolves intra-entity references once every row of
// the batch is present, so forward references land too.
func buildSelfRefSQL(spec entity.Spec) string {
	self := spec.Self
	return fmt.Sprintf(
		"UPDATE %s AS b SET %s = m.%s FROM %s AS m WHERE b.%s = m.%s",
		spec.WarehouseTable, self.TargetColumn, self.Surrogate,
		spec.WarehouseTable, self.LocalColumn, self.KeyColumn,
	)
}

func joinKind(p entity.ParentRef) string {
	if p.Optional {
		return "LEFT JOIN"
	}
	return "JOIN"
}

func keyMatch(spec entity.Spec, left, right string) string {
	parts := make([]string, len(spec.NaturalKey))
	for i, col := range spec.NaturalKey {
		parts[i] = fmt.Sprintf("%s.%s = %s.%s", left, col, right, col)
	}
	return strings.Join(parts, " AND ")
}

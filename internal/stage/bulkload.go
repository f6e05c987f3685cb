package stage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/smallbiznis/loadstone/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CSVOptions mirror the knobs of warehouse bulk-load commands.
type CSVOptions struct {
	Delimiter      rune
	Quote          rune
	SkipHeaderRows int
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ',', Quote: '"', SkipHeaderRows: 1}
}

// BulkLoader loads a delimited payload into a table. Each call is
// atomic: either every row lands or none do, and failures surface as
// errors.
type BulkLoader interface {
	Load(ctx context.Context, table string, source string, opts CSVOptions) (int64, error)
}

const insertBatchSize = 200

type gormBulkLoader struct {
	db    *gorm.DB
	store store.Store
	log   *zap.Logger
}

func NewBulkLoader(gdb *gorm.DB, st store.Store, log *zap.Logger) BulkLoader {
	return &gormBulkLoader{db: gdb, store: st, log: log.Named("bulkload")}
}

func (l *gormBulkLoader) Load(ctx context.Context, table string, source string, opts CSVOptions) (int64, error) {
	if opts.Quote != 0 && opts.Quote != '"' {
		return 0, fmt.Errorf("unsupported quote character %q", opts.Quote)
	}
	if opts.SkipHeaderRows != 1 {
		return 0, fmt.Errorf("payloads must carry a header row, got skip_header_rows=%d", opts.SkipHeaderRows)
	}

	r, err := l.store.Open(source)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read payload header %s: %w", source, err)
	}

	var total int64
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch := make([][]string, 0, insertBatchSize)
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("read payload %s: %w", source, err)
			}
			batch = append(batch, record)
			if len(batch) == insertBatchSize {
				if err := insertBatch(tx, table, header, batch); err != nil {
					return err
				}
				total += int64(len(batch))
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			if err := insertBatch(tx, table, header, batch); err != nil {
				return err
			}
			total += int64(len(batch))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.log.Info("bulkload.done",
		zap.String("table", table),
		zap.String("source", source),
		zap.Int64("rows", total),
	)
	return total, nil
}

func insertBatch(tx *gorm.DB, table string, header []string, batch [][]string) error {
	placeholders := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*len(header))
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(header)), ",") + ")"

	for _, record := range batch {
		if len(record) != len(header) {
			return fmt.Errorf("row has %d fields, header has %d", len(record), len(header))
		}
		placeholders = append(placeholders, row)
		for _, field := range record {
			// Empty fields are NULLs; the extractor never writes
			// empty strings for populated columns.
			if field == "" {
				args = append(args, nil)
			} else {
				args = append(args, field)
			}
		}
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(header, ", "),
		strings.Join(placeholders, ", "),
	)
	return tx.Exec(stmt, args...).Error
}

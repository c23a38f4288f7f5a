package params

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultMaxLines is the warn-and-truncate cap applied to file-backed
// parameter sources when the spec does not override it.
const DefaultMaxLines = 100000

// loadFileValues reads up to maxLines values from path. If column is
// non-empty the file is treated as CSV and the named column (or, when
// column is a bare integer, the column at that index) is extracted; otherwise each
// non-blank line is used verbatim. Values are loaded once, at construction,
// and never reread.
func loadFileValues(path, column string, maxLines int, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: parameter file %q: %v", ErrInvalidSource, path, err)
	}
	defer f.Close()

	var values []string
	if column != "" {
		values, err = loadCSVColumn(f, column, maxLines, logger)
	} else {
		values, err = loadPlainLines(f, maxLines, logger)
	}
	if err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: parameter file %q yielded zero usable values", ErrInvalidSource, path)
	}
	if len(values) == maxLines {
		logger.Warn("parameter file truncated at max line cap", zap.String("path", path), zap.Int("maxLines", maxLines))
	}
	return values, nil
}

func loadPlainLines(f *os.File, maxLines int, logger *zap.Logger) ([]string, error) {
	var values []string
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(values) < maxLines {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading parameter file: %v", ErrInvalidSource, err)
	}
	return values, nil
}

func loadCSVColumn(f *os.File, column string, maxLines int, logger *zap.Logger) ([]string, error) {
	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV header: %v", ErrInvalidSource, err)
	}

	colIdx := 0
	found := false
	if idx, err := strconv.Atoi(column); err == nil {
		colIdx = idx
		found = true
	} else {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), column) {
				colIdx = i
				found = true
				break
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: CSV column %q not found in header %v", ErrInvalidSource, column, header)
	}

	var values []string
	rowNum := 1
	for len(values) < maxLines {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			logger.Warn("skipping malformed parameter file row", zap.Int("row", rowNum), zap.Error(err))
			continue
		}
		if colIdx >= len(row) {
			logger.Warn("skipping short parameter file row", zap.Int("row", rowNum))
			continue
		}
		v := strings.TrimSpace(row[colIdx])
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// FileRoundRobin cycles through its loaded values in order, wrapping at the
// end, via an overflow-safe atomic index.
type FileRoundRobin struct {
	values []string
	idx    uint64
}

func NewFileRoundRobin(path, column string, maxLines int, logger *zap.Logger) (*FileRoundRobin, error) {
	values, err := loadFileValues(path, column, maxLines, logger)
	if err != nil {
		return nil, err
	}
	return &FileRoundRobin{values: values}, nil
}

func (f *FileRoundRobin) Next() string {
	n := atomic.AddUint64(&f.idx, 1) - 1
	return f.values[n%uint64(len(f.values))]
}

// FileRandom draws uniformly over its loaded values.
type FileRandom struct {
	values []string
	rng    *rand.Rand
}

func NewFileRandom(path, column string, maxLines int, logger *zap.Logger, rng *rand.Rand) (*FileRandom, error) {
	values, err := loadFileValues(path, column, maxLines, logger)
	if err != nil {
		return nil, err
	}
	return &FileRandom{values: values, rng: rng}, nil
}

func (f *FileRandom) Next() string {
	return f.values[f.rng.Intn(len(f.values))]
}

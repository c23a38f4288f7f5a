package profile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	timeColumnRe = regexp.MustCompile(`(?i)(time|^t$)`)
	tpsColumnRe  = regexp.MustCompile(`(?i)(tps|rate)`)
)

// LoadPatternFile parses a Custom-profile pattern file: CSV with a header
// row, one column matching /time|^t$/ and one matching /tps|rate/
// (case-insensitive). Malformed rows are warned-and-skipped. If
// timeInSeconds is true, the time column is converted to milliseconds.
func LoadPatternFile(path string, timeInSeconds bool, logger *zap.Logger) (*Custom, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern file %q: %v", ErrInvalidProfile, path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: pattern file %q: reading header: %v", ErrInvalidProfile, path, err)
	}

	timeCol, tpsCol := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(col)
		if timeColumnRe.MatchString(col) && timeCol == -1 {
			timeCol = i
		}
		if tpsColumnRe.MatchString(col) && tpsCol == -1 {
			tpsCol = i
		}
	}
	if timeCol == -1 || tpsCol == -1 {
		return nil, fmt.Errorf("%w: pattern file %q: missing time or tps/rate column in header %v", ErrInvalidProfile, path, header)
	}

	var points []Point
	rowNum := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			logger.Warn("skipping malformed pattern file row", zap.String("path", path), zap.Int("row", rowNum), zap.Error(err))
			continue
		}
		if timeCol >= len(row) || tpsCol >= len(row) {
			logger.Warn("skipping short pattern file row", zap.String("path", path), zap.Int("row", rowNum))
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(row[timeCol]), 64)
		if err != nil {
			logger.Warn("skipping pattern file row with bad time value", zap.String("path", path), zap.Int("row", rowNum), zap.Error(err))
			continue
		}
		tps, err := strconv.ParseFloat(strings.TrimSpace(row[tpsCol]), 64)
		if err != nil {
			logger.Warn("skipping pattern file row with bad tps value", zap.String("path", path), zap.Int("row", rowNum), zap.Error(err))
			continue
		}
		tMillis := int64(t)
		if timeInSeconds {
			tMillis = int64(t * 1000)
		}
		points = append(points, Point{TMillis: tMillis, Tps: tps})
	}

	return NewCustom(points)
}

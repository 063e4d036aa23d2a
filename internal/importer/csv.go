package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// extractCharset decodes the extract file into UTF-8. Current extracts
// are plain UTF-8; older ones shipped with a BOM, sometimes UTF-16.
var extractCharset = unicode.BOMOverride(transform.Nop)

// passCounts tracks what one pass did to its source file.
type passCounts struct {
	Read      int64
	Malformed int64
}

// streamRows decodes path row by row into T and hands each row to fn.
// Rows that fail to parse are counted and skipped; a fn error aborts the
// pass. The whole file is never held in memory.
func streamRows[T any](path string, fn func(row *T) error) (passCounts, error) {
	var counts passCounts

	f, err := os.Open(path)
	if err != nil {
		return counts, eris.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close()

	cr := csv.NewReader(transform.NewReader(f, extractCharset))
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return counts, eris.Wrapf(err, "importer: read header of %s", path)
	}

	for {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return counts, nil
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				counts.Malformed++
				zap.L().Warn("importer: skipping malformed row",
					zap.String("file", path),
					zap.Int64("row", counts.Read+counts.Malformed),
					zap.Error(err))
				continue
			}
			return counts, eris.Wrapf(err, "importer: decode row in %s", path)
		}

		counts.Read++
		if err := fn(&row); err != nil {
			return counts, err
		}
	}
}

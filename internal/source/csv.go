package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/partspec/internal/core"
)

// ReadCSV reads a specification table from CSV. A leading UTF-8 or UTF-16
// byte order mark is honoured whatever the configured encoding.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) (*core.SpecTable, error) {
	enc, err := textEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return buildTable(ctx, records)
}

func textEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "euc-kr", "euckr", "cp949":
		return korean.EUCKR, nil
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrUnsupportedFormat, name)
	}
}

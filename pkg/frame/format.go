package frame

import (
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/pairscan/pkg/compression"
	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// Kind identifies how a table file is laid out.
type Kind int

const (
	// Delimited is a text table split by a single delimiter rune
	Delimited Kind = iota
	// Workbook is an Excel .xlsx workbook
	Workbook
)

// Format describes how to decode a table file.
type Format struct {
	Kind        Kind
	Delimiter   rune
	Compression compression.Algorithm
}

// DetectFormat infers the table format from the path: ".csv" is comma
// delimited, ".tsv" and ".txt" are tab delimited, ".xlsx" is a workbook.
// A trailing compression suffix such as ".gz" is peeled off first.
func DetectFormat(path string) (Format, error) {
	alg, inner := compression.FromPath(path)
	format := Format{Compression: alg}

	switch strings.ToLower(filepath.Ext(inner)) {
	case ".csv":
		format.Delimiter = ','
	case ".tsv", ".txt":
		format.Delimiter = '\t'
	case ".xlsx":
		format.Kind = Workbook
	default:
		return Format{}, errors.New(errors.ErrorTypeFileFormat,
			"cannot determine delimiter: file must be csv, tsv, txt or xlsx").
			WithDetail("path", path)
	}
	return format, nil
}

// Delimiter returns the delimiter for a delimited path. It is the
// output-side counterpart of DetectFormat and rejects workbooks.
func Delimiter(path string) (rune, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return 0, err
	}
	if format.Kind != Delimited {
		return 0, errors.New(errors.ErrorTypeFileFormat, "path is not a delimited text file").
			WithDetail("path", path)
	}
	return format.Delimiter, nil
}

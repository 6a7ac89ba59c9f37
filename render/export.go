package render

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/qsql"
)

// ErrUnknownCodec is returned for an unsupported codec name.
var ErrUnknownCodec = errors.New("unknown export codec")

// Codec selects the compression of an export.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Codec(%d)", uint8(c))
	}
}

// ParseCodec parses "none", "zstd" or "lz4".
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "csv":
		return CodecNone, nil
	case "zstd", "zst":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	}
	return CodecNone, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

// CodecFor picks a codec from a file extension.
func CodecFor(name string) Codec {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return CodecZstd
	case ".lz4":
		return CodecLZ4
	default:
		return CodecNone
	}
}

// Record is one row of an export.
type Record struct {
	Index int
	Score float64
	Match bool
}

var exportHeader = []string{"index", "score", "match"}

// Export writes the score vector of res as "index,score,match" CSV,
// compressed with codec.
func Export(w io.Writer, res *qsql.Result, codec Codec) error {
	cw, err := compressor(w, codec)
	if err != nil {
		return err
	}

	enc := csv.NewWriter(cw)
	if err := enc.Write(exportHeader); err != nil {
		return err
	}
	for i, s := range res.Scores {
		rec := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(s, 'g', -1, 64),
			strconv.FormatBool(res.Matches(i)),
		}
		if err := enc.Write(rec); err != nil {
			return err
		}
	}
	enc.Flush()
	if err := enc.Error(); err != nil {
		return err
	}

	return cw.Close()
}

// ReadExport decodes an export written by Export.
func ReadExport(r io.Reader, codec Codec) ([]Record, error) {
	dr, closeFn, err := decompressor(r, codec)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	dec := csv.NewReader(dr)
	header, err := dec.Read()
	if err != nil {
		return nil, fmt.Errorf("export header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(exportHeader, ",") {
		return nil, fmt.Errorf("export header: unexpected columns %v", header)
	}

	var out []Record
	for {
		rec, err := dec.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("export index: %w", err)
		}
		score, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("export score: %w", err)
		}
		match, err := strconv.ParseBool(rec[2])
		if err != nil {
			return nil, fmt.Errorf("export match: %w", err)
		}
		out = append(out, Record{Index: idx, Score: score, Match: match})
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecZstd:
		return zstd.NewWriter(w)
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCodec, codec)
	}
}

func decompressor(r io.Reader, codec Codec) (io.Reader, func(), error) {
	switch codec {
	case CodecNone:
		return r, func() {}, nil
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case CodecLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownCodec, codec)
	}
}

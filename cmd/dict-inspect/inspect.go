package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/errors"

	"github.com/hexbee-net/dictcol"
	"github.com/hexbee-net/dictcol/deserialize"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/dictcol/source"
)

// inspectCommand decodes one column chunk and prints the arrays it produces.
type inspectCommand struct {
	uri      string
	offset   int64
	size     int64
	column   string
	rowGroup int

	physicalType string
	typeLength   int
	optional     bool
	codec        string
	values       bool

	configFile   string
	chunkSize    int
	limit        int
	keyWidth     int
	chunkSizeSet bool
	limitSet     bool
	keyWidthSet  bool

	logger log.Logger
}

type summary struct {
	arrays int
	rows   int64
	nulls  int64
}

func (cmd *inspectCommand) config() (dictcol.Config, error) {
	cfg := dictcol.DefaultConfig()

	if cmd.configFile != "" {
		var err error
		if cfg, err = dictcol.LoadConfig(cmd.configFile); err != nil {
			return cfg, err
		}
	}

	if cmd.chunkSizeSet {
		cfg.ChunkSize = cmd.chunkSize
	}

	if cmd.limitSet {
		cfg.Limit = cmd.limit
	}

	if cmd.keyWidthSet {
		cfg.KeyWidth = cmd.keyWidth
	}

	return cfg, cfg.Validate()
}

func (cmd *inspectCommand) descriptor() (layout.ColumnDescriptor, error) {
	desc := layout.ColumnDescriptor{
		TypeLength: cmd.typeLength,
		Repetition: parquet.FieldRepetitionType_REQUIRED,
	}

	if cmd.optional {
		desc.Repetition = parquet.FieldRepetitionType_OPTIONAL
	}

	var err error

	if desc.Type, err = parquet.TypeFromString(strings.ToUpper(cmd.physicalType)); err != nil {
		return desc, errors.Wrap(err, "invalid column type")
	}

	if desc.Codec, err = parquet.CompressionCodecFromString(strings.ToUpper(cmd.codec)); err != nil {
		return desc, errors.Wrap(err, "invalid compression codec")
	}

	return desc, nil
}

// locate returns the descriptor and the byte range of the column chunk,
// from the file footer when a column is named.
func (cmd *inspectCommand) locate(ctx context.Context, src source.Reader) (layout.ColumnDescriptor, int64, int64, error) {
	if cmd.column == "" {
		desc, err := cmd.descriptor()
		return desc, cmd.offset, cmd.size, err
	}

	meta, err := layout.ReadFileMetaData(ctx, src, src.Size())
	if err != nil {
		return layout.ColumnDescriptor{}, 0, 0, err
	}

	chunk, err := layout.FindColumnChunk(meta, cmd.rowGroup, cmd.column)
	if err != nil {
		return layout.ColumnDescriptor{}, 0, 0, err
	}

	return chunk.Descriptor, chunk.Offset, chunk.Descriptor.TotalCompressedSize, nil
}

func (cmd *inspectCommand) run(ctx context.Context, out io.Writer) error {
	if cmd.logger == nil {
		cmd.logger = log.NewNopLogger()
	}

	cfg, err := cmd.config()
	if err != nil {
		return err
	}

	src, err := source.Open(ctx, cmd.uri)
	if err != nil {
		return errors.Wrap(err, "failed to open source")
	}

	defer func() { _ = src.Close() }()

	desc, offset, size, err := cmd.locate(ctx, src)
	if err != nil {
		return err
	}

	section, err := source.Section(src, offset, size)
	if err != nil {
		return err
	}

	desc.TotalCompressedSize = section.Size()

	level.Info(cmd.logger).Log("msg", "reading column chunk", "uri", cmd.uri, "offset", offset, "size", desc.TotalCompressedSize, "type", desc.Type)

	var sum summary

	switch cfg.KeyWidth {
	case 8:
		sum, err = inspect[uint8](section, desc, cfg, cmd.logger, cmd.values, out)
	case 16:
		sum, err = inspect[uint16](section, desc, cfg, cmd.logger, cmd.values, out)
	case 64:
		sum, err = inspect[uint64](section, desc, cfg, cmd.logger, cmd.values, out)
	default:
		sum, err = inspect[uint32](section, desc, cfg, cmd.logger, cmd.values, out)
	}

	if err != nil {
		return err
	}

	_, _ = color.New(color.Bold).Fprintln(out, "Column chunk:")
	fmt.Fprintf(out,
		"\tsize: %v, arrays: %d, rows: %s, nulls: %s\n",
		humanize.Bytes(uint64(desc.TotalCompressedSize)),
		sum.arrays,
		humanize.Comma(sum.rows),
		humanize.Comma(sum.nulls),
	)

	return nil
}

func inspect[K deserialize.Key](r io.Reader, desc layout.ColumnDescriptor, cfg dictcol.Config, logger log.Logger, values bool, out io.Writer) (summary, error) {
	var sum summary

	reader, err := dictcol.Open[K](r, desc, cfg, dictcol.WithLogger(logger))
	if err != nil {
		return sum, err
	}

	defer reader.Close()

	bold := color.New(color.Bold)

	for {
		arr, err := reader.Next()
		if err == io.EOF {
			return sum, nil
		}

		if err != nil {
			return sum, err
		}

		_, _ = bold.Fprintf(out, "Array %d:", sum.arrays)
		fmt.Fprintf(out, " rows: %d, nulls: %d, dictionary: %d values\n", arr.Len(), arr.NullN(), arr.Dictionary().Len())

		if values {
			fmt.Fprintf(out, "\t[%s]\n", strings.Join(formatValues(arr), " "))
		}

		sum.arrays++
		sum.rows += int64(arr.Len())
		sum.nulls += int64(arr.NullN())

		arr.Release()
	}
}

func formatValues(arr *array.Dictionary) []string {
	values := make([]string, arr.Len())

	for i := range values {
		if arr.IsNull(i) {
			values[i] = "(null)"
			continue
		}

		idx := arr.GetValueIndex(i)

		switch dict := arr.Dictionary().(type) {
		case *array.Binary:
			values[i] = fmt.Sprintf("%q", dict.Value(idx))
		default:
			values[i] = dict.ValueStr(idx)
		}
	}

	return values
}

package main

import (
	"context"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

func main() {
	app := kingpin.New("dict-inspect", "Decode a dictionary-encoded Parquet column chunk and print the arrays it is split into.")

	cmd := &inspectCommand{}
	app.Arg("uri", "Location of the file holding the column chunk: a path, file://, s3://, gs://, hdfs:// or an Azure blob URL.").Required().StringVar(&cmd.uri)
	app.Flag("column", "Dotted path of the column to read, located from the file footer. Overrides the chunk flags below.").StringVar(&cmd.column)
	app.Flag("row-group", "Row group of the column to read.").IntVar(&cmd.rowGroup)
	app.Flag("offset", "Byte offset of the column chunk in the file.").Int64Var(&cmd.offset)
	app.Flag("size", "Byte size of the column chunk. 0 to read up to the end of the file.").Int64Var(&cmd.size)
	app.Flag("type", "Physical type of the column.").Default("BYTE_ARRAY").StringVar(&cmd.physicalType)
	app.Flag("type-length", "Length of FIXED_LEN_BYTE_ARRAY values.").IntVar(&cmd.typeLength)
	app.Flag("optional", "The column is optional.").BoolVar(&cmd.optional)
	app.Flag("codec", "Compression codec of the column chunk.").Default("UNCOMPRESSED").StringVar(&cmd.codec)
	app.Flag("values", "Print the values of every array.").BoolVar(&cmd.values)
	app.Flag("config.file", "YAML file to load the reader configuration from.").StringVar(&cmd.configFile)
	app.Flag("chunk-size", "Number of rows of each array. 0 to decode the chunk into a single array.").IsSetByUser(&cmd.chunkSizeSet).IntVar(&cmd.chunkSize)
	app.Flag("limit", "Maximum number of rows to read. 0 to disable.").IsSetByUser(&cmd.limitSet).IntVar(&cmd.limit)
	app.Flag("key-width", "Width in bits of the dictionary keys (8, 16, 32 or 64).").IsSetByUser(&cmd.keyWidthSet).IntVar(&cmd.keyWidth)
	logLevel := app.Flag("log.level", "Only log messages with the given severity or above.").Default("info").Enum("debug", "info", "warn", "error")

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cmd.logger = newLogger(*logLevel)

	if err := cmd.run(context.Background(), os.Stdout); err != nil {
		exitWithErr(err)
	}
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var filter level.Option

	switch lvl {
	case "debug":
		filter = level.AllowDebug()
	case "warn":
		filter = level.AllowWarn()
	case "error":
		filter = level.AllowError()
	default:
		filter = level.AllowInfo()
	}

	return level.NewFilter(logger, filter)
}

func exitWithErr(err error) {
	_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

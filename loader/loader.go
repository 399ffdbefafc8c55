// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package loader builds the gazetteer from a geonames dump.
//
// A load clears the store and inserts every table again. It must run alone:
// the store is not expected to serve searches while it is being loaded.
package loader

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/schollz/progressbar/v3"
)

// DefaultBatchSize is the number of rows inserted per transaction.
const DefaultBatchSize = 10_000

// logEvery is the number of rows between progress log lines when there is
// no progress bar.
const logEvery = 500_000

// Writer is the storage the loader fills.
type Writer interface {
	Clear(ctx context.Context) error
	InsertCountries(ctx context.Context, countries []gazetteer.Country) error
	InsertAdmin1(ctx context.Context, admin1 []gazetteer.Admin1) error
	InsertAdmin2(ctx context.Context, admin2 []gazetteer.Admin2) error
	InsertLocalities(ctx context.Context, localities []gazetteer.Locality) error
	InsertAlternateNames(ctx context.Context, names []gazetteer.AlternateName) error
}

// Report summarizes a load.
type Report struct {
	Countries             int           `json:"countries"`
	CountriesSkipped      int           `json:"countries_skipped"`
	Admin1                int           `json:"admin1"`
	Admin1Skipped         int           `json:"admin1_skipped"`
	Admin2                int           `json:"admin2"`
	Admin2Duplicates      int           `json:"admin2_duplicates"`
	Admin2Skipped         int           `json:"admin2_skipped"`
	Localities            int           `json:"localities"`
	LocalitiesSkipped     int           `json:"localities_skipped"`
	AlternateNames        int           `json:"alternate_names"`
	AlternateNamesSkipped int           `json:"alternate_names_skipped"`
	Elapsed               time.Duration `json:"elapsed"`
}

func (r *Report) String() string {
	var sb strings.Builder

	row := func(label string, loaded, skipped int) {
		fmt.Fprintf(&sb, "%-16s %12s loaded %12s skipped\n", label, humanize.Comma(int64(loaded)), humanize.Comma(int64(skipped)))
	}

	row("countries", r.Countries, r.CountriesSkipped)
	row("admin1", r.Admin1, r.Admin1Skipped)
	row("admin2", r.Admin2, r.Admin2Skipped)
	fmt.Fprintf(&sb, "%-16s %12s duplicates\n", "", humanize.Comma(int64(r.Admin2Duplicates)))
	row("localities", r.Localities, r.LocalitiesSkipped)
	row("alternate names", r.AlternateNames, r.AlternateNamesSkipped)
	fmt.Fprintf(&sb, "elapsed %s\n", r.Elapsed.Round(time.Second))

	return sb.String()
}

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the number of rows per insert transaction.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithProgress draws progress bars on w. Without it progress is logged.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) {
		l.progress = w
	}
}

// Loader fills a Writer from the files of a Downloader.
type Loader struct {
	files     *Downloader
	writer    Writer
	batchSize int
	logger    *slog.Logger
	progress  io.Writer
}

// New returns a loader.
func New(files *Downloader, writer Writer, opts ...Option) *Loader {
	l := &Loader{
		files:     files,
		writer:    writer,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run downloads the missing dump files and replaces the gazetteer with their
// content.
func (l *Loader) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	if err := l.files.Ensure(ctx, Files()...); err != nil {
		return nil, fmt.Errorf("fetching dump files: %w", err)
	}

	l.logger.Info("clearing tables")

	if err := l.writer.Clear(ctx); err != nil {
		return nil, err
	}

	var (
		report  Report
		skipped map[gazetteer.IntegrityKind]int
	)

	parser := NewParser()
	parser.OnSkip = func(err *gazetteer.IntegrityError) {
		skipped[err.Kind]++

		l.logger.Debug("skipping record", "kind", err.Kind.String(), "reason", err.Message)
	}

	total := func() int {
		n := 0
		for _, v := range skipped {
			n += v
		}

		return n
	}

	var err error

	skipped = map[gazetteer.IntegrityKind]int{}
	if report.Countries, err = loadFile(ctx, l, CountryInfoFile, "", parser.Countries, l.writer.InsertCountries); err != nil {
		return nil, err
	}

	report.CountriesSkipped = total()

	skipped = map[gazetteer.IntegrityKind]int{}
	if report.Admin1, err = loadFile(ctx, l, Admin1File, "", parser.Admin1, l.writer.InsertAdmin1); err != nil {
		return nil, err
	}

	report.Admin1Skipped = total()

	skipped = map[gazetteer.IntegrityKind]int{}
	if report.Admin2, err = loadFile(ctx, l, Admin2File, "", parser.Admin2, l.writer.InsertAdmin2); err != nil {
		return nil, err
	}

	report.Admin2Duplicates = skipped[gazetteer.IntegrityDuplicateAdmin2]
	report.Admin2Skipped = total() - report.Admin2Duplicates

	skipped = map[gazetteer.IntegrityKind]int{}
	if report.Localities, err = loadFile(ctx, l, LocalitiesFile, LocalitiesEntry, parser.Localities, l.writer.InsertLocalities); err != nil {
		return nil, err
	}

	report.LocalitiesSkipped = total()

	skipped = map[gazetteer.IntegrityKind]int{}
	if report.AlternateNames, err = loadFile(ctx, l, AlternateNamesFile, AlternateNamesEntry, parser.AlternateNames, l.writer.InsertAlternateNames); err != nil {
		return nil, err
	}

	report.AlternateNamesSkipped = total()
	report.Elapsed = time.Since(start)

	l.logger.Info("load complete",
		"countries", report.Countries,
		"admin1", report.Admin1,
		"admin2", report.Admin2,
		"localities", report.Localities,
		"alternate_names", report.AlternateNames,
		"elapsed", report.Elapsed)

	return &report, nil
}

// loadFile parses a dump file, or the entry of a zipped one, and inserts its
// records in batches. It returns the number of records inserted.
func loadFile[T any](
	ctx context.Context,
	l *Loader,
	name, entry string,
	parse func(io.Reader, func(T) error) error,
	insert func(context.Context, []T) error,
) (int, error) {
	r, size, closer, err := l.open(name, entry)
	if err != nil {
		return 0, err
	}
	defer closer()

	label := name
	if entry != "" {
		label = entry
	}

	var bar *progressbar.ProgressBar

	if l.progress != nil {
		bar = progressbar.NewOptions64(size,
			progressbar.OptionSetDescription("Loading "+label),
			progressbar.OptionSetWriter(l.progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)
		r = io.TeeReader(r, bar)
	}

	b := &batch[T]{size: l.batchSize, flush: insert}
	b.onFlush = func(total int) {
		if bar == nil && total/logEvery != (total-len(b.rows))/logEvery {
			l.logger.Info("loading", "file", label, "records", humanize.Comma(int64(total)))
		}
	}

	err = parse(r, func(v T) error { return b.add(ctx, v) })
	if err == nil {
		err = b.close(ctx)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return b.total, fmt.Errorf("loading %s: %w", label, err)
	}

	l.logger.Info("loaded", "file", label, "records", humanize.Comma(int64(b.total)))

	return b.total, nil
}

// open returns a reader over a dump file, or over one entry of a zipped
// dump file, along with its uncompressed size.
func (l *Loader) open(name, entry string) (io.Reader, int64, func(), error) {
	path := l.files.Path(name)

	if entry == "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("opening %s: %w", path, err)
		}

		var size int64
		if fi, err := f.Stat(); err == nil {
			size = fi.Size()
		}

		return f, size, func() { f.Close() }, nil
	}

	rz, err := zip.OpenReader(path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	f, err := rz.Open(entry)
	if err != nil {
		rz.Close()

		return nil, 0, nil, fmt.Errorf("opening %s in %s: %w", entry, path, err)
	}

	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}

	return f, size, func() {
		f.Close()
		rz.Close()
	}, nil
}

// batch accumulates rows and inserts them size at a time.
type batch[T any] struct {
	rows    []T
	size    int
	total   int
	flush   func(context.Context, []T) error
	onFlush func(total int)
}

func (b *batch[T]) add(ctx context.Context, v T) error {
	b.rows = append(b.rows, v)
	if len(b.rows) < b.size {
		return nil
	}

	return b.close(ctx)
}

func (b *batch[T]) close(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.flush(ctx, b.rows); err != nil {
		return err
	}

	b.total += len(b.rows)
	if b.onFlush != nil {
		b.onFlush(b.total)
	}

	b.rows = b.rows[:0]

	return nil
}

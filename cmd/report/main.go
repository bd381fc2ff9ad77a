// Salesboard - Sales KPI Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesboard

// Command report renders the KPI PDF report from a CSV file without running
// the server. It uses the same loader, filter and aggregation as the API.
//
//	report -data sales.csv -out report.pdf -start 2024-01-01 -end 2024-03-31 -channels email,social
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/salesboard/internal/analytics"
	"github.com/tomtom215/salesboard/internal/config"
	"github.com/tomtom215/salesboard/internal/dataset"
	"github.com/tomtom215/salesboard/internal/filter"
	"github.com/tomtom215/salesboard/internal/logging"
	"github.com/tomtom215/salesboard/internal/report"
	"github.com/tomtom215/salesboard/internal/validation"
)

type options struct {
	data     string
	out      string
	start    string
	end      string
	channels *string // nil when the flag was not given
	title    string
	topN     int
	timeout  time.Duration
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logging.Init(logging.Config{Level: "info", Format: "console", Timestamp: true})

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	var channels string
	fs.StringVar(&opts.data, "data", "sales_data.csv", "Path to the sales CSV file")
	fs.StringVar(&opts.out, "out", "kpi-report.pdf", "Output PDF path, - for stdout")
	fs.StringVar(&opts.start, "start", "", "First day to include (YYYY-MM-DD)")
	fs.StringVar(&opts.end, "end", "", "Last day to include (YYYY-MM-DD)")
	fs.StringVar(&channels, "channels", "", "Comma-separated marketing channels (default all)")
	fs.StringVar(&opts.title, "title", "Sales KPI Report", "Report title")
	fs.IntVar(&opts.topN, "top", 10, "Rows per dimension table, 0 for all")
	fs.DurationVar(&opts.timeout, "timeout", time.Minute, "Load and render timeout")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Salesboard KPI report

Usage:
  report -data sales.csv -out report.pdf [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-channels a,b]

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "channels" {
			opts.channels = &channels
		}
	})
	return opts, nil
}

// criteria converts the flags for ds. Dates are inclusive calendar days.
func (o *options) criteria(ds *dataset.Dataset) (filter.Criteria, error) {
	var c filter.Criteria
	var err error
	if o.start != "" {
		if c.Start, err = time.Parse(validation.ISODateLayout, o.start); err != nil {
			return c, fmt.Errorf("invalid -start %q: want YYYY-MM-DD", o.start)
		}
	}
	if o.end != "" {
		if c.End, err = time.Parse(validation.ISODateLayout, o.end); err != nil {
			return c, fmt.Errorf("invalid -end %q: want YYYY-MM-DD", o.end)
		}
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.Start.After(c.End) {
		return c, fmt.Errorf("-start %s is after -end %s", o.start, o.end)
	}

	if o.channels == nil {
		c.Channels = ds.Channels()
		return c, nil
	}
	c.Channels = []string{}
	for _, ch := range strings.Split(*o.channels, ",") {
		if ch = strings.TrimSpace(ch); ch != "" {
			c.Channels = append(c.Channels, ch)
		}
	}
	return c, nil
}

func run(ctx context.Context, opts options) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	svc := analytics.NewService(&config.DatasetConfig{Path: opts.data, LoadTimeout: opts.timeout},
		dataset.NewLoader(), analytics.NewMemoryEngine(), nil)
	defer func() {
		if err := svc.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing analytics service")
		}
	}()

	ds, err := svc.Dataset(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.data, err)
	}
	c, err := opts.criteria(ds)
	if err != nil {
		return err
	}

	pdf, err := report.Generate(ctx, svc, ds, c, report.Options{Title: opts.title, TopN: opts.topN})
	if err != nil {
		return err
	}

	if opts.out == "-" {
		_, err := os.Stdout.Write(pdf)
		return err
	}
	if err := os.WriteFile(opts.out, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	logging.Info().
		Str("out", opts.out).
		Int("bytes", len(pdf)).
		Int("records", len(ds.Records)).
		Msg("Report written")
	return nil
}

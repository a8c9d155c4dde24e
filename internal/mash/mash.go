// Package mash reduces Mash dist tables to the minimum distance of each
// reference assembly to any query genome.
package mash

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/phagepairs/internal/accession"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/pairs"
)

const componentMash = "mash"

// Mash dist columns: query, reference, distance, p-value, shared hashes.
const (
	colReference = 1
	colDistance  = 2
)

// Stats counts what the parser saw across all inputs.
type Stats struct {
	Files              int
	Rows               int
	SkippedNoAccession int
	SkippedNotAllowed  int
	SkippedBadDistance int
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Rows += o.Rows
	s.SkippedNoAccession += o.SkippedNoAccession
	s.SkippedNotAllowed += o.SkippedNotAllowed
	s.SkippedBadDistance += o.SkippedBadDistance
}

// Options controls Aggregate.
type Options struct {
	Allowed []string // accessions to keep; nil keeps all
	Workers int      // files parsed concurrently, one per CPU when <= 0
}

// Result is the per-accession minimum distance table.
type Result struct {
	Distances []Distance // sorted by accession
	Stats     Stats
}

// Aggregate parses every Mash dist file in paths and keeps the smallest
// distance seen for each reference accession.
func Aggregate(ctx context.Context, fs afero.Fs, paths []string, opts Options, log logger.Logger) (*Result, error) {
	var allowed map[string]struct{}
	if opts.Allowed != nil {
		allowed = make(map[string]struct{}, len(opts.Allowed))
		for _, acc := range opts.Allowed {
			allowed[acc] = struct{}{}
		}
	}

	var (
		mu    sync.Mutex
		mins  = make(map[string]float64)
		stats Stats
	)

	g, ctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			local, fileStats, err := parseFile(ctx, fs, path, allowed)
			if err != nil {
				return err
			}
			log.Debug("Parsed mash table",
				logger.String("path", path),
				logger.Int("rows", fileStats.Rows),
				logger.Int("accessions", len(local)))

			mu.Lock()
			defer mu.Unlock()
			stats.add(fileStats)
			for acc, d := range local {
				if cur, ok := mins[acc]; !ok || d < cur {
					mins[acc] = d
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	accs := make([]string, 0, len(mins))
	for acc := range mins {
		accs = append(accs, acc)
	}
	slices.Sort(accs)

	res := &Result{Distances: make([]Distance, 0, len(accs)), Stats: stats}
	for _, acc := range accs {
		d := mins[acc]
		res.Distances = append(res.Distances, Distance{
			Accession: acc,
			MinDist:   Fixed6(d),
			ApproxANI: Fixed6(1 - d),
		})
	}
	return res, nil
}

// parseFile reads one headerless, tab-separated Mash dist table.
func parseFile(ctx context.Context, fs afero.Fs, path string, allowed map[string]struct{}) (map[string]float64, Stats, error) {
	stats := Stats{Files: 1}

	rc, err := pairs.Open(fs, path, "mash table")
	if err != nil {
		return nil, stats, err
	}
	defer func() { _ = rc.Close() }()

	r := csv.NewReader(rc)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	mins := make(map[string]float64)
	for {
		if stats.Rows%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, errors.New(fmt.Errorf("parse %s: %w", path, err)).
				Component(componentMash).
				Category(errors.CategoryFileParsing).
				Build()
		}
		if len(record) <= colDistance {
			continue
		}
		stats.Rows++

		acc, ok := accession.Assembly(record[colReference])
		if !ok {
			stats.SkippedNoAccession++
			continue
		}
		if allowed != nil {
			if _, ok := allowed[acc]; !ok {
				stats.SkippedNotAllowed++
				continue
			}
		}

		d, err := strconv.ParseFloat(strings.TrimSpace(record[colDistance]), 64)
		if err != nil || math.IsNaN(d) {
			stats.SkippedBadDistance++
			continue
		}

		if cur, seen := mins[acc]; !seen || d < cur {
			mins[acc] = d
		}
	}

	return mins, stats, nil
}

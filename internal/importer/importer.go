// Package importer turns bank CSV exports into statement entries.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/payday-dev/payday/internal/model"
)

// Parser converts a bank CSV file into statement entries. account is
// stamped on rows that do not carry their own.
type Parser interface {
	Parse(r io.Reader, account string) ([]model.StatementEntry, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the statements directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists registered format names in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	r.Register(&ChaseParser{})
	return r
}

// Scan returns the CSV files directly inside dir. A missing directory
// yields no files.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading statements dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// LoadDir parses every CSV in dir with the parser registered for format
// and returns the combined entries with duplicates removed. Files are
// parsed concurrently but combined in directory order.
func LoadDir(ctx context.Context, reg *Registry, dir, format, account string) ([]model.StatementEntry, error) {
	p := reg.Get(format)
	if p == nil {
		return nil, fmt.Errorf("unknown statement format %q (have %s)", format, strings.Join(reg.Formats(), ", "))
	}
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	parsed := make([][]model.StatementEntry, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, fi := range files {
		i, fi := i, fi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := parseFile(p, fi.Path, account)
			if err != nil {
				return fmt.Errorf("%s: %w", fi.Name, err)
			}
			parsed[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.StatementEntry
	for _, entries := range parsed {
		all = append(all, entries...)
	}
	return Dedupe(all), nil
}

const maxParallelFiles = 4

func parseFile(p Parser, path, account string) ([]model.StatementEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, account)
}

// Dedupe drops entries whose ID has already been seen, keeping the first.
// The same statement exported twice therefore counts once.
func Dedupe(entries []model.StatementEntry) []model.StatementEntry {
	if len(entries) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(entries))
	out := make([]model.StatementEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("payday:statement-entry"))

// idGen derives stable IDs for rows that have none. Identical rows within
// one file get distinct IDs through their ordinal.
type idGen struct {
	seen map[string]int
}

func newIDGen() *idGen {
	return &idGen{seen: make(map[string]int)}
}

func (g *idGen) next(account string, date time.Time, desc string, amount decimal.Decimal) string {
	key := strings.Join([]string{
		account,
		date.Format(model.DateFormat),
		strings.ToUpper(strings.TrimSpace(desc)),
		amount.StringFixed(2),
	}, "|")
	n := g.seen[key]
	g.seen[key] = n + 1
	return uuid.NewSHA1(entryNamespace, fmt.Appendf(nil, "%s|%d", key, n)).String()
}

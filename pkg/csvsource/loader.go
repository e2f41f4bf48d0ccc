package csvsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
)

// Mirror keeps raw document bodies by path, shared between service instances.
// Implementations must treat every failure as a miss.
type Mirror interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	Set(ctx context.Context, path string, body []byte)
}

// Resource is a parsed document and the path it was served from.
type Resource struct {
	Name      string
	Path      string
	Attempted []string
	Rows      []Row
	Warnings  []RowError
}

type LoaderOption func(*Loader)

func WithMirror(m Mirror) LoaderOption {
	return func(l *Loader) { l.mirror = m }
}

func WithParseOptions(opts ParseOptions) LoaderOption {
	return func(l *Loader) { l.parseOpts = opts }
}

// Loader fetches CSV documents by logical name from a static base location.
type Loader struct {
	client    *http.Client
	baseURL   string
	mirror    Mirror
	parseOpts ParseOptions
}

func NewLoader(baseURL string, client *http.Client, opts ...LoaderOption) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	l := &Loader{
		client:    client,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		parseOpts: DefaultParseOptions(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// CandidatePaths returns the paths tried for name: the upper-case file name
// first, then the lower-case one, then name exactly as given. Duplicates are
// dropped, so an all-upper or all-lower name yields fewer paths.
func (l *Loader) CandidatePaths(name string) []string {
	paths := make([]string, 0, 3)
	for _, n := range []string{strings.ToUpper(name), strings.ToLower(name), name} {
		p := l.baseURL + "/" + n
		if !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}

// Fetch tries each candidate path in order, one at a time, and parses the first
// successful response. A parse failure of that response is returned as is; it
// does not move on to the next path.
func (l *Loader) Fetch(ctx context.Context, name string) (*Resource, error) {
	paths := l.CandidatePaths(name)
	notFound := &NotFoundError{Name: name}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := l.fetchBody(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			notFound.Attempts = append(notFound.Attempts, Attempt{Path: path, Reason: err.Error()})
			if i < len(paths)-1 {
				metrics.CSVFallback()
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"resource": name,
					"path":     path,
				}).Debug("csv path failed, trying next")
			}
			continue
		}

		rows, warnings, err := Parse(bytes.NewReader(body), l.parseOpts)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		if len(warnings) > 0 {
			metrics.CSVRowWarnings(len(warnings))
			logger.Log.WithFields(logrus.Fields{
				"resource": name,
				"path":     path,
				"warnings": len(warnings),
				"first":    warnings[0].Error(),
			}).Warn("csv parse warnings")
		}
		metrics.CSVFetched()

		return &Resource{
			Name:      name,
			Path:      path,
			Attempted: paths[:i+1],
			Rows:      rows,
			Warnings:  warnings,
		}, nil
	}

	metrics.CSVNotFound()
	return nil, notFound
}

func (l *Loader) fetchBody(ctx context.Context, path string) ([]byte, error) {
	if l.mirror != nil {
		if body, ok := l.mirror.Get(ctx, path); ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if l.mirror != nil {
		l.mirror.Set(ctx, path, body)
	}
	return body, nil
}

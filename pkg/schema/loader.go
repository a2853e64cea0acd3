package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxRemoteBytes = 8 << 20
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the filesystem SourceFromFS entries are read from.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) { l.fs = fsys }
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithTimeout bounds each remote fetch. Defaults to ten seconds.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// Loader reads documents from files, an fs.FS or HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader returns a Loader. URL sources use http.DefaultClient unless
// WithHTTPClient is given.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{http: http.DefaultClient, timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches the document named by src.
func (l *Loader) Load(ctx context.Context, src Source) (RawDocument, error) {
	if src == nil {
		return RawDocument{}, errors.New("schema: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return RawDocument{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return RawDocument{}, errors.New("schema: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return RawDocument{}, fmt.Errorf("schema: load %s: %w", src.Location(), err)
	}
	return NewRawDocument(src, data)
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
}

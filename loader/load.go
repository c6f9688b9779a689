package loader

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/Comcast/corrcheck/util"

	"golang.org/x/net/publicsuffix"
)

// Fetcher obtains documents by reference.  A reference is a
// filename, a "file://" URL, or an "http://" or "https://" URL.
type Fetcher struct {
	Client *http.Client
	Debug  bool
}

// NewFetcher makes a Fetcher whose HTTP client keeps cookies across
// requests (for documents behind a login).
func NewFetcher() (*Fetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Fetcher{
		Client: &http.Client{Jar: jar},
	}, nil
}

func (f *Fetcher) logf(format string, args ...interface{}) {
	if f.Debug {
		util.Logf(format, args...)
	}
}

// Fetch returns the bytes at the reference.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.get(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		ref = ref[len("file://"):]
	}
	f.logf("reading %s", ref)
	bs, err := ioutil.ReadFile(ref)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	return bs, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	f.logf("getting %s", url)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &FetchError{Ref: url, Err: err}
	}
	req = req.WithContext(ctx)

	c := f.Client
	if c == nil {
		c = http.DefaultClient
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, &FetchError{Ref: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Ref: url, Status: resp.StatusCode}
	}

	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Ref: url, Err: err}
	}
	return bs, nil
}

// Load fetches and decodes the referenced document.
func (f *Fetcher) Load(ctx context.Context, ref string) (*Document, error) {
	bs, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(ref, bs)
}

// Load is Fetcher.Load with a new Fetcher.
func Load(ctx context.Context, ref string) (*Document, error) {
	f, err := NewFetcher()
	if err != nil {
		return nil, err
	}
	return f.Load(ctx, ref)
}

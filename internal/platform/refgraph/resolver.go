// Package refgraph walks hypermedia JSON where nested objects are links of
// the form {"$ref": "<url>"} and lists are paginated collections:
//
//	{"count": 40, "pageIndex": 1, "pageCount": 2, "items": [{"$ref": "..."}]}
package refgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchfeed/internal/platform/cache"
)

const defaultMaxPages = 10

// FetchFunc returns the raw body stored at url.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

type Options struct {
	// MaxPages bounds collection pagination; defaults to 10.
	MaxPages int
	// IsFatal reports errors that abort a walk. Other item errors are skipped.
	IsFatal func(error) bool
	// Cache memoizes bodies by URL when set.
	Cache *cache.Store
}

type Resolver struct {
	fetch    FetchFunc
	maxPages int
	isFatal  func(error) bool
	memo     *cache.Store
}

type link struct {
	Ref string `json:"$ref"`
}

type page struct {
	Ref       string            `json:"$ref"`
	Count     int               `json:"count"`
	PageIndex int               `json:"pageIndex"`
	PageCount int               `json:"pageCount"`
	Items     []json.RawMessage `json:"items"`
}

func NewResolver(fetch FetchFunc, opts Options) *Resolver {
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.IsFatal == nil {
		opts.IsFatal = func(error) bool { return false }
	}
	return &Resolver{
		fetch:    fetch,
		maxPages: opts.MaxPages,
		isFatal:  opts.IsFatal,
		memo:     opts.Cache,
	}
}

// Ref extracts the "$ref" URL of raw, or "" when raw is not a link.
func Ref(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var l link
	if err := sonic.Unmarshal(trimmed, &l); err != nil {
		return ""
	}
	return strings.TrimSpace(l.Ref)
}

// IDAfter returns the path segment following segment in ref, e.g.
// IDAfter(".../teams/359?lang=en", "teams") == "359".
func IDAfter(ref, segment string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == segment {
			return parts[i+1]
		}
	}
	return ""
}

// Fetch loads url, memoized when a cache is configured.
func (r *Resolver) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if r.memo == nil {
		return r.fetch(ctx, rawURL)
	}
	value, err := r.memo.GetOrLoad(ctx, rawURL, func(ctx context.Context) (any, error) {
		return r.fetch(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}
	body, _ := value.([]byte)
	return body, nil
}

// Resolve follows raw when it is a link and returns it unchanged otherwise.
// An inline object that also carries "$ref" is kept as is.
func (r *Resolver) Resolve(ctx context.Context, raw []byte) ([]byte, error) {
	ref := Ref(raw)
	if ref == "" || !linkOnly(raw) {
		return raw, nil
	}
	return r.Fetch(ctx, ref)
}

// ResolveInto resolves raw and decodes it into target.
func (r *Resolver) ResolveInto(ctx context.Context, raw []byte, target any) error {
	body, err := r.Resolve(ctx, raw)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("empty document")
	}
	return sonic.Unmarshal(body, target)
}

// Collection resolves raw into a paginated collection and returns every item,
// each itself resolved. Remaining pages are requested with a page=N query
// parameter on the collection URL. Item errors that are not fatal are
// skipped.
func (r *Resolver) Collection(ctx context.Context, raw []byte) ([]json.RawMessage, error) {
	collectionURL := Ref(raw)
	body, err := r.Resolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	return r.walk(ctx, collectionURL, body)
}

// CollectionAt fetches the collection stored at url.
func (r *Resolver) CollectionAt(ctx context.Context, collectionURL string) ([]json.RawMessage, error) {
	body, err := r.Fetch(ctx, collectionURL)
	if err != nil {
		return nil, err
	}
	return r.walk(ctx, collectionURL, body)
}

func (r *Resolver) walk(ctx context.Context, collectionURL string, body []byte) ([]json.RawMessage, error) {
	var first page
	if err := sonic.Unmarshal(body, &first); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if collectionURL == "" {
		collectionURL = first.Ref
	}

	items := append([]json.RawMessage(nil), first.Items...)
	pageCount := first.PageCount
	if pageCount > r.maxPages {
		pageCount = r.maxPages
	}
	start := first.PageIndex
	if start < 1 {
		start = 1
	}
	if collectionURL != "" {
		for n := start + 1; n <= pageCount; n++ {
			next, err := r.fetchPage(ctx, collectionURL, n)
			if err != nil {
				if r.isFatal(err) {
					return nil, err
				}
				break
			}
			items = append(items, next.Items...)
		}
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		resolved, err := r.Resolve(ctx, item)
		if err != nil {
			if r.isFatal(err) {
				return nil, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			continue
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (r *Resolver) fetchPage(ctx context.Context, collectionURL string, n int) (page, error) {
	u, err := url.Parse(collectionURL)
	if err != nil {
		return page{}, fmt.Errorf("parse collection url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()

	body, err := r.Fetch(ctx, u.String())
	if err != nil {
		return page{}, err
	}
	var p page
	if err := sonic.Unmarshal(body, &p); err != nil {
		return page{}, fmt.Errorf("decode collection page %d: %w", n, err)
	}
	return p, nil
}

// linkOnly reports whether raw is an object whose only key is "$ref".
func linkOnly(raw []byte) bool {
	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return false
	}
	_, ok := fields["$ref"]
	return ok && len(fields) == 1
}

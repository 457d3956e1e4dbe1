// Package dataset queries an Opendatasoft Records v1 portal. The defaults
// target the Agence ORE yearly gas consumption per municipality dataset.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Alia5/studiogen/internal/collab"
)

const (
	DefaultBaseURL = "https://opendata.agenceore.fr/api/records/1.0/search/"
	DefaultDataset = "consommation-annuelle-d-electricite-et-gaz-par-commune"

	Portal  = "opendata.agenceore.fr"
	APIPath = "/api/records/1.0/search/"
	License = "See the terms of use on the portal"

	DefaultRows      = 100
	DefaultCacheSize = 128

	refinePrefix = "refine."
)

// DefaultRefine is applied to every request unless overridden.
var DefaultRefine = map[string]string{"filiere": "Gaz"}

// InseeFields are tried in order for a municipality code; the field name
// differs between dataset vintages.
var InseeFields = []string{"code_commune_insee", "code_insee_commune", "code_commune"}

// Request selects one page of a dataset.
type Request struct {
	Dataset string
	// Refine maps field names (without the refine. prefix) to exact values.
	Refine map[string]string
	// Insee is a municipality code matched against InseeFields.
	Insee string
	Rows  int
	Start int
	Debug bool
}

type Record struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
	Geometry  any            `json:"geometry"`
}

type QueryInfo struct {
	Dataset string            `json:"dataset"`
	Filters map[string]string `json:"filters"`
	Rows    int               `json:"rows"`
	Start   int               `json:"start"`
}

type SourceInfo struct {
	Portal            string `json:"portal"`
	API               string `json:"api"`
	DatasetIdentifier string `json:"dataset_identifier"`
	License           string `json:"license"`
}

type HTTPInfo struct {
	FinalURL    string `json:"final_url"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Auth        string `json:"auth"`
}

// Result is one normalised page.
type Result struct {
	Query   QueryInfo  `json:"query"`
	NHits   int        `json:"nhits"`
	Count   int        `json:"count"`
	Records []Record   `json:"records"`
	Facets  any        `json:"facets"`
	Source  SourceInfo `json:"source"`
	HTTP    *HTTPInfo  `json:"http,omitempty"`
}

type searchResponse struct {
	NHits   int `json:"nhits"`
	Records []struct {
		RecordID        string         `json:"recordid"`
		RecordTimestamp string         `json:"record_timestamp"`
		Fields          map[string]any `json:"fields"`
		Geometry        any            `json:"geometry"`
	} `json:"records"`
	FacetGroups any `json:"facet_groups"`
}

type page struct {
	resp        *searchResponse
	contentType string
}

type Options struct {
	BaseURL   string
	APIKey    string
	CacheSize int
}

// Client fetches pages and keeps recently seen ones in an LRU cache keyed by
// request URL.
type Client struct {
	http    *collab.Client
	baseURL string
	apiKey  string
	cache   *lru.Cache[string, *page]
}

func New(c *collab.Client, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *page](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &Client{
		http:    c,
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		cache:   cache,
	}, nil
}

// Search fetches one page. With an INSEE code, each candidate field is tried
// in turn and the first one that yields hits wins; when none does the
// search fails.
func (c *Client) Search(ctx context.Context, req Request) (*Result, error) {
	if req.Dataset == "" {
		req.Dataset = DefaultDataset
	}
	if req.Rows <= 0 {
		req.Rows = DefaultRows
	}
	if req.Start < 0 {
		return nil, collab.Fatal("dataset", fmt.Errorf("negative start %d", req.Start))
	}

	params := c.params(req)
	if req.Insee == "" {
		p, finalURL, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}
		return c.result(req, params, p, finalURL), nil
	}

	for _, field := range InseeFields {
		try := cloneValues(params)
		try.Set(refinePrefix+field, req.Insee)

		p, finalURL, err := c.get(ctx, try)
		if err != nil {
			if collab.IsTransient(err) {
				return nil, err
			}
			c.http.Logger.Debug("INSEE field rejected", "field", field, "error", err)
			continue
		}
		if p.resp.NHits > 0 {
			c.http.Logger.Debug("INSEE field matched", "field", field, "nhits", p.resp.NHits)
			return c.result(req, try, p, finalURL), nil
		}
	}
	return nil, collab.Fatal("dataset", fmt.Errorf("no records for INSEE code %q with fields %v", req.Insee, InseeFields))
}

func (c *Client) params(req Request) url.Values {
	v := url.Values{}
	v.Set("dataset", req.Dataset)
	v.Set("rows", strconv.Itoa(req.Rows))
	v.Set("start", strconv.Itoa(req.Start))
	for k, val := range DefaultRefine {
		v.Set(refinePrefix+k, val)
	}
	for k, val := range req.Refine {
		if val == "" {
			continue
		}
		v.Set(refinePrefix+strings.TrimPrefix(k, refinePrefix), val)
	}
	return v
}

func (c *Client) get(ctx context.Context, params url.Values) (*page, string, error) {
	finalURL := c.baseURL + "?" + params.Encode()
	key := finalURL
	if c.apiKey != "" {
		key = "apikey " + key
	}
	if p, ok := c.cache.Get(key); ok {
		c.http.Logger.Debug("Dataset page cache hit", "url", finalURL)
		return p, finalURL, nil
	}

	var header http.Header
	if c.apiKey != "" {
		header = http.Header{"Authorization": {"Apikey " + c.apiKey}}
	}
	body, contentType, err := c.http.Get(ctx, "dataset", finalURL, header)
	if err != nil {
		return nil, finalURL, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var resp searchResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, finalURL, collab.Fatal("dataset", fmt.Errorf("non-JSON response (content-type %q): %w", contentType, err))
	}

	p := &page{resp: &resp, contentType: contentType}
	c.cache.Add(key, p)
	return p, finalURL, nil
}

func (c *Client) result(req Request, params url.Values, p *page, finalURL string) *Result {
	filters := map[string]string{}
	for k := range params {
		if strings.HasPrefix(k, refinePrefix) {
			filters[k] = params.Get(k)
		}
	}

	records := make([]Record, 0, len(p.resp.Records))
	for _, r := range p.resp.Records {
		fields := r.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		records = append(records, Record{
			ID:        r.RecordID,
			Timestamp: r.RecordTimestamp,
			Fields:    fields,
			Geometry:  r.Geometry,
		})
	}

	res := &Result{
		Query: QueryInfo{
			Dataset: req.Dataset,
			Filters: filters,
			Rows:    req.Rows,
			Start:   req.Start,
		},
		NHits:   p.resp.NHits,
		Count:   len(records),
		Records: records,
		Facets:  p.resp.FacetGroups,
		Source: SourceInfo{
			Portal:            Portal,
			API:               APIPath,
			DatasetIdentifier: req.Dataset,
			License:           License,
		},
	}
	if req.Debug {
		auth := "anonymous"
		if c.apiKey != "" {
			auth = "apikey"
		}
		res.HTTP = &HTTPInfo{
			FinalURL:    finalURL,
			StatusCode:  http.StatusOK,
			ContentType: p.contentType,
			Auth:        auth,
		}
	}
	return res
}

// Fetch adapts Search to the collaborator contract. q.Target names the
// dataset, q.Params are refine filters with the special key "insee", and
// Limit/Offset map to rows/start.
func (c *Client) Fetch(ctx context.Context, q collab.Query) ([]collab.Record, error) {
	req := Request{Dataset: q.Target, Rows: q.Limit, Start: q.Offset, Refine: map[string]string{}}
	for k, v := range q.Params {
		if k == "insee" {
			req.Insee = v
			continue
		}
		req.Refine[k] = v
	}

	res, err := c.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]collab.Record, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, collab.Record{
			"id":        r.ID,
			"timestamp": r.Timestamp,
			"fields":    r.Fields,
			"geometry":  r.Geometry,
		})
	}
	return out, nil
}

// ErrNoValues is returned by NumericField when no record has a numeric
// value for the field.
var ErrNoValues = errors.New("no numeric values")

// NumericField collects the numeric values of field across records. String
// values that parse as numbers are accepted.
func NumericField(records []Record, field string) ([]float64, error) {
	var out []float64
	for _, r := range records {
		switch v := r.Fields[field].(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				out = append(out, f)
			}
		case float64:
			out = append(out, v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("field %q: %w", field, ErrNoValues)
	}
	return out, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Package feed reads news feeds (RSS 2.0, RSS 1.0 and Atom) into records of
// title, link and publication date.
package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/Alia5/studiogen/internal/collab"
)

// DefaultURL is the feed fetched when no URL is given.
const DefaultURL = "https://renewablesnow.com/feed/"

// Placeholders for fields an entry does not carry.
const (
	UnknownTitle = "unknown title"
	MissingLink  = "missing link"
	UnknownDate  = "unknown date"
)

type Item struct {
	Title     string
	Link      string
	Published string
}

// Record converts the item to the collaborator record shape.
func (i Item) Record() collab.Record {
	return collab.Record{"title": i.Title, "link": i.Link, "published": i.Published}
}

type document struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	// RSS 1.0 puts items next to the channel.
	Items   []rssItem   `xml:"item"`
	Entries []atomEntry `xml:"entry"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	DCDate  string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Links []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
}

// Parse decodes a feed document. Encodings other than UTF-8 are honoured
// when declared in the XML prolog.
func Parse(data []byte) ([]Item, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	var items []Item
	for _, it := range append(doc.Channel.Items, doc.Items...) {
		date := it.PubDate
		if strings.TrimSpace(date) == "" {
			date = it.DCDate
		}
		items = append(items, newItem(it.Title, it.Link, date))
	}
	for _, e := range doc.Entries {
		link := ""
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		if link == "" && len(e.Links) > 0 {
			link = e.Links[0].Href
		}
		date := e.Published
		if strings.TrimSpace(date) == "" {
			date = e.Updated
		}
		items = append(items, newItem(e.Title, link, date))
	}
	return items, nil
}

func newItem(title, link, published string) Item {
	return Item{
		Title:     orDefault(title, UnknownTitle),
		Link:      orDefault(link, MissingLink),
		Published: orDefault(published, UnknownDate),
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// Source fetches feeds over HTTP.
type Source struct {
	client *collab.Client
}

func New(client *collab.Client) *Source {
	return &Source{client: client}
}

var acceptHeader = http.Header{
	"Accept": {"application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"},
}

// Fetch reads the feed at q.Target (DefaultURL when empty) and returns at
// most q.Limit records when q.Limit > 0.
func (s *Source) Fetch(ctx context.Context, q collab.Query) ([]collab.Record, error) {
	url := q.Target
	if url == "" {
		url = DefaultURL
	}

	body, _, err := s.client.Get(ctx, "feed", url, acceptHeader)
	if err != nil {
		return nil, err
	}
	items, err := Parse(body)
	if err != nil {
		return nil, collab.Fatal("feed", err)
	}
	s.client.Logger.Debug("Parsed feed", "url", url, "items", len(items))

	if q.Offset > 0 {
		if q.Offset >= len(items) {
			items = nil
		} else {
			items = items[q.Offset:]
		}
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}

	records := make([]collab.Record, 0, len(items))
	for _, it := range items {
		records = append(records, it.Record())
	}
	return records, nil
}

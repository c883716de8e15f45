package feed

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"

	"shelflink/internal/catalog"
)

// Overview is the decoded weekly bestseller overview. Only the fields the
// pipeline consumes are mapped; the raw payload keeps everything else.
type Overview struct {
	Status  string `json:"status"`
	Results struct {
		PublishedDate string `json:"published_date"`
		Lists         []List `json:"lists"`
	} `json:"results"`
}

// List is one bestseller list within an overview.
type List struct {
	ListName    string `json:"list_name"`
	DisplayName string `json:"display_name"`
	Books       []Book `json:"books"`
}

// Book is one ranked title within a list.
type Book struct {
	PrimaryISBN13 string `json:"primary_isbn13"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Rank          int    `json:"rank"`
}

// ParseSnapshot decodes a raw overview payload.
func ParseSnapshot(payload []byte) (*Overview, error) {
	var overview Overview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, fmt.Errorf("decode overview snapshot: %w", err)
	}
	return &overview, nil
}

// ReadSnapshot loads and decodes a previously saved snapshot file.
func ReadSnapshot(path string) (*Overview, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return ParseSnapshot(payload)
}

// Records flattens the overview into source records, one per distinct
// ISBN-13 in list order. A title appearing on several lists keeps its
// first-seen list name. Books without an ISBN-13 are dropped; the pipeline
// has no key to link them on.
func (o *Overview) Records() []catalog.SourceRecord {
	var records []catalog.SourceRecord
	seen := make(map[string]struct{})
	for _, list := range o.Results.Lists {
		for _, book := range list.Books {
			if book.PrimaryISBN13 == "" {
				continue
			}
			if _, dup := seen[book.PrimaryISBN13]; dup {
				continue
			}
			seen[book.PrimaryISBN13] = struct{}{}
			records = append(records, catalog.SourceRecord{
				ISBN13:   book.PrimaryISBN13,
				Title:    book.Title,
				Author:   book.Author,
				ListName: list.ListName,
				Week:     o.Results.PublishedDate,
			})
		}
	}
	return records
}

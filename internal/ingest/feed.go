// Package ingest populates the record store from the remote prize feed.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/calder-labs/prizedex/internal/domain"
)

// DefaultFeedURL is the canonical source of the prize dataset.
const DefaultFeedURL = "https://api.nobelprize.org/v1/prize.json"

// feedDocument mirrors the feed payload. The feed serializes year as a
// string; it is parsed to an integer before storage.
type feedDocument struct {
	Prizes []feedPrize `json:"prizes"`
}

type feedPrize struct {
	Year      string        `json:"year"`
	Category  string        `json:"category"`
	Laureates []feedLaureate `json:"laureates"`
}

type feedLaureate struct {
	ID         string `json:"id"`
	Firstname  string `json:"firstname"`
	Surname    string `json:"surname"`
	Motivation string `json:"motivation"`
	Share      string `json:"share"`
}

// FeedClient fetches the source dataset over HTTP.
type FeedClient struct {
	client *resty.Client
	url    string
}

// NewFeedClient creates a feed client for the given URL.
func NewFeedClient(url string, timeout time.Duration) *FeedClient {
	if url == "" {
		url = DefaultFeedURL
	}
	client := resty.New().SetTimeout(timeout)
	return &FeedClient{client: client, url: url}
}

// Fetch performs one GET against the feed and converts the payload.
// Any non-2xx response or parse failure is an ingestion error.
func (c *FeedClient) Fetch(ctx context.Context) ([]domain.Prize, error) {
	res, err := c.client.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrIngestion, c.url, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: fetch %s: status %d", domain.ErrIngestion, c.url, res.StatusCode())
	}

	var doc feedDocument
	if err := json.Unmarshal(res.Body(), &doc); err != nil {
		return nil, fmt.Errorf("%w: parse feed: %w", domain.ErrIngestion, err)
	}

	return convertFeed(doc)
}

func convertFeed(doc feedDocument) ([]domain.Prize, error) {
	prizes := make([]domain.Prize, 0, len(doc.Prizes))
	for i, fp := range doc.Prizes {
		year, err := strconv.Atoi(fp.Year)
		if err != nil {
			return nil, fmt.Errorf("%w: prize %d: bad year %q", domain.ErrIngestion, i, fp.Year)
		}

		laureates := make([]domain.Laureate, 0, len(fp.Laureates))
		for _, fl := range fp.Laureates {
			laureates = append(laureates, domain.Laureate{
				ID:         fl.ID,
				Firstname:  fl.Firstname,
				Surname:    fl.Surname,
				Motivation: fl.Motivation,
				Share:      fl.Share,
			})
		}

		prizes = append(prizes, domain.Prize{
			Year:      year,
			Category:  fp.Category,
			Laureates: laureates,
		})
	}
	return prizes, nil
}

// Package osrsnews reads the Old School RuneScape news RSS feed.
package osrsnews

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultFeedURL is the official OSRS news feed.
const DefaultFeedURL = "https://secure.runescape.com/m=news/latest_news.rss?oldschool=true"

// Article is a single news post.
type Article struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	Categories  []string   `json:"categories"`
	Image       string     `json:"image,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
}

// Feed is the parsed news feed.
type Feed struct {
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Articles []Article `json:"articles"`
}

type Client struct {
	feedURL string
	parser  *gofeed.Parser
}

func NewClient(feedURL, userAgent string, timeout time.Duration) *Client {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}

	return &Client{feedURL: feedURL, parser: parser}
}

// Fetch downloads and parses the feed.
func (c *Client) Fetch(ctx context.Context) (*Feed, error) {
	raw, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}
	return convert(raw), nil
}

func convert(raw *gofeed.Feed) *Feed {
	feed := &Feed{
		Title:    raw.Title,
		Link:     raw.Link,
		Articles: make([]Article, 0, len(raw.Items)),
	}
	for _, item := range raw.Items {
		a := Article{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Categories:  item.Categories,
			Published:   item.PublishedParsed,
		}
		if item.Image != nil {
			a.Image = item.Image.URL
		} else {
			for _, enc := range item.Enclosures {
				if enc != nil && enc.URL != "" {
					a.Image = enc.URL
					break
				}
			}
		}
		feed.Articles = append(feed.Articles, a)
	}
	return feed
}

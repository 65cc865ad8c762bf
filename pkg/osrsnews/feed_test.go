package osrsnews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Old School RuneScape - News Feed</title>
  <link>https://secure.runescape.com/m=news/?oldschool=true</link>
  <item>
    <title>Varlamore Part Two</title>
    <link>https://secure.runescape.com/m=news/varlamore-part-two?oldschool=1</link>
    <description>The wait is over.</description>
    <category>Game Updates</category>
    <enclosure url="https://cdn.runescape.com/assets/img/external/oldschool/2025/newsposts/varlamore.png" type="image/png" length="0"/>
    <pubDate>Wed, 23 Jul 2025 11:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Poll 82</title>
    <link>https://secure.runescape.com/m=news/poll-82?oldschool=1</link>
    <description>Have your say.</description>
    <category>Community</category>
    <pubDate>Thu, 17 Jul 2025 12:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

// go test -v --run TestFetch
func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "runetick-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "runetick-test", 5*time.Second)
	feed, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if feed.Title != "Old School RuneScape - News Feed" {
		t.Errorf("unexpected title %q", feed.Title)
	}
	if len(feed.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(feed.Articles))
	}

	first := feed.Articles[0]
	if first.Title != "Varlamore Part Two" || first.Image == "" || first.Published == nil {
		t.Errorf("unexpected first article: %+v", first)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "Game Updates" {
		t.Errorf("unexpected categories: %v", first.Categories)
	}
	if feed.Articles[1].Image != "" {
		t.Errorf("expected no image on second article, got %q", feed.Articles[1].Image)
	}
}

// go test -v --run TestFetchUpstreamError
func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "runetick-test", 5*time.Second)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}

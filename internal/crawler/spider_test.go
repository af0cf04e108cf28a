package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSpiderCollectSubpages(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/a">A</a>
			<a href="/a?page=2">A again</a>
			<a href="/b#frag">B</a>
			<a href="https://elsewhere.example.org/c">external</a>
			<a href="/">self</a>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	spider := NewSpider(srv.Client())
	candidates, err := spider.CollectSubpages(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("CollectSubpages() = %v, want nil", err)
	}

	// /a and /a?page=2 normalize to one candidate, /b#frag loses its
	// fragment, the external link and the seed itself are excluded.
	want := []string{srv.URL + "/a", srv.URL + "/b"}
	if len(candidates) != len(want) {
		t.Fatalf("candidates = %v, want %v", candidates, want)
	}
	for i, c := range candidates {
		if c != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, c, want[i])
		}
	}
}

func TestSpiderCollectSubpagesCap(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := range 20 {
			fmt.Fprintf(&sb, `<a href="/page%d">p</a>`, i)
		}
		sb.WriteString("</body></html>")
		fmt.Fprint(w, sb.String())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	spider := NewSpider(srv.Client(), WithMaxSubpages(5))
	candidates, err := spider.CollectSubpages(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 5 {
		t.Errorf("len(candidates) = %d, want 5", len(candidates))
	}
}

func TestSpiderCrawl(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/good">ok</a>
			<a href="/broken">broken</a>
		</body></html>`)
	})
	mux.HandleFunc("/good", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Good</title></head><body>fine</body></html>`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		// Hijack and drop the connection so the fetch errors.
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		conn.Close()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	spider := NewSpider(srv.Client())
	result, err := spider.Crawl(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Crawl() = %v, want nil", err)
	}

	if len(result.SubpageURLs) != 2 {
		t.Errorf("len(SubpageURLs) = %d, want 2 (failed candidates still count)", len(result.SubpageURLs))
	}
	if len(result.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1 (broken subpage skipped)", len(result.Pages))
	}
	if result.Pages[0].Page.Title != "Good" {
		t.Errorf("Title = %q, want %q", result.Pages[0].Page.Title, "Good")
	}
}

func TestSpiderCrawlSeedFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	spider := NewSpider(srv.Client())
	if _, err := spider.Crawl(context.Background(), srv.URL+"/"); err == nil {
		t.Error("Crawl() = nil error, want error when seed fetch fails")
	}
}

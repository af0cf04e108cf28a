package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeywordStoreCategories(t *testing.T) {
	t.Parallel()

	t.Run("caches within ttl", func(t *testing.T) {
		t.Parallel()

		calls := 0
		source := func(_ context.Context) (map[string][]string, error) {
			calls++
			return map[string][]string{"fraud": {"verify"}}, nil
		}
		s := NewKeywordStore(source, time.Hour, discardLogger())

		ctx := context.Background()
		for range 3 {
			categories, err := s.Categories(ctx)
			if err != nil {
				t.Fatalf("Categories() = %v, want nil", err)
			}
			if len(categories["fraud"]) != 1 {
				t.Errorf("categories = %v, want fraud entry", categories)
			}
		}
		if calls != 1 {
			t.Errorf("source called %d times, want 1", calls)
		}
	})

	t.Run("refreshes after ttl", func(t *testing.T) {
		t.Parallel()

		calls := 0
		source := func(_ context.Context) (map[string][]string, error) {
			calls++
			return map[string][]string{}, nil
		}
		s := NewKeywordStore(source, time.Nanosecond, discardLogger())

		ctx := context.Background()
		if _, err := s.Categories(ctx); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
		if _, err := s.Categories(ctx); err != nil {
			t.Fatal(err)
		}
		if calls != 2 {
			t.Errorf("source called %d times, want 2", calls)
		}
	})

	t.Run("serves stale snapshot when refresh fails", func(t *testing.T) {
		t.Parallel()

		calls := 0
		source := func(_ context.Context) (map[string][]string, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("database gone")
			}
			return map[string][]string{"gambling": {"casino"}}, nil
		}
		s := NewKeywordStore(source, time.Nanosecond, discardLogger())

		ctx := context.Background()
		if _, err := s.Categories(ctx); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
		categories, err := s.Categories(ctx)
		if err != nil {
			t.Fatalf("Categories() after failed refresh = %v, want stale data", err)
		}
		if len(categories["gambling"]) != 1 {
			t.Errorf("categories = %v, want stale gambling entry", categories)
		}
	})

	t.Run("fails when no snapshot exists", func(t *testing.T) {
		t.Parallel()

		source := func(_ context.Context) (map[string][]string, error) {
			return nil, errors.New("database gone")
		}
		s := NewKeywordStore(source, time.Hour, discardLogger())

		if _, err := s.Categories(context.Background()); err == nil {
			t.Error("Categories() = nil error, want error on cold failure")
		}
	})
}

func TestFileKeywordSource(t *testing.T) {
	t.Parallel()

	t.Run("reads json dictionary", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "keyword.json")
		data := []byte(`{"涉赌": ["赌场", "百家乐"], "涉诈": ["刷单"]}`)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}

		categories, err := FileKeywordSource(path)(context.Background())
		if err != nil {
			t.Fatalf("FileKeywordSource() = %v, want nil", err)
		}
		if len(categories) != 2 {
			t.Errorf("got %d categories, want 2", len(categories))
		}
		if len(categories["涉赌"]) != 2 {
			t.Errorf("涉赌 = %v, want 2 keywords", categories["涉赌"])
		}
	})

	t.Run("missing file yields empty dictionary", func(t *testing.T) {
		t.Parallel()

		categories, err := FileKeywordSource(filepath.Join(t.TempDir(), "none.json"))(context.Background())
		if err != nil {
			t.Fatalf("FileKeywordSource() = %v, want nil", err)
		}
		if len(categories) != 0 {
			t.Errorf("got %d categories, want 0", len(categories))
		}
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "keyword.json")
		if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := FileKeywordSource(path)(context.Background()); err == nil {
			t.Error("FileKeywordSource() = nil error, want parse error")
		}
	})
}

func TestFallbackKeywordSource(t *testing.T) {
	t.Parallel()

	primary := func(_ context.Context) (map[string][]string, error) {
		return nil, errors.New("unreachable")
	}
	secondary := StaticKeywordSource(map[string][]string{"porn": {"adult"}})

	categories, err := FallbackKeywordSource(primary, secondary)(context.Background())
	if err != nil {
		t.Fatalf("FallbackKeywordSource() = %v, want nil", err)
	}
	if len(categories["porn"]) != 1 {
		t.Errorf("categories = %v, want fallback data", categories)
	}
}

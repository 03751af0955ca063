package storage

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wallapop-poller/config"
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

func publisherFor(url string) *BulkPublisher {
	cfg := &config.Config{
		ElasticURL:        url,
		ElasticIndex:      "wallapop-motos",
		PublishTimeoutSec: 5,
	}
	p := NewBulkPublisher(cfg, utils.NewLogger())
	p.retry.MaxAttempts = 1
	p.retry.BaseDelay = 0
	return p
}

func TestPublishBulkFormat(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"errors":false}`))
	}))
	defer srv.Close()

	p := publisherFor(srv.URL)
	err := p.Publish([]models.Listing{
		{"id": "10", "title": "Honda"},
		{"id": "20", "title": "Yamaha"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotPath != "/_bulk" {
		t.Errorf("path: got %q, want /_bulk", gotPath)
	}
	if gotContentType != "application/x-ndjson" {
		t.Errorf("content type: got %q", gotContentType)
	}

	body := string(gotBody)
	if !strings.HasSuffix(body, "\n") {
		t.Error("bulk body must end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("bulk lines: got %d, want 4 (action+doc per listing)", len(lines))
	}

	var action struct {
		Index struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		} `json:"index"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &action); err != nil {
		t.Fatalf("unmarshal action line: %v", err)
	}
	if action.Index.Index != "wallapop-motos" || action.Index.ID != "10" {
		t.Errorf("action line: got %+v", action.Index)
	}

	var doc models.Listing
	if err := json.Unmarshal([]byte(lines[1]), &doc); err != nil {
		t.Fatalf("unmarshal document line: %v", err)
	}
	if doc.Title() != "Honda" {
		t.Errorf("document line: got %v", doc)
	}
}

func TestPublishReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := publisherFor(srv.URL)
	if err := p.Publish([]models.Listing{{"id": "1"}}); err == nil {
		t.Error("a failed bulk request must surface as an error")
	}
}

func TestPublishEmptyIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := publisherFor(srv.URL)
	if err := p.Publish(nil); err != nil {
		t.Fatalf("publish nil: %v", err)
	}
	if called {
		t.Error("no request should be made for an empty batch")
	}
}

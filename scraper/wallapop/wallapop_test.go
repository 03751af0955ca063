package wallapop

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"wallapop-poller/config"
	"wallapop-poller/models"
	"wallapop-poller/utils"
)

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		WallapopURL:    apiURL,
		PageSize:       3,
		PageDelayMs:    0,
		HTTPTimeoutSec: 5,
	}
}

// pageBody wraps items in the nested response envelope the API uses.
func pageBody(t *testing.T, items []models.Listing) []byte {
	t.Helper()
	body := map[string]any{
		"data": map[string]any{
			"section": map[string]any{
				"payload": map[string]any{
					"items": items,
				},
			},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal page body: %v", err)
	}
	return data
}

func makeItems(start, n int) []models.Listing {
	items := make([]models.Listing, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.Listing{"id": fmt.Sprintf("item-%d", start+i)})
	}
	return items
}

func TestFetchAllStopsOnShortPage(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if r.URL.Query().Get("time_filter") != "today" {
			t.Errorf("missing time_filter=today, got %q", r.URL.Query().Get("time_filter"))
		}
		switch offset {
		case 0:
			w.Write(pageBody(t, makeItems(0, 3)))
		default:
			w.Write(pageBody(t, makeItems(3, 1))) // short page
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewLogger())
	res := c.FetchAll(Query{Keywords: "moto", CategoryID: "14000"})

	if res.Reason != models.ReasonLastPage {
		t.Errorf("reason: got %q, want %q", res.Reason, models.ReasonLastPage)
	}
	if len(res.Items) != 4 {
		t.Errorf("items: got %d, want 4", len(res.Items))
	}
	if requests != 2 {
		t.Errorf("requests: got %d, want 2", requests)
	}
	if res.Items[0].ID() != "item-0" || res.Items[3].ID() != "item-3" {
		t.Errorf("items out of order: %v", res.Items)
	}
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset == 0 {
			w.Write(pageBody(t, makeItems(0, 3)))
			return
		}
		w.Write(pageBody(t, nil))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewLogger())
	res := c.FetchAll(Query{Keywords: "moto", CategoryID: "14000"})

	if res.Reason != models.ReasonExhausted {
		t.Errorf("reason: got %q, want %q", res.Reason, models.ReasonExhausted)
	}
	if len(res.Items) != 3 {
		t.Errorf("items: got %d, want 3", len(res.Items))
	}
}

func TestFetchAllKeepsPartialOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset == 0 {
			w.Write(pageBody(t, makeItems(0, 3)))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewLogger())
	res := c.FetchAll(Query{Keywords: "moto", CategoryID: "14000"})

	if res.Reason != models.ReasonFetchError {
		t.Errorf("reason: got %q, want %q", res.Reason, models.ReasonFetchError)
	}
	if len(res.Items) != 3 {
		t.Errorf("partial items: got %d, want 3", len(res.Items))
	}
}

func TestFetchAllKeepsPartialOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset == 0 {
			w.Write(pageBody(t, makeItems(0, 3)))
			return
		}
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewLogger())
	res := c.FetchAll(Query{Keywords: "moto", CategoryID: "14000"})

	if res.Reason != models.ReasonFetchError {
		t.Errorf("reason: got %q, want %q", res.Reason, models.ReasonFetchError)
	}
	if len(res.Items) != 3 {
		t.Errorf("partial items: got %d, want 3", len(res.Items))
	}
}

func TestFetchPageHeaders(t *testing.T) {
	var gotHost, gotDeviceOS string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.Host
		gotDeviceOS = r.Header.Get("X-DeviceOS")
		w.Write(pageBody(t, nil))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewLogger())
	c.FetchAll(Query{Keywords: "moto", CategoryID: "14000"})

	if gotHost != "api.wallapop.com" {
		t.Errorf("Host header: got %q, want api.wallapop.com", gotHost)
	}
	if gotDeviceOS != "0" {
		t.Errorf("X-DeviceOS header: got %q, want 0", gotDeviceOS)
	}
}

func TestFetchAllPreservesUnknownFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"section":{"payload":{"items":[
			{"id":"x1","title":"Honda","some_future_field":{"nested":true}}
		]}}}}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewLogger())
	res := c.FetchAll(Query{Keywords: "moto", CategoryID: "14000"})

	if len(res.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(res.Items))
	}
	if _, ok := res.Items[0]["some_future_field"]; !ok {
		t.Error("unknown marketplace field was dropped during decode")
	}
}

package journal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gcsbridge/internal/adapters/adobeio"
)

func newClients(srvURL string, limit int) *Client {
	api := adobeio.NewClient(adobeio.Options{
		ClientID:   "cid",
		OrgID:      "org",
		MaxRetries: 1,
		RetryBase:  time.Millisecond,
	})
	return NewClient(api, Options{BaseURL: srvURL, Endpoint: "events-fast/j1", Limit: limit})
}

func TestFetchFirstPage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Header().Set("Link", `<`+r.Host+`/next>; rel="next"`)
		_, _ = io.WriteString(w, `{"events":[
			{"position":"p1","event":{"body":{"eventCode":"TRANSLATE","taskId":"t1"}}},
			{"position":"p2","event":{"body":{"eventCode":"RE_TRANSLATE","taskId":"t2"}}}
		]}`)
	}))
	defer srv.Close()

	c := newClients(srv.URL, 25)
	page, err := c.Fetch(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/events-fast/j1?limit=25" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(page.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(page.Events))
	}
	if page.Events[0].ID != "p1" || page.Events[1].ID != "p2" {
		t.Fatalf("ids = %q, %q", page.Events[0].ID, page.Events[1].ID)
	}
	if page.Next == "" {
		t.Fatal("expected next link")
	}
}

func TestFetchUsesCursorURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		_, _ = io.WriteString(w, `{"events":[]}`)
	}))
	defer srv.Close()

	c := newClients(srv.URL, 10)
	page, err := c.Fetch(context.Background(), "tok", srv.URL+"/events-fast/j1?since=p2")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/events-fast/j1?since=p2" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(page.Events) != 0 || page.Next != "" {
		t.Fatalf("page = %+v, want empty", page)
	}
}

func TestFetchRepairsMalformedCursor(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		_, _ = io.WriteString(w, `{"events":[]}`)
	}))
	defer srv.Close()

	c := newClients(srv.URL, 10)
	if _, err := c.Fetch(context.Background(), "tok", "oops</events-fast/j1?since=p9"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/events-fast/j1?since=p9" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestFetchNoContentKeepsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClients(srv.URL, 10)
	cursor := srv.URL + "/events-fast/j1?since=p5"
	page, err := c.Fetch(context.Background(), "tok", cursor)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(page.Events) != 0 {
		t.Fatalf("events = %d, want 0", len(page.Events))
	}
	if page.Next != cursor {
		t.Fatalf("Next = %q, want cursor unchanged", page.Next)
	}
}

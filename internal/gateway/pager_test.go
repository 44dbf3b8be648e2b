package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves /items as len(pageSizes) pages of sequential integers.
// Every page but the last carries a rel="next" Link header.
type pagedServer struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []url.Values
	pageSizes []int
	failPage  int // 1-based page answering 500, 0 disables
}

func newPagedServer(t *testing.T, pageSizes []int, failPage int) *pagedServer {
	s := &pagedServer{pageSizes: pageSizes, failPage: failPage}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *pagedServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Query())
	s.mu.Unlock()

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}
	if page == s.failPage {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
		return
	}

	offset := 0
	for _, size := range s.pageSizes[:page-1] {
		offset += size
	}
	items := make([]int, 0, s.pageSizes[page-1])
	for i := 0; i < s.pageSizes[page-1]; i++ {
		items = append(items, offset+i)
	}
	if page < len(s.pageSizes) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="next", <%s/items?page=%d>; rel="last"`,
			s.URL, page+1, s.URL, len(s.pageSizes)))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (s *pagedServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestPager(server *httptest.Server) *Pager {
	return NewPager(github.NewClient(server.Client()), 0, log.New(io.Discard, "", 0))
}

func decodeInts(t *testing.T, items []json.RawMessage) []int {
	out := make([]int, 0, len(items))
	for _, raw := range items {
		var v int
		require.NoError(t, json.Unmarshal(raw, &v))
		out = append(out, v)
	}
	return out
}

func TestPager_FetchAll(t *testing.T) {
	testCases := []struct {
		name             string
		pageSizes        []int
		expectedItems    int
		expectedRequests int
	}{
		{name: "multiple pages are concatenated in order", pageSizes: []int{3, 2, 4}, expectedItems: 9, expectedRequests: 3},
		{name: "single page issues no second request", pageSizes: []int{5}, expectedItems: 5, expectedRequests: 1},
		{name: "empty first page", pageSizes: []int{0}, expectedItems: 0, expectedRequests: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newPagedServer(t, tc.pageSizes, 0)
			pager := newTestPager(server.Server)

			params := url.Values{"per_page": {"100"}, "since": {"2024-01-01T00:00:00Z"}}
			items, err := pager.FetchAll(context.Background(), server.URL+"/items", params)
			require.NoError(t, err)

			got := decodeInts(t, items)
			require.Len(t, got, tc.expectedItems)
			for i, v := range got {
				assert.Equal(t, i, v, "items must keep page order")
			}
			assert.Equal(t, tc.expectedRequests, server.requestCount())
		})
	}
}

func TestPager_FetchAll_ParamsOnlyOnFirstRequest(t *testing.T) {
	server := newPagedServer(t, []int{1, 1}, 0)
	pager := newTestPager(server.Server)

	_, err := pager.FetchAll(context.Background(), server.URL+"/items", url.Values{"per_page": {"100"}})
	require.NoError(t, err)

	require.Len(t, server.requests, 2)
	assert.Equal(t, "100", server.requests[0].Get("per_page"))
	assert.Empty(t, server.requests[1].Get("per_page"))
	assert.Equal(t, "2", server.requests[1].Get("page"))
}

func TestPager_FetchAll_HTTPError(t *testing.T) {
	testCases := []struct {
		name             string
		failPage         int
		expectedRequests int
	}{
		{name: "first page fails", failPage: 1, expectedRequests: 1},
		{name: "middle page fails", failPage: 2, expectedRequests: 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newPagedServer(t, []int{2, 2, 2}, tc.failPage)
			pager := newTestPager(server.Server)

			items, err := pager.FetchAll(context.Background(), server.URL+"/items", nil)
			require.Error(t, err)
			assert.Nil(t, items, "no partial data on failure")

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
			assert.True(t, strings.HasPrefix(httpErr.URL, server.URL+"/items"))
			assert.True(t, IsStatus(err, http.StatusInternalServerError))
			assert.Equal(t, tc.expectedRequests, server.requestCount())
		})
	}
}

func TestPager_FetchAll_NotAnArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer server.Close()

	_, err := newTestPager(server).FetchAll(context.Background(), server.URL, nil)
	assert.ErrorContains(t, err, "failed to decode page")
}

func TestPager_FetchAll_Accepted(t *testing.T) {
	testCases := []struct {
		name          string
		firstBody     string
		expectedItems []int
	}{
		{name: "items on an accepted page", firstBody: `[1, 2]`, expectedItems: []int{1, 2, 3}},
		{name: "empty accepted page", firstBody: ``, expectedItems: []int{3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var server *httptest.Server
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("page") == "2" {
					fmt.Fprint(w, `[3]`)
					return
				}
				w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=2>; rel="next"`, server.URL))
				w.WriteHeader(http.StatusAccepted)
				fmt.Fprint(w, tc.firstBody)
			}))
			defer server.Close()

			items, err := newTestPager(server).FetchAll(context.Background(), server.URL+"/items", nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedItems, decodeInts(t, items))
		})
	}
}

func TestPager_FetchAll_Cancelled(t *testing.T) {
	server := newPagedServer(t, []int{1, 1}, 0)
	pager := newTestPager(server.Server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := pager.FetchAll(ctx, server.URL+"/items", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, items)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
	assert.ErrorIs(t, sleepContext(ctx, 0), context.Canceled)
}

func TestWithParams(t *testing.T) {
	got, err := withParams("https://api.github.com/repos/a/b/commits?per_page=10&x=1", url.Values{"per_page": {"100"}})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "100", u.Query().Get("per_page"))
	assert.Equal(t, "1", u.Query().Get("x"))

	_, err = withParams("://bad", nil)
	assert.Error(t, err)
}

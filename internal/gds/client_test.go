package gds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBind {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBind)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestHistoryEnvelope_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantItems int
		wantSeen  int64
		wantErrs  []string
	}{
		{
			name:      "counter and string errors",
			payload:   `{"history":[{"id":1},{"id":2}],"validation":25,"errors":["lost sync"]}`,
			wantItems: 2,
			wantSeen:  25,
			wantErrs:  []string{"lost sync"},
		},
		{
			name:      "no counter",
			payload:   `{"history":[],"validation":-1,"errors":[]}`,
			wantItems: 0,
			wantSeen:  -1,
		},
		{
			name:      "missing validation field",
			payload:   `{"history":[{"id":3}]}`,
			wantItems: 1,
			wantSeen:  -1,
		},
		{
			name:      "structured error objects",
			payload:   `{"history":[],"validation":0,"errors":[{"type":"DecodeError","message":"bad frame"}]}`,
			wantItems: 0,
			wantSeen:  0,
			wantErrs:  []string{`{"type":"DecodeError","message":"bad frame"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h History[EventRecord]
			if err := json.Unmarshal([]byte(tt.payload), &h); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if len(h.Items) != tt.wantItems {
				t.Fatalf("items = %d, want %d", len(h.Items), tt.wantItems)
			}
			if h.SeenCount != tt.wantSeen {
				t.Fatalf("SeenCount = %d, want %d", h.SeenCount, tt.wantSeen)
			}
			if h.HasSeenCount() != (tt.wantSeen >= 0) {
				t.Fatalf("HasSeenCount() = %v with SeenCount %d", h.HasSeenCount(), h.SeenCount)
			}
			if len(h.Errors) != len(tt.wantErrs) {
				t.Fatalf("errors = %#v, want %#v", h.Errors, tt.wantErrs)
			}
			for i, want := range tt.wantErrs {
				if h.Errors[i] != want {
					t.Fatalf("errors[%d] = %q, want %q", i, h.Errors[i], want)
				}
			}
		})
	}
}

func TestClient_FetchesEndpointsWithSession(t *testing.T) {
	t.Parallel()

	var gotChannelsQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/channels":
			gotChannelsQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"history":[{"id":7,"name":"thermal.temp1","time":{"seconds":100,"microseconds":50},"val":21.5,"display_text":"21.5"}],"validation":1,"errors":[]}`))
		case "/events":
			_, _ = w.Write([]byte(`{"history":[{"id":3,"name":"FSW.Started","time":{"seconds":90},"severity":"EventSeverity.ACTIVITY_HI","display_text":"started"}],"validation":-1,"errors":[]}`))
		case "/logdata":
			_, _ = w.Write([]byte(`{"logs":["gds.log","channel.log"]}`))
		case "/logdata/gds.log":
			_, _ = w.Write([]byte(`{"gds.log":"line one\nline two\n"}`))
		case "/upload/files":
			_, _ = w.Write([]byte(`{"files":[{"source":"a.bin","destination":"/seq/a.bin","state":"TRANSMITTING","current":3,"total":9,"percent":33}],"running":true}`))
		case "/stats":
			_, _ = w.Write([]byte(`{"History Sizes":{"total":12,"events":5,"channels":7}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.Session() == "" {
		t.Fatal("Session() = empty, want generated key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	channels, err := c.FetchChannels(ctx)
	if err != nil {
		t.Fatalf("FetchChannels returned error: %v", err)
	}
	if len(channels.Items) != 1 || channels.Items[0].ID != 7 {
		t.Fatalf("FetchChannels items = %#v, want 1 item id=7", channels.Items)
	}
	if got := gotChannelsQuery.Get("session"); got != c.Session() {
		t.Fatalf("session query = %q, want %q", got, c.Session())
	}
	if gotChannelsQuery.Get("limit") == "" {
		t.Fatal("limit query missing")
	}

	events, err := c.FetchEvents(ctx)
	if err != nil {
		t.Fatalf("FetchEvents returned error: %v", err)
	}
	if len(events.Items) != 1 || events.Items[0].SeverityClass() != "ACTIVITY_HI" {
		t.Fatalf("FetchEvents items = %#v, want ACTIVITY_HI event", events.Items)
	}
	if events.HasSeenCount() {
		t.Fatalf("events.HasSeenCount() = true with validation -1")
	}

	logs, err := c.FetchLogList(ctx)
	if err != nil {
		t.Fatalf("FetchLogList returned error: %v", err)
	}
	if len(logs.Logs) != 2 || logs.Logs[0] != "gds.log" {
		t.Fatalf("FetchLogList = %#v, want 2 log names", logs)
	}

	body, err := c.FetchLogFile(ctx, "gds.log")
	if err != nil {
		t.Fatalf("FetchLogFile returned error: %v", err)
	}
	if !strings.Contains(body, "line one") {
		t.Fatalf("FetchLogFile body = %q, want log contents", body)
	}

	uplink, err := c.FetchUplink(ctx)
	if err != nil {
		t.Fatalf("FetchUplink returned error: %v", err)
	}
	if !uplink.Running || len(uplink.Files) != 1 || uplink.Files[0].Percent != 33 {
		t.Fatalf("FetchUplink = %#v, want running set with 1 file", uplink)
	}

	stats, err := c.FetchStats(ctx)
	if err != nil {
		t.Fatalf("FetchStats returned error: %v", err)
	}
	if stats["History Sizes"]["events"] != 5 {
		t.Fatalf("FetchStats = %#v, want events size 5", stats)
	}

	if gotUserAgent == "" || !strings.HasPrefix(gotUserAgent, "kestrel/") {
		t.Fatalf("User-Agent = %q, want kestrel/*", gotUserAgent)
	}
}

func TestClient_FetchLogFileRequiresName(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.FetchLogFile(context.Background(), "  "); err == nil {
		t.Fatal("FetchLogFile returned nil error, want error")
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/events":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchChannels(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchChannels error = %v, want decode response error", err)
	}

	_, err = c.FetchEvents(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchEvents error = %v, want status 500 error", err)
	}
}

func TestTimestamp_OrderingAndConversion(t *testing.T) {
	a := Timestamp{Seconds: 100, Microseconds: 10}
	b := Timestamp{Seconds: 100, Microseconds: 20}
	c := Timestamp{Seconds: 101}

	if !a.Before(b) || !b.Before(c) || b.Before(a) {
		t.Fatalf("timestamp ordering broken: a=%v b=%v c=%v", a, b, c)
	}
	if got := a.Time().UnixMicro(); got != 100_000_010 {
		t.Fatalf("Time().UnixMicro() = %d, want 100000010", got)
	}
}

package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeInflux emulates the query and write endpoints of the metrics
// database so Publish can be exercised end to end.
type fakeInflux struct {
	queryCSV   string
	writeCalls int
	lastWrite  string
}

func (f *fakeInflux) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/query", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, f.queryCSV)
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		f.writeCalls++
		b, _ := io.ReadAll(r.Body)
		f.lastWrite = string(b)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestInflux(t *testing.T, api *fakeInflux) *Influx {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	i := NewInflux(server.URL, "test-token", "test-org", "fuel", 5*time.Second)
	t.Cleanup(i.Close)
	return i
}

func TestParseLastTime(t *testing.T) {
	csvWithRow := "#datatype,string,long,dateTime:RFC3339,double\r\n" +
		"#group,false,false,false,false\r\n" +
		"#default,_result,,,\r\n" +
		",result,table,_time,_value\r\n" +
		",_result,0,2025-08-27T23:00:00Z,175.77\r\n"

	got, err := parseLastTime(csvWithRow)
	if err != nil {
		t.Fatalf("parseLastTime: %v", err)
	}
	want := time.Date(2025, 8, 27, 23, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("last time: got %v, want %v", got, want)
	}
}

func TestParseLastTime_EmptyResponse(t *testing.T) {
	got, err := parseLastTime("\r\n")
	if err != nil {
		t.Fatalf("parseLastTime: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time for empty response, got %v", got)
	}
}

func TestParseLastTime_NoTimeColumn(t *testing.T) {
	got, err := parseLastTime(",result,table,_value\r\n,_result,0,1.5\r\n")
	if err != nil {
		t.Fatalf("parseLastTime: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time without a _time column, got %v", got)
	}
}

func TestInflux_PublishWritesOnePointPerFuelType(t *testing.T) {
	api := &fakeInflux{queryCSV: "\r\n"}
	i := newTestInflux(t, api)

	r := testReport()
	r.Aggregates["P95"] = r.Aggregates["E10"]
	if err := i.Publish(context.Background(), r); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if api.writeCalls != 1 {
		t.Fatalf("write requests: got %d, want 1", api.writeCalls)
	}
	lines := strings.Split(strings.TrimSpace(api.lastWrite), "\n")
	if len(lines) != 2 {
		t.Fatalf("points written: got %d, want 2\n%s", len(lines), api.lastWrite)
	}
	if !strings.HasPrefix(lines[0], Measurement+",type=E10 ") {
		t.Errorf("unexpected first point: %q", lines[0])
	}
	for _, field := range []string{"mean=", "min=", "max=", "mode="} {
		if !strings.Contains(lines[0], field) {
			t.Errorf("point missing field %s: %q", field, lines[0])
		}
	}
	ts := fmt.Sprint(r.Date.Unix())
	if !strings.HasSuffix(lines[0], " "+ts) {
		t.Errorf("point not stamped with the report time: %q", lines[0])
	}
}

func TestInflux_PublishSkipsExistingDay(t *testing.T) {
	r := testReport()
	api := &fakeInflux{
		queryCSV: ",result,table,_time,_value\r\n" +
			fmt.Sprintf(",_result,0,%s,175.77\r\n", r.Date.UTC().Format(time.RFC3339)),
	}
	i := newTestInflux(t, api)

	if err := i.Publish(context.Background(), r); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if api.writeCalls != 0 {
		t.Errorf("write requests: got %d, want 0", api.writeCalls)
	}
}

func TestInflux_PublishNothingWhenNoAggregates(t *testing.T) {
	api := &fakeInflux{queryCSV: "\r\n"}
	i := newTestInflux(t, api)

	r := testReport()
	r.Aggregates = nil
	if err := i.Publish(context.Background(), r); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if api.writeCalls != 0 {
		t.Errorf("write requests: got %d, want 0", api.writeCalls)
	}
}

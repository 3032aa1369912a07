package cmd

import (
	"bytes"
	"encoding/binary"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"

	"github.com/achilleasa/go-sightline/nav"
)

// newTestService loads a small two-leaf index: an x split at 5 with objects
// 0,1 on the left and 2,3 on the right inside a 10-unit cube.
func newTestService(t *testing.T) *queryService {
	t.Helper()

	var buf bytes.Buffer
	sections := []interface{}{
		[6]float32{0, 0, 0, 10, 10, 10},
		uint32(9),
		[]uint32{
			0<<30 | 3, math.Float32bits(5), math.Float32bits(5),
			3 << 30, 2, 0,
			3<<30 | 2, 2, 0,
		},
		uint32(4),
		[]uint32{0, 1, 2, 3},
	}
	for _, section := range sections {
		if err := binary.Write(&buf, binary.LittleEndian, section); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "region.map")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := nav.Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &queryService{m: m}
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServeRayEndpoint(t *testing.T) {
	router := newRouter(newTestService(t))

	w := postJSON(t, router, "/api/ray", `{"origin":[-1,5,5],"dir":[1,0,0],"maxDist":100}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200; got %d", w.Code)
	}
	var resp idsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 4 || !reflect.DeepEqual(resp.IDs, []uint32{0, 1, 2, 3}) {
		t.Fatalf("expected all candidates front to back; got %+v", resp)
	}

	w = postJSON(t, router, "/api/ray", `{"origin":[-1,5,5],"dir":[1,0,0],"maxDist":100,"first":true}`)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || !reflect.DeepEqual(resp.IDs, []uint32{0}) {
		t.Fatalf("expected the first candidate only; got %+v", resp)
	}

	// A ray that misses still answers with an empty array.
	w = postJSON(t, router, "/api/ray", `{"origin":[20,20,20],"dir":[1,0,0],"maxDist":100}`)
	if !strings.Contains(w.Body.String(), `"ids":[]`) {
		t.Fatalf("expected an empty ids array; got %s", w.Body.String())
	}
}

func TestServePointEndpoint(t *testing.T) {
	router := newRouter(newTestService(t))

	w := postJSON(t, router, "/api/point", `{"point":[1,1,1]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200; got %d", w.Code)
	}
	var resp idsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || !reflect.DeepEqual(resp.IDs, []uint32{0, 1}) {
		t.Fatalf("expected left-region candidates; got %+v", resp)
	}
}

func TestServeBoxEndpoint(t *testing.T) {
	router := newRouter(newTestService(t))

	w := postJSON(t, router, "/api/box", `{"min":[5.5,0,0],"max":[9.5,10,10]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200; got %d", w.Code)
	}
	var resp boxResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || !reflect.DeepEqual(resp.IDs, []uint32{2, 3}) || resp.Truncated {
		t.Fatalf("expected right-region candidates; got %+v", resp)
	}

	// A one-slot limit clamps the result and flags the truncation.
	w = postJSON(t, router, "/api/box", `{"min":[0,0,0],"max":[10,10,10],"limit":1}`)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || !resp.Truncated {
		t.Fatalf("expected a truncated single candidate; got %+v", resp)
	}
}

func TestServeStatsEndpoint(t *testing.T) {
	router := newRouter(newTestService(t))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200; got %d", w.Code)
	}
	var resp statsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "region.map" || resp.Primitives != 4 || resp.UsesRemap {
		t.Fatalf("expected the loaded index metadata; got %+v", resp)
	}
}

func TestServeRejectsMalformedBody(t *testing.T) {
	router := newRouter(newTestService(t))

	w := postJSON(t, router, "/api/ray", `{"origin":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400; got %d", w.Code)
	}
}

func TestServeMethodRouting(t *testing.T) {
	router := newRouter(newTestService(t))

	req := httptest.NewRequest(http.MethodGet, "/api/ray", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405; got %d", w.Code)
	}
}

func TestServeMetricsEndpoint(t *testing.T) {
	router := newRouter(newTestService(t))

	// Serve one query so the duration histogram has an observation.
	postJSON(t, router, "/api/point", `{"point":[1,1,1]}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200; got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "sightline_query_duration_seconds") {
		t.Fatal("expected the query duration histogram to be exported")
	}
}

// Both the probe command and the box endpoint size their result buffer
// through this clamp, so a degenerate capacity must never reach make.
func TestClampBoxLimit(t *testing.T) {
	specs := []struct {
		in, exp int
	}{
		{-1, defaultBoxLimit},
		{0, defaultBoxLimit},
		{42, 42},
		{maxBoxLimit, maxBoxLimit},
		{maxBoxLimit + 1, maxBoxLimit},
	}

	for _, spec := range specs {
		if got := clampBoxLimit(spec.in); got != spec.exp {
			t.Fatalf("limit %d: expected %d; got %d", spec.in, spec.exp, got)
		}
	}
}

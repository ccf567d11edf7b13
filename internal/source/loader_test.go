package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chandana/internal/domain"
	"chandana/internal/httpx"
)

const hposCSV = "sampleId,deviceRatio\n1,0.40\n2,abc\n,\n3,NA\n"

func TestLoadRemoteCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(hposCSV))
	}))
	defer server.Close()

	l := NewLoader("hpos", server.URL+"/pub?output=csv")
	table, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("rows = %d, want 3 (all-null row dropped)", table.Len())
	}
	if !table.Get(2, "deviceRatio").Null {
		t.Fatal("NA should read as null")
	}
	if got := table.Get(1, "deviceRatio").Value; got != "abc" {
		t.Fatalf("row 1 ratio = %q, want abc", got)
	}
}

func TestLoadRemoteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewLoader("hpos", server.URL).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error should mention status: %v", err)
	}
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected wrapped StatusError with 404, got %v", err)
	}
}

func TestNewLoaderUsesConfiguredTimeout(t *testing.T) {
	original := httpx.Client().Timeout
	t.Cleanup(func() { httpx.ConfigureExternalHTTPClient(int(original / time.Second)) })

	httpx.ConfigureExternalHTTPClient(7)
	l := NewLoader("hpos", "https://example.test/hpos.csv")
	if l.Client.Timeout != 7*time.Second {
		t.Fatalf("loader client timeout = %s, want 7s", l.Client.Timeout)
	}
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hplc.csv")
	content := "\ufeffSL No.,Age,Gender\n1,12 yrs,M\n2,7,F,extra\n3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	table, err := NewLoader("hplc", path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !table.HasColumn("SL No.") {
		t.Fatalf("BOM not stripped from header: %q", table.Header)
	}
	if table.Len() != 3 {
		t.Fatalf("rows = %d, want 3", table.Len())
	}
	if !table.Get(2, "Gender").Null {
		t.Fatal("short row should pad with nulls")
	}
}

func TestLoadMissingSource(t *testing.T) {
	if _, err := NewLoader("hplc", "").Load(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured source")
	}
	if _, err := NewLoader("hplc", filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyCSV) {
		t.Fatalf("got %v, want ErrEmptyCSV", err)
	}
}

func TestSyntheticIsDeterministic(t *testing.T) {
	a := SyntheticHPLC(50, 7)
	b := SyntheticHPLC(50, 7)
	if a.Len() != 50 || len(a.Header) != len(domain.HPLCColumns) {
		t.Fatalf("unexpected synthetic shape: rows=%d cols=%d", a.Len(), len(a.Header))
	}
	for i := range a.Rows {
		for j := range a.Rows[i] {
			if a.Rows[i][j] != b.Rows[i][j] {
				t.Fatalf("row %d col %d differs between runs", i, j)
			}
		}
	}
	h := SyntheticHPOS(40, 7)
	if h.Len() != 40 || !h.HasColumn(domain.ColDeviceRatio) {
		t.Fatalf("unexpected synthetic hpos: rows=%d header=%v", h.Len(), h.Header)
	}
}

package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slack-go/slack"
)

func TestNewFallsBackToLog(t *testing.T) {
	if _, ok := New("", "C123").(LogNotifier); !ok {
		t.Fatal("expected LogNotifier without a token")
	}
	if _, ok := New("xoxb-test", "").(LogNotifier); !ok {
		t.Fatal("expected LogNotifier without a channel")
	}
	if err := (LogNotifier{}).Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("LogNotifier.Notify: %v", err)
	}
}

func TestSlackNotifierPostsMessage(t *testing.T) {
	var gotChannel, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat.postMessage") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	n := New("xoxb-test", "C123", slack.OptionAPIURL(server.URL+"/"))
	if _, ok := n.(*SlackNotifier); !ok {
		t.Fatalf("expected SlackNotifier, got %T", n)
	}
	if err := n.Notify(context.Background(), "hpos source unreachable"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotChannel != "C123" {
		t.Fatalf("channel = %q, want C123", gotChannel)
	}
	if gotText != "hpos source unreachable" {
		t.Fatalf("text = %q", gotText)
	}
}

func TestSlackNotifierReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	n := New("xoxb-test", "C404", slack.OptionAPIURL(server.URL+"/"))
	err := n.Notify(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected channel_not_found error, got %v", err)
	}
}

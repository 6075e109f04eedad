package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"csx_ticker/internal/domain"
)

const mockSummary = `{"data":[
{"stock":"ABC","close":"10,980","change":"20","change_up_down":"up","volume":"12,345","value":"135,548,100","created_at":"2024-05-10T08:05:00.000000Z"},
{"stock":"PPSP","close":"2,340","change":"-60","change_up_down":"down","volume":"1,000","value":"2,340,000","created_at":"2024-05-10T08:05:00.000000Z"}
]}`

func TestCSXClient_FetchSnapshot(t *testing.T) {
	var gotMethod, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockSummary))
	}))
	defer server.Close()

	client := NewCSXClient(server.URL, 0)
	snap, err := client.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}

	if gotMethod != http.MethodGet {
		t.Errorf("Expected GET, got %s", gotMethod)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("Expected browser user agent, got %s", gotUA)
	}
	if len(snap.Quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(snap.Quotes))
	}
	if snap.Quotes[0].Symbol != "ABC" || snap.Quotes[1].Direction() != domain.DirectionDown {
		t.Errorf("Unexpected quotes: %+v", snap.Quotes)
	}
	if !snap.CreatedAt().Parsed() {
		t.Error("Expected snapshot timestamp to parse")
	}
}

func TestCSXClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewCSXClient(server.URL, 0).FetchSnapshot(context.Background())

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", te.StatusCode)
	}
}

func TestCSXClient_EmptyResponse(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":    `{"data":[]}`,
		"missing field": `{}`,
		"null data":     `{"data":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewCSXClient(server.URL, 0).FetchSnapshot(context.Background())

			var empty *domain.EmptyPayloadError
			if !errors.As(err, &empty) {
				t.Errorf("Expected EmptyPayloadError, got %v", err)
			}
		})
	}
}

func TestCSXClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	_, err := NewCSXClient(server.URL, 0).FetchSnapshot(context.Background())

	var te *domain.TransportError
	if !errors.As(err, &te) || te.Op != "decode" {
		t.Errorf("Expected decode TransportError, got %v", err)
	}
}

func TestCSXClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewCSXClient(url, 0).FetchSnapshot(context.Background())
	if !domain.IsRetriable(err) {
		t.Errorf("Network failure should be a retriable TransportError, got %v", err)
	}
}

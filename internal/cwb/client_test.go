package cwb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func newTestServer(t *testing.T, apiStatus, pageStatus int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header not set")
		}
		switch r.URL.Path {
		case "/api/advisories":
			if apiStatus != http.StatusOK {
				w.WriteHeader(apiStatus)
				return
			}
			data, _ := os.ReadFile("../../testdata/cwb_advisories.json")
			w.Write(data)
		case "/advisories/":
			if pageStatus != http.StatusOK {
				w.WriteHeader(pageStatus)
				return
			}
			data, _ := os.ReadFile("../../testdata/cwb_page.html")
			w.Write(data)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestClient(server *httptest.Server) *Client {
	client := NewClient(nil)
	client.apiURL = server.URL + "/api/advisories"
	client.pageURL = server.URL + "/advisories/"
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil)
	if client.httpClient.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", client.httpClient.Timeout)
	}
}

func TestClient_GetAdvisories_API(t *testing.T) {
	server := newTestServer(t, http.StatusOK, http.StatusOK)
	defer server.Close()

	advisories, err := newTestClient(server).GetAdvisories(context.Background())
	if err != nil {
		t.Fatalf("GetAdvisories() error = %v", err)
	}
	if len(advisories) != 3 {
		t.Fatalf("len(advisories) = %d, want 3", len(advisories))
	}

	first := advisories[0]
	if first.ID != "101" || first.Beach != "Kailua Beach Park" || first.Type != "Brown Water Advisory" {
		t.Errorf("first advisory = %+v", first)
	}

	// Alternate field names and default status
	second := advisories[1]
	if second.Beach != "Hanauma Bay" || second.Type != "Sewage Advisory" || second.Status != "active" {
		t.Errorf("second advisory = %+v", second)
	}
	if second.PostedDate != "2025-07-04" {
		t.Errorf("PostedDate = %s, want start_date", second.PostedDate)
	}
}

func TestClient_GetOahuAdvisories(t *testing.T) {
	server := newTestServer(t, http.StatusOK, http.StatusOK)
	defer server.Close()

	advisories, err := newTestClient(server).GetOahuAdvisories(context.Background())
	if err != nil {
		t.Fatalf("GetOahuAdvisories() error = %v", err)
	}
	// Poipu is on Kauai
	if len(advisories) != 2 {
		t.Fatalf("len(advisories) = %d, want 2", len(advisories))
	}
}

func TestClient_GetAdvisories_ScrapeFallback(t *testing.T) {
	server := newTestServer(t, http.StatusInternalServerError, http.StatusOK)
	defer server.Close()

	advisories, err := newTestClient(server).GetAdvisories(context.Background())
	if err != nil {
		t.Fatalf("GetAdvisories() error = %v", err)
	}

	// Two table rows (the blank beach row is dropped) and one list item
	if len(advisories) != 3 {
		t.Fatalf("len(advisories) = %d, want 3", len(advisories))
	}
	if advisories[0].Beach != "Waimea Bay" {
		t.Errorf("Beach = %q, want Waimea Bay", advisories[0].Beach)
	}
	if advisories[0].PostedDate != "07/04/2025" {
		t.Errorf("PostedDate = %q, want 07/04/2025", advisories[0].PostedDate)
	}

	listed := advisories[2]
	if listed.Beach != "Ala Moana" || listed.Type != "Closure" || listed.Island != "Oahu" {
		t.Errorf("list advisory = %+v", listed)
	}

	if oahu := FilterOahu(advisories); len(oahu) != 2 {
		t.Errorf("len(FilterOahu()) = %d, want 2", len(oahu))
	}
}

func TestClient_GetAdvisories_AllSourcesDown(t *testing.T) {
	server := newTestServer(t, http.StatusBadGateway, http.StatusBadGateway)
	defer server.Close()

	_, err := newTestClient(server).GetAdvisories(context.Background())
	if !errors.Is(err, ErrNoAdvisories) {
		t.Errorf("error = %v, want ErrNoAdvisories", err)
	}
}

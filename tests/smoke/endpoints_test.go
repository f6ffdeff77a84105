//go:build smoke

package smoke

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestSyncThenReadClubInfo(t *testing.T) {
	baseURL := startServer(t)
	client := &http.Client{Timeout: 5 * time.Second}

	body := `{"type":"club_info","data":[{"section":"history","title":"Historia","content":"Fundado en 1987"}]}`
	for i := 0; i < 2; i++ {
		resp, err := client.Post(baseURL+"/functions/v1/google-sheets-api", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("sync request: %v", err)
		}
		var out struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !out.Success {
			t.Fatalf("sync status = %d body = %+v", resp.StatusCode, out)
		}
	}

	resp, err := client.Get(baseURL + "/api/v1/club-info")
	if err != nil {
		t.Fatalf("club info request: %v", err)
	}
	defer resp.Body.Close()

	var view struct {
		Sections map[string]struct {
			Title string `json:"title"`
		} `json:"sections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode club info: %v", err)
	}
	if len(view.Sections) != 1 || view.Sections["history"].Title != "Historia" {
		t.Fatalf("unexpected club info: %+v", view.Sections)
	}
}

func TestPreflightAndContactWithoutEmail(t *testing.T) {
	baseURL := startServer(t)
	client := &http.Client{Timeout: 5 * time.Second}

	req, _ := http.NewRequest(http.MethodOptions, baseURL+"/functions/v1/send-contact-email", nil)
	req.Header.Set("Origin", "https://club.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight allow origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}

	resp, err = client.Post(baseURL+"/functions/v1/send-contact-email", "application/json",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","subject":"Hola","message":"Hola"}`))
	if err != nil {
		t.Fatalf("contact request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("contact status = %d, want 503 without email config", resp.StatusCode)
	}
}

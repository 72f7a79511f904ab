package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"practice-agenda/internal/adapters/auth/local"
	"practice-agenda/internal/router"

	"golang.org/x/crypto/bcrypt"
)

// Año lejano: "próximo atendimento" se calcula desde hoy.
const day = "2099-03-20"

type dayBody struct {
	Date    string `json:"date"`
	Empty   bool   `json:"empty"`
	Entries []struct {
		ID         string `json:"id"`
		Kind       string `json:"kind"`
		Title      string `json:"title"`
		ClientName string `json:"client_name"`
		Address    string `json:"address"`
		TimeRange  string `json:"time_range"`
	} `json:"entries"`
}

func TestHTTP_EndToEnd_AgendaFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{RevealInterval: 30 * time.Millisecond}))
	defer ts.Close()

	ownerID := "operator-1"
	otherID := "operator-2"

	// 1) Alta de cliente
	clientID := createClient(t, ts.URL, ownerID, map[string]any{
		"name":  "Ana Souza",
		"phone": "11 99999-0000",
		"email": "ana@example.com",
	})

	// 2) Atendimento para el cliente
	var consultationID string
	{
		st, body := doReq(t, ts.URL, "POST", "/consultations", ownerID, map[string]any{
			"date":              day,
			"client_id":         clientID,
			"procedure":         "Massagem",
			"consultation_type": "follow_up",
			"address":           "Rua A, 1",
			"start_time":        "14:30",
			"end_time":          "15:30",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create consultation, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID    string `json:"id"`
			Kind  string `json:"kind"`
			Title string `json:"title"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Kind != "consultation" || resp.Title != "Massagem - Ana Souza" {
			t.Fatalf("unexpected consultation: %s", string(body))
		}
		consultationID = resp.ID
	}

	// 3) Nota en el mismo día; el detalle lista el más reciente primero
	var noteID string
	{
		st, body := doReq(t, ts.URL, "POST", "/calendar/"+day+"/notes", ownerID, map[string]any{
			"title":   "Comprar óleo",
			"service": "Massagem",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add note, got %d body=%s", st, string(body))
		}
		var resp dayBody
		_ = json.Unmarshal(body, &resp)
		if len(resp.Entries) != 2 || resp.Entries[0].Kind != "note" {
			t.Fatalf("expected note first among 2 entries, got %s", string(body))
		}
		noteID = resp.Entries[0].ID
		if resp.Entries[1].TimeRange != "14:30 - 15:30" {
			t.Fatalf("unexpected time range %q", resp.Entries[1].TimeRange)
		}
	}

	// 4) Mes del calendario
	{
		st, body := doReq(t, ts.URL, "GET", "/calendar?month=2099-03", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 calendar, got %d body=%s", st, string(body))
		}
		var resp struct {
			Month    string `json:"month"`
			Previous string `json:"previous"`
			Next     string `json:"next"`
			Days     []struct {
				Day           int   `json:"day"`
				HasEntry      bool  `json:"has_entry"`
				Count         int   `json:"count"`
				RevealDelayMS int64 `json:"reveal_delay_ms"`
			} `json:"days"`
			Entries []json.RawMessage `json:"entries"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Month != "2099-03" || resp.Previous != "2099-02" || resp.Next != "2099-04" {
			t.Fatalf("unexpected month navigation: %s", string(body))
		}
		if len(resp.Days) != 31 || len(resp.Entries) != 2 {
			t.Fatalf("expected 31 days and 2 entries, got %d/%d", len(resp.Days), len(resp.Entries))
		}
		d := resp.Days[19]
		if d.Day != 20 || !d.HasEntry || d.Count != 2 {
			t.Fatalf("expected day 20 marked with 2 entries, got %+v", d)
		}
		if resp.Days[0].HasEntry || resp.Days[1].RevealDelayMS <= resp.Days[0].RevealDelayMS {
			t.Fatalf("unexpected reveal schedule / markers: %+v %+v", resp.Days[0], resp.Days[1])
		}
	}

	// 5) Edición del atendimento
	{
		st, body := doReq(t, ts.URL, "PATCH", "/calendar/"+day+"/entries/"+consultationID, ownerID, map[string]any{
			"address": "Rua B, 2",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		var resp dayBody
		_ = json.Unmarshal(body, &resp)
		var found bool
		for _, e := range resp.Entries {
			if e.ID == consultationID && e.Address == "Rua B, 2" {
				found = true
			}
		}
		if !found {
			t.Fatalf("edited address not reflected: %s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/calendar/"+day+"/entries/"+consultationID, ownerID, map[string]any{
			"mood": "feliz",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for note field on consultation, got %d", st)
		}
	}

	// 6) Lista de clientes con estadísticas
	{
		st, body := doReq(t, ts.URL, "GET", "/clients", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list clients, got %d body=%s", st, string(body))
		}
		var rows []struct {
			ID                   string  `json:"id"`
			TotalEntries         int     `json:"total_entries"`
			LastEntryDate        *string `json:"last_entry_date"`
			NextConsultationDate *string `json:"next_consultation_date"`
			NextConsultationTime *string `json:"next_consultation_time"`
		}
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 1 || rows[0].TotalEntries != 1 {
			t.Fatalf("expected one client with one entry, got %s", string(body))
		}
		if rows[0].NextConsultationDate == nil || *rows[0].NextConsultationDate != day {
			t.Fatalf("expected next consultation on %s, got %s", day, string(body))
		}
		if rows[0].NextConsultationTime == nil || *rows[0].NextConsultationTime != "14:30" {
			t.Fatalf("expected next consultation at 14:30, got %s", string(body))
		}
	}

	// 7) Ficha de anamnese y PDF
	{
		st, body := doReq(t, ts.URL, "POST", "/clients/"+clientID+"/anamnesis", ownerID, map[string]any{
			"title":           "Primeira ficha",
			"chief_complaint": "Dor lombar",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create anamnesis, got %d body=%s", st, string(body))
		}
	}
	{
		req, _ := http.NewRequest("GET", ts.URL+"/clients/"+clientID+"/report.pdf", nil)
		req.Header.Set("X-Debug-User-ID", ownerID)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("pdf request: %v", err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
			t.Fatalf("expected pdf, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		if !bytes.HasPrefix(b, []byte("%PDF")) {
			t.Fatalf("body is not a pdf")
		}
	}

	// 8) Otro operador no ve nada
	{
		st, _ := doReq(t, ts.URL, "GET", "/clients/"+clientID, otherID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for foreign client, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/calendar/"+day, otherID, nil)
		var resp dayBody
		_ = json.Unmarshal(body, &resp)
		if st != http.StatusOK || !resp.Empty {
			t.Fatalf("expected empty day for other operator, got %d %s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/calendar/"+day+"/entries/"+noteID, otherID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 deleting foreign entry, got %d", st)
		}
	}

	// 9) Borrado de la nota
	{
		st, body := doReq(t, ts.URL, "DELETE", "/calendar/"+day+"/entries/"+noteID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete entry, got %d body=%s", st, string(body))
		}
		var resp dayBody
		_ = json.Unmarshal(body, &resp)
		if len(resp.Entries) != 1 || resp.Entries[0].ID != consultationID {
			t.Fatalf("expected only the consultation left, got %s", string(body))
		}
	}

	// 10) Baja del cliente: se van sus fichas, el atendimento queda
	{
		st, body := doReq(t, ts.URL, "DELETE", "/clients/"+clientID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete client, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/clients/"+clientID+"/anamnesis", ownerID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 anamnesis of deleted client, got %d", st)
		}
		st, body = doReq(t, ts.URL, "GET", "/calendar/"+day, ownerID, nil)
		var resp dayBody
		_ = json.Unmarshal(body, &resp)
		if st != http.StatusOK || len(resp.Entries) != 1 {
			t.Fatalf("expected consultation to survive client removal, got %s", string(body))
		}
	}
}

func TestHTTP_RequiresUser(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/clients", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
}

func TestHTTP_CalendarRejectsBadMonth(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/calendar?month=2099-13", "operator-1", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", st)
	}
}

func TestHTTP_LocalAuthLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	tokens, err := local.NewTokens("0123456789abcdef", "practice-agenda", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	authn, err := local.NewAuthenticator(local.Operator{
		ID: "op-1", Email: "ana@example.com", Name: "Ana", PasswordHash: string(hash),
	}, tokens)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:  tokens,
		Authenticator: authn,
		TokenTTL:      time.Hour,
	}))
	defer ts.Close()

	// El header de debug no sirve fuera de modo dev
	st, _ := doReq(t, ts.URL, "GET", "/auth/me", "op-1", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with debug header in local mode, got %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "correct horse",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &login)

	req, _ := http.NewRequestWithContext(context.Background(), "GET", ts.URL+"/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer resp.Body.Close()
	me, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(me), `"id":"op-1"`) {
		t.Fatalf("expected me to return op-1, got %d %s", resp.StatusCode, string(me))
	}
}

func createClient(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/clients", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create client, got %d body=%s", st, string(body))
	}

	var resp struct {
		Client struct {
			ID string `json:"id"`
		} `json:"client"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Client.ID == "" {
		t.Fatalf("create client: missing id body=%s", string(body))
	}
	return resp.Client.ID
}

func doReq(t *testing.T, baseURL, method, path, userID string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func createRoom(t *testing.T, ts *httptest.Server, payload map[string]any) (string, int) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/rooms", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	room := body["room"].(map[string]any)
	player := body["player"].(map[string]any)
	return room["code"].(string), int(player["id"].(float64))
}

func joinRoom(t *testing.T, ts *httptest.Server, code, nickname string) int {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/rooms/"+code+"/join", map[string]string{
		"nickname": nickname,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return int(body["player"].(map[string]any)["id"].(float64))
}

func startRound(t *testing.T, ts *httptest.Server, code string, payload any) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/rooms/"+code+"/start_round", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := decodeBody(t, resp)
	msg, ok := body["error"].(string)
	if !ok {
		t.Fatalf("expected error string, got %#v", body)
	}
	return msg
}

func decodeInto(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

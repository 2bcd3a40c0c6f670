package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ndrozd/mirra/internal/twin"
)

func putJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s error = %v", url, err)
	}
	return res
}

func TestProfileGetEmptyState(t *testing.T) {
	ts, _ := newTestServer(t, "test_httpapi_profile_empty")

	res, err := http.Get(ts.URL + "/api/profile")
	if err != nil {
		t.Fatalf("GET /api/profile error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var payload struct {
		Profile        *json.RawMessage `json:"profile"`
		Traits         []any            `json:"traits"`
		KnowledgeStats []any            `json:"knowledgeStats"`
		Stats          map[string]int   `json:"stats"`
		BehaviorStats  []any            `json:"behaviorStats"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.Profile != nil && string(*payload.Profile) != "null" {
		t.Fatalf("profile = %s, want null for missing row", *payload.Profile)
	}
	if payload.KnowledgeStats == nil {
		t.Fatalf("knowledgeStats must be an empty list, not null")
	}
	if len(payload.KnowledgeStats) != 0 {
		t.Fatalf("knowledgeStats = %+v, want empty", payload.KnowledgeStats)
	}
	if payload.Stats["total_conversations"] != 0 {
		t.Fatalf("total_conversations = %d, want 0", payload.Stats["total_conversations"])
	}
}

func TestProfilePutUpdatesTraitsAndProfile(t *testing.T) {
	ts, store := newTestServer(t, "test_httpapi_profile_put")
	store.SetTraits(twin.DefaultUserID, []twin.PersonalityTrait{
		{Name: "юмор", Value: 40, Description: "сдержанный"},
	})

	res := putJSON(t, ts.URL+"/api/profile", map[string]any{
		"profile": map[string]any{
			"name":       "Иван",
			"occupation": "инженер",
		},
		"traits": []map[string]any{
			{"name": "юмор", "value": 85},
		},
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var ok struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ok); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !ok.Success {
		t.Fatalf("success = false, want true")
	}

	getRes, err := http.Get(ts.URL + "/api/profile")
	if err != nil {
		t.Fatalf("GET /api/profile error = %v", err)
	}
	defer getRes.Body.Close()
	var payload struct {
		Profile *struct {
			Name *string `json:"name"`
		} `json:"profile"`
		Traits []struct {
			Name  string `json:"trait_name"`
			Value int    `json:"trait_value"`
		} `json:"traits"`
	}
	if err := json.NewDecoder(getRes.Body).Decode(&payload); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if payload.Profile == nil || payload.Profile.Name == nil || *payload.Profile.Name != "Иван" {
		t.Fatalf("profile after PUT = %+v, want name Иван", payload.Profile)
	}
	if len(payload.Traits) != 1 || payload.Traits[0].Value != 85 {
		t.Fatalf("traits after PUT = %+v, want юмор at 85", payload.Traits)
	}
}

func TestProfilePostAddKnowledgeAndPreference(t *testing.T) {
	ts, store := newTestServer(t, "test_httpapi_profile_post")

	res := postJSON(t, ts.URL+"/api/profile", map[string]any{
		"action":   "add_knowledge",
		"category": "работа",
		"topic":    "стек",
		"content":  "Пишет на Go",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("add_knowledge status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	prefRes := postJSON(t, ts.URL+"/api/profile", map[string]any{
		"action":   "add_preference",
		"category": "еда",
		"item":     "кофе",
	})
	defer prefRes.Body.Close()
	if prefRes.StatusCode != http.StatusOK {
		t.Fatalf("add_preference status = %d, want %d", prefRes.StatusCode, http.StatusOK)
	}

	prefs := store.Preferences(twin.DefaultUserID)
	if len(prefs) != 1 {
		t.Fatalf("preferences = %+v, want one entry", prefs)
	}
	if prefs[0].Type != "like" || prefs[0].Intensity != 3 {
		t.Fatalf("preference defaults = %+v, want type like, intensity 3", prefs[0])
	}

	getRes, err := http.Get(ts.URL + "/api/profile")
	if err != nil {
		t.Fatalf("GET /api/profile error = %v", err)
	}
	defer getRes.Body.Close()
	var payload struct {
		KnowledgeStats []struct {
			Category string `json:"category"`
			Count    int    `json:"count"`
		} `json:"knowledgeStats"`
	}
	if err := json.NewDecoder(getRes.Body).Decode(&payload); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if len(payload.KnowledgeStats) != 1 || payload.KnowledgeStats[0].Count != 1 {
		t.Fatalf("knowledgeStats = %+v, want one category with count 1", payload.KnowledgeStats)
	}
}

func TestProfilePostUnknownActionIsBadRequest(t *testing.T) {
	ts, _ := newTestServer(t, "test_httpapi_profile_action")

	res := postJSON(t, ts.URL+"/api/profile", map[string]any{"action": "drop_tables"})
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

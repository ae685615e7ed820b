package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseReading(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"json", `{"dish":"焼物","reading":"やきもの"}`, "やきもの", false},
		{"fenced", "```json\n{\"dish\":\"小鉢\",\"reading\":\"こばち\"}\n```", "こばち", false},
		{"plain", "「ぎゅうたたき」", "ぎゅうたたき", false},
		{"empty reading", `{"dish":"小鉢","reading":" "}`, "", true},
		{"prose", "The reading is\nこばち", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReading(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseReading() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseReading() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("すいもの", 2); got != "すい..." {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("abc", 5); got != "abc" {
		t.Errorf("truncateString() = %q", got)
	}
}

func TestDishReading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]string{
					"role":    "assistant",
					"content": `{"dish":"八寸","reading":"はっすん"}`,
				},
			}},
		})
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "test-model")
	got, err := c.DishReading("八寸")
	if err != nil {
		t.Fatalf("DishReading() error = %v", err)
	}
	if got != "はっすん" {
		t.Errorf("DishReading() = %q", got)
	}
}

package planner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string `json:"name"`
			Strict bool   `json:"strict"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

func chatCompletion(content, finish string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": finish,
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
	})
	return string(body)
}

func newOpenAITest(t *testing.T, handler func(req chatRequest) string) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, handler(req))
	}))
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	return &OpenAI{Client: &client, Model: "gpt-4o"}
}

func TestOpenAI_MentionsSchedule(t *testing.T) {
	p := newOpenAITest(t, func(req chatRequest) string {
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "assistant" {
			t.Errorf("messages = %+v", req.Messages)
		}
		if req.ResponseFormat != nil {
			t.Errorf("unexpected response_format %+v", req.ResponseFormat)
		}
		return chatCompletion("True", "stop")
	})

	ok, err := p.MentionsSchedule(context.Background(), "내일 10시에 병원 가시는 거 잊지 마세요.")
	if err != nil {
		t.Fatalf("MentionsSchedule: %v", err)
	}
	if !ok {
		t.Error("MentionsSchedule = false, want true")
	}
}

func TestOpenAI_Extract(t *testing.T) {
	p := newOpenAITest(t, func(req chatRequest) string {
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Errorf("response_format = %+v, want json_schema", req.ResponseFormat)
		} else if !req.ResponseFormat.JSONSchema.Strict || req.ResponseFormat.JSONSchema.Name != "schedules" {
			t.Errorf("json_schema = %+v", req.ResponseFormat.JSONSchema)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d, want 2", len(req.Messages))
		}
		return chatCompletion(`{"items":[{"date":"2024-11-21","time":"10:00","destination":"병원","purpose":"검진","is_done":false,"comment":""}]}`, "stop")
	})

	items, err := p.Extract(context.Background(), Request{
		Now:     time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC),
		History: []Message{{Role: "assistant", Content: "내일 10시에 병원 가세요."}},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(items) != 1 || items[0].Destination != "병원" {
		t.Errorf("items = %+v", items)
	}
}

func TestOpenAI_FinishReason(t *testing.T) {
	p := newOpenAITest(t, func(chatRequest) string {
		return chatCompletion("Tr", "length")
	})
	if _, err := p.MentionsSchedule(context.Background(), "x"); err == nil {
		t.Fatal("expected error for truncated output")
	}
}

func TestOpenAI_EmptyContent(t *testing.T) {
	p := newOpenAITest(t, func(chatRequest) string {
		return chatCompletion("  ", "stop")
	})
	if _, err := p.MentionsSchedule(context.Background(), "x"); err != ErrNoOutput {
		t.Fatalf("err = %v, want ErrNoOutput", err)
	}
}

func TestOpenAI_MentionsSchedule_UnexpectedAnswer(t *testing.T) {
	p := newOpenAITest(t, func(chatRequest) string {
		return chatCompletion("I think there might be one.", "stop")
	})
	ok, err := p.MentionsSchedule(context.Background(), "x")
	if err != nil {
		t.Fatalf("MentionsSchedule: %v", err)
	}
	if ok {
		t.Error("MentionsSchedule = true, want false for an unexpected answer")
	}
}

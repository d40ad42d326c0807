package funcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/salpyeo/dream/pkg/docstore"
	"github.com/salpyeo/dream/pkg/funcapp"
	"github.com/salpyeo/dream/pkg/planner"
	"github.com/salpyeo/dream/pkg/schedule"
)

func (s *Server) handleGetHist(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hist, err := s.loadHistory(r.Context(), user)
	if err != nil {
		s.internalError(w, "get_hist", err)
		return
	}
	writeJSON(w, hist)
}

func (s *Server) handleSetHist(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var turn funcapp.ChatTurn
	if err := readJSON(r, &turn); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	unlock := s.lock(user)
	defer unlock()

	hist, err := s.loadHistory(r.Context(), user)
	if err != nil {
		s.internalError(w, "set_hist", err)
		return
	}
	ts := s.timestamp()
	added := []funcapp.HistoryEntry{
		{Role: funcapp.RoleUser, Content: turn.UserMessage, Datetime: ts},
		{Role: funcapp.RoleAssistant, Content: turn.BotMessage, Datetime: ts},
	}
	hist = append(hist, added...)
	if err := s.putJSON(r.Context(), user, docstore.ChatHistory, hist); err != nil {
		s.internalError(w, "set_hist", err)
		return
	}
	slog.Info("funcserver history saved", "user", user, "entries", len(hist))
	writeJSON(w, funcapp.SetHistResult{IsSuccess: true, SetData: added})
}

func (s *Server) handleSetSchedule(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text := r.URL.Query().Get("schedule")
	if text == "" {
		var req funcapp.SetScheduleRequest
		if err := readJSON(r, &req); err == nil {
			text = req.Schedule
		}
	}
	if text == "" {
		http.Error(w, "Please pass a schedule in the query string or in the request body", http.StatusBadRequest)
		return
	}
	if err := s.store.Put(r.Context(), user, docstore.Schedule, []byte(text)); err != nil {
		s.internalError(w, "set_schedule", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Schedule successfully set to : %s", text)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.planner == nil {
		http.Error(w, "planner is not configured", http.StatusServiceUnavailable)
		return
	}
	text, err := readScheduleText(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	mentioned, err := s.planner.MentionsSchedule(ctx, text)
	if err != nil {
		s.upstreamError(w, "classify", err)
		return
	}
	if !mentioned {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, funcapp.NotMentioned)
		return
	}

	unlock := s.lock(user)
	defer unlock()

	hist, err := s.loadHistory(ctx, user)
	if err != nil {
		s.internalError(w, "handle_schedule", err)
		return
	}
	existing, err := s.loadTodos(ctx, user)
	if err != nil {
		s.internalError(w, "handle_schedule", err)
		return
	}
	req := planner.Request{
		Now:      s.now().In(s.loc),
		History:  make([]planner.Message, 0, len(hist)),
		Existing: existing,
	}
	for _, h := range hist {
		req.History = append(req.History, planner.Message{Role: h.Role, Content: h.Content, Datetime: h.Datetime})
	}
	items, err := s.planner.Extract(ctx, req)
	if err != nil {
		s.upstreamError(w, "extract", err)
		return
	}
	if err := s.putJSON(ctx, user, docstore.TodoList, items); err != nil {
		s.internalError(w, "handle_schedule", err)
		return
	}
	slog.Info("funcserver schedules extracted", "user", user, "items", len(items))
	writeJSON(w, items)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days := 0
	if v := r.URL.Query().Get("from_date"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 0 {
			http.Error(w, fmt.Sprintf("invalid from_date %q", v), http.StatusBadRequest)
			return
		}
	}
	items, err := s.loadTodos(r.Context(), user)
	if err != nil {
		s.internalError(w, "get_todo", err)
		return
	}
	if items == nil {
		items = []schedule.Item{}
	}
	writeJSON(w, schedule.Since(items, s.now().In(s.loc), days))
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := s.store.Exists(r.Context(), user, docstore.ChatHistory); err != nil {
		slog.Error("funcserver init failed", "user", user, "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "Failed")
		return
	}
	io.WriteString(w, "OK")
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	user := uuid.NewString()
	if err := s.putJSON(r.Context(), user, docstore.ChatHistory, []funcapp.HistoryEntry{}); err != nil {
		s.internalError(w, "sign_up", err)
		return
	}
	slog.Info("funcserver user registered", "user", user)
	writeJSON(w, funcapp.SignUpResult{UUID: user})
}

func (s *Server) handleCreateImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		http.Error(w, "image generation is not configured", http.StatusServiceUnavailable)
		return
	}
	prompt := r.URL.Query().Get("prompt")
	if prompt == "" {
		prompt = DefaultImagePrompt
	}
	img, err := s.images.GenerateImage(r.Context(), prompt)
	if err != nil {
		slog.Error("funcserver image error", "error", err)
		http.Error(w, "image error: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Write(img)
}

// handleSetMessage synthesizes the greeting and stores it as the user's
// good_morning.wav.
func (s *Server) handleSetMessage(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.speech == nil {
		http.Error(w, "speech synthesis is not configured", http.StatusServiceUnavailable)
		return
	}
	message := r.URL.Query().Get("message")
	if message == "" {
		message = DefaultMessage
	}
	wav, err := s.speech.Synthesize(r.Context(), message)
	if err == nil {
		err = s.store.Put(r.Context(), user, docstore.GreetingAudio, wav)
	}
	if err != nil {
		slog.Error("funcserver set_message failed", "user", user, "error", err)
		http.Error(w, fmt.Sprintf("Failed to set message : %v", err), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Message successfully set to : %s", message)
}

func (s *Server) handleGetAudioFile(w http.ResponseWriter, r *http.Request) {
	user, err := s.userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("audiofile")
	if name == "" {
		name = docstore.GreetingAudio
	}
	data, err := s.store.Get(r.Context(), user, name)
	if err != nil {
		slog.Error("funcserver get_audiofile failed", "user", user, "audiofile", name, "error", err)
		http.Error(w, fmt.Sprintf("Failed to download audio file : %v", err), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Write(data)
}

// === Storage ===

func (s *Server) loadHistory(ctx context.Context, user string) ([]funcapp.HistoryEntry, error) {
	hist := []funcapp.HistoryEntry{}
	if err := s.getJSON(ctx, user, docstore.ChatHistory, &hist); err != nil {
		return nil, err
	}
	return hist, nil
}

// loadTodos returns nil when no items were stored yet.
func (s *Server) loadTodos(ctx context.Context, user string) ([]schedule.Item, error) {
	var items []schedule.Item
	if err := s.getJSON(ctx, user, docstore.TodoList, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// getJSON leaves v untouched when the document does not exist.
func (s *Server) getJSON(ctx context.Context, user, name string, v any) error {
	data, err := s.store.Get(ctx, user, name)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("funcserver: decode %s/%s: %w", user, name, err)
	}
	return nil
}

func (s *Server) putJSON(ctx context.Context, user, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("funcserver: encode %s: %w", name, err)
	}
	return s.store.Put(ctx, user, name, data)
}

// === Request and response helpers ===

func readJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// readScheduleText accepts {"todos": [...]} or the bare assistant text.
func readScheduleText(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	var req funcapp.ScheduleRequest
	if json.Unmarshal(data, &req) == nil && len(req.Todos) > 0 {
		return strings.Join(req.Todos, "\n"), nil
	}
	text := strings.TrimSpace(string(data))
	if text == "" || strings.HasPrefix(text, "{") {
		return "", errors.New("request body must carry todos")
	}
	return text, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("funcserver write response", "error", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("funcserver storage error", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) upstreamError(w http.ResponseWriter, op string, err error) {
	slog.Error("funcserver planner error", "op", op, "error", err)
	http.Error(w, "planner error: "+err.Error(), http.StatusBadGateway)
}

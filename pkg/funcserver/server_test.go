package funcserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/salpyeo/dream/pkg/docstore"
	"github.com/salpyeo/dream/pkg/funcapp"
	"github.com/salpyeo/dream/pkg/funcserver"
	"github.com/salpyeo/dream/pkg/planner"
	"github.com/salpyeo/dream/pkg/schedule"
)

const testKey = "master-key"

type fakePlanner struct {
	mu       sync.Mutex
	mentions bool
	items    []schedule.Item
	err      error
	texts    []string
	requests []planner.Request
}

func (p *fakePlanner) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

func (p *fakePlanner) Requests() []planner.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]planner.Request(nil), p.requests...)
}

func (p *fakePlanner) MentionsSchedule(_ context.Context, text string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, text)
	return p.mentions, p.err
}

func (p *fakePlanner) Extract(_ context.Context, req planner.Request) ([]schedule.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.items, p.err
}

type testEnv struct {
	srv     *httptest.Server
	store   *docstore.Memory
	planner *fakePlanner
	client  *funcapp.Client
}

var testNow = time.Date(2024, 11, 20, 0, 30, 0, 0, time.UTC) // 09:30 in Seoul

func newTestEnv(t *testing.T, userID string, opts ...funcserver.Option) *testEnv {
	t.Helper()
	env := &testEnv{store: docstore.NewMemory(), planner: &fakePlanner{}}
	opts = append([]funcserver.Option{funcserver.WithClock(func() time.Time { return testNow })}, opts...)
	s, err := funcserver.New(funcserver.Config{MasterKey: testKey}, env.store, env.planner, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	env.srv = httptest.NewServer(s)
	t.Cleanup(env.srv.Close)

	env.client, err = funcapp.NewClient(funcapp.Config{
		MasterKey: testKey,
		BaseURL:   env.srv.URL,
		UserID:    userID,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return env
}

func TestNew_Validation(t *testing.T) {
	store := docstore.NewMemory()
	tests := []struct {
		name  string
		cfg   funcserver.Config
		store docstore.Store
	}{
		{"no key", funcserver.Config{}, store},
		{"no store", funcserver.Config{MasterKey: "k"}, nil},
		{"bad user", funcserver.Config{MasterKey: "k", DefaultUserID: "nope"}, store},
		{"bad timezone", funcserver.Config{MasterKey: "k", Timezone: "Mars/Olympus"}, store},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := funcserver.New(tt.cfg, tt.store, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestUnauthorized(t *testing.T) {
	env := newTestEnv(t, "")
	for _, q := range []string{"", "?code=wrong"} {
		resp, err := http.Get(env.srv.URL + "/api/get_hist" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want 401", q, resp.StatusCode)
		}
	}
}

func TestInvalidUserID(t *testing.T) {
	env := newTestEnv(t, "not-a-uuid")
	_, err := env.client.GetChatHistory(context.Background())
	apiErr, ok := funcapp.AsError(err)
	if !ok || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestChatHistory(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	hist, err := env.client.GetChatHistory(ctx)
	if err != nil {
		t.Fatalf("GetChatHistory: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("empty history = %v", hist)
	}

	if err := env.client.SaveChatHistory(ctx, "안녕하세요", "반가워요"); err != nil {
		t.Fatalf("SaveChatHistory: %v", err)
	}
	if err := env.client.SaveChatHistory(ctx, "내일 병원 가요", "몇 시에 가세요?"); err != nil {
		t.Fatalf("SaveChatHistory: %v", err)
	}

	hist, err = env.client.GetChatHistory(ctx)
	if err != nil {
		t.Fatalf("GetChatHistory: %v", err)
	}
	if len(hist) != 4 {
		t.Fatalf("len = %d, want 4", len(hist))
	}
	want := []funcapp.HistoryEntry{
		{Role: "user", Content: "안녕하세요", Datetime: "2024-11-20 09:30 AM"},
		{Role: "assistant", Content: "반가워요", Datetime: "2024-11-20 09:30 AM"},
	}
	for i, w := range want {
		if hist[i] != w {
			t.Errorf("hist[%d] = %+v, want %+v", i, hist[i], w)
		}
	}

	ok, err := env.store.Exists(ctx, funcserver.DefaultUserID, docstore.ChatHistory)
	if err != nil || !ok {
		t.Errorf("history not stored under the default user: %v %v", ok, err)
	}
}

func TestChatHistory_PerUser(t *testing.T) {
	env := newTestEnv(t, "7b0f8a0e-1d4c-4f39-9b7e-2f6a7c1e3d55")
	ctx := context.Background()
	if err := env.client.SaveChatHistory(ctx, "u", "b"); err != nil {
		t.Fatalf("SaveChatHistory: %v", err)
	}
	ok, _ := env.store.Exists(ctx, funcserver.DefaultUserID, docstore.ChatHistory)
	if ok {
		t.Error("history stored under the default user")
	}
	ok, _ = env.store.Exists(ctx, "7b0f8a0e-1d4c-4f39-9b7e-2f6a7c1e3d55", docstore.ChatHistory)
	if !ok {
		t.Error("history not stored under the request user")
	}
}

func TestChatHistory_Concurrent(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			if err := env.client.SaveChatHistory(ctx, "u", "b"); err != nil {
				t.Errorf("SaveChatHistory: %v", err)
			}
		})
	}
	wg.Wait()
	hist, err := env.client.GetChatHistory(ctx)
	if err != nil {
		t.Fatalf("GetChatHistory: %v", err)
	}
	if len(hist) != 20 {
		t.Errorf("len = %d, want 20", len(hist))
	}
}

func TestSetSchedule(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	msg, err := env.client.SetSchedule(ctx, "매주 화요일 운동")
	if err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if msg != "Schedule successfully set to : 매주 화요일 운동" {
		t.Errorf("msg = %q", msg)
	}
	data, err := env.store.Get(ctx, funcserver.DefaultUserID, docstore.Schedule)
	if err != nil || string(data) != "매주 화요일 운동" {
		t.Errorf("stored = %q, %v", data, err)
	}

	// Query parameter form.
	data, err = env.client.Do(ctx, funcapp.EndpointSetSchedule, http.MethodPost, nil, url.Values{"schedule": {"산책"}})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.HasSuffix(string(data), ": 산책") {
		t.Errorf("body = %q", data)
	}
}

func TestSetSchedule_Missing(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.client.SetSchedule(context.Background(), "")
	apiErr, ok := funcapp.AsError(err)
	if !ok || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestProcessSchedule_NotMentioned(t *testing.T) {
	env := newTestEnv(t, "")
	res, err := env.client.ProcessSchedule(context.Background(), []string{"좋은 하루 보내세요."})
	if err != nil {
		t.Fatalf("ProcessSchedule: %v", err)
	}
	if res.Mentioned {
		t.Error("Mentioned = true")
	}
	if len(env.planner.Requests()) != 0 {
		t.Error("Extract called for an answer without schedules")
	}
	if ok, _ := env.store.Exists(context.Background(), funcserver.DefaultUserID, docstore.TodoList); ok {
		t.Error("todo list written")
	}
}

func TestProcessSchedule(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	env.planner.mentions = true
	env.planner.items = []schedule.Item{
		{Date: "2024-11-21", Time: "10:00", Destination: "병원", Purpose: "검진"},
	}

	if err := env.client.SaveChatHistory(ctx, "내일 10시에 병원 가요", "잊지 않게 알려드릴게요."); err != nil {
		t.Fatalf("SaveChatHistory: %v", err)
	}
	res, err := env.client.ProcessSchedule(ctx, []string{"내일 10시", "병원 가세요"})
	if err != nil {
		t.Fatalf("ProcessSchedule: %v", err)
	}
	if !res.Mentioned || len(res.Items) != 1 || res.Items[0].Destination != "병원" {
		t.Fatalf("res = %+v", res)
	}
	if env.planner.Texts()[0] != "내일 10시\n병원 가세요" {
		t.Errorf("classified text = %q", env.planner.Texts()[0])
	}

	req := env.planner.Requests()[0]
	if len(req.History) != 2 || req.History[0].Content != "내일 10시에 병원 가요" {
		t.Errorf("history = %+v", req.History)
	}
	if req.Existing != nil {
		t.Errorf("existing = %+v, want nil", req.Existing)
	}
	if req.Now.Location().String() != schedule.DefaultTimezone || req.Now.Hour() != 9 {
		t.Errorf("now = %v", req.Now)
	}

	// The second extraction sees the stored items.
	if _, err := env.client.ProcessSchedule(ctx, []string{"again"}); err != nil {
		t.Fatalf("ProcessSchedule: %v", err)
	}
	if got := env.planner.Requests()[1].Existing; len(got) != 1 || got[0].Destination != "병원" {
		t.Errorf("existing = %+v", got)
	}
}

func TestProcessSchedule_RawText(t *testing.T) {
	env := newTestEnv(t, "")
	resp, err := http.Post(env.srv.URL+"/api/handle_schedule_with_gpt?code="+testKey, "text/plain", strings.NewReader("plain answer"))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "False" {
		t.Errorf("status = %d, body = %q", resp.StatusCode, body)
	}
	if env.planner.Texts()[0] != "plain answer" {
		t.Errorf("text = %q", env.planner.Texts()[0])
	}
}

func TestProcessSchedule_PlannerError(t *testing.T) {
	env := newTestEnv(t, "")
	env.planner.err = errors.New("model down")
	_, err := env.client.ProcessSchedule(context.Background(), []string{"x"})
	apiErr, ok := funcapp.AsError(err)
	if !ok || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want 502", err)
	}
}

func TestProcessSchedule_NoPlanner(t *testing.T) {
	s, err := funcserver.New(funcserver.Config{MasterKey: testKey}, docstore.NewMemory(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/handle_schedule_with_gpt?code="+testKey, strings.NewReader(`{"todos":["x"]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetTodo(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	items, err := env.client.GetTodo(ctx, 0)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %+v", items)
	}

	stored := []schedule.Item{
		{Date: "2024-11-01", Time: "10:00", Destination: "old"},
		{Date: "2024-11-18", Time: "10:00", Destination: "recent"},
		{Date: "2024-11-25", Time: "10:00", Destination: "future"},
	}
	data, _ := json.Marshal(stored)
	if err := env.store.Put(ctx, funcserver.DefaultUserID, docstore.TodoList, data); err != nil {
		t.Fatal(err)
	}

	items, err = env.client.GetTodo(ctx, 0)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("all = %d items, want 3", len(items))
	}

	items, err = env.client.GetTodo(ctx, 7)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if len(items) != 2 || items[0].Destination != "recent" || items[1].Destination != "future" {
		t.Errorf("from 7 days = %+v", items)
	}
}

func TestGetTodo_InvalidFromDate(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.client.Do(context.Background(), funcapp.EndpointGetTodo, http.MethodGet, nil, url.Values{"from_date": {"abc"}})
	apiErr, ok := funcapp.AsError(err)
	if !ok || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

type brokenStore struct{ docstore.Store }

func (brokenStore) Exists(context.Context, string, string) (bool, error) {
	return false, errors.New("disk on fire")
}

func TestInit(t *testing.T) {
	env := newTestEnv(t, "")
	status, err := env.client.Init(context.Background())
	if err != nil || status != "OK" {
		t.Fatalf("Init = %q, %v", status, err)
	}

	s, err := funcserver.New(funcserver.Config{MasterKey: testKey}, brokenStore{docstore.NewMemory()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/init?code="+testKey, nil))
	if rec.Code != http.StatusServiceUnavailable || rec.Body.String() != "Failed" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

// Package funcserver serves the function-style HTTP API used by the voice
// assistant: chat history, free-text schedules and schedule items extracted
// from conversations by a planner.
//
// Every route lives under /api/ and takes the access key in the "code" query
// parameter and the user in "user_id":
//
//	GET  /api/get_hist
//	POST /api/set_hist
//	POST /api/set_schedule
//	POST /api/handle_schedule_with_gpt
//	GET  /api/get_todo?from_date=N
//	GET  /api/init
//	GET  /api/sign_up
//	GET  /api/create_image?prompt=...
//	GET  /api/set_message?message=...
//	GET  /api/get_audiofile?audiofile=...
package funcserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/salpyeo/dream/pkg/docstore"
	"github.com/salpyeo/dream/pkg/funcapp"
	"github.com/salpyeo/dream/pkg/planner"
	"github.com/salpyeo/dream/pkg/schedule"
)

// DefaultUserID is used when a request carries no user_id.
const DefaultUserID = "c0ff4b5b-3c2d-4335-a057-33e48c565f1e"

// DatetimeLayout is the layout of stored history timestamps.
const DatetimeLayout = "2006-01-02 15:04 PM"

// Defaults of the media routes.
const (
	DefaultImagePrompt = "나를 향해 인사하는 한국인의 모습"
	DefaultMessage     = "안녕히 주무셨어요? 오늘 기분은 어떠신가요?"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

const lockShards = 64

// Config configures a Server.
type Config struct {
	// MasterKey is the expected "code" query parameter. Required.
	MasterKey string `yaml:"master_key" json:"master_key"`

	// DefaultUserID replaces DefaultUserID when set.
	DefaultUserID string `yaml:"default_user_id,omitempty" json:"default_user_id,omitempty"`

	// Timezone is the IANA zone used for timestamps and date filters.
	// Default schedule.DefaultTimezone.
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

// ImageGenerator renders an image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// SpeechSynthesizer renders text as WAV audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Server implements http.Handler.
type Server struct {
	store   docstore.Store
	planner planner.Planner
	images  ImageGenerator
	speech  SpeechSynthesizer

	key         string
	defaultUser string
	loc         *time.Location
	now         func() time.Time

	mux *http.ServeMux

	// Users hash onto a fixed set of locks, so unrelated users may share
	// one.
	locks [lockShards]sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithImageGenerator enables create_image.
func WithImageGenerator(g ImageGenerator) Option {
	return func(s *Server) {
		s.images = g
	}
}

// WithSpeechSynthesizer enables set_message.
func WithSpeechSynthesizer(sp SpeechSynthesizer) Option {
	return func(s *Server) {
		s.speech = sp
	}
}

// New creates a server storing documents in store. p may be nil, in which
// case handle_schedule_with_gpt answers 503. create_image and set_message
// answer 503 until enabled by their options.
func New(cfg Config, store docstore.Store, p planner.Planner, opts ...Option) (*Server, error) {
	if cfg.MasterKey == "" {
		return nil, errors.New("funcserver: master_key is required")
	}
	if store == nil {
		return nil, errors.New("funcserver: store is required")
	}
	defaultUser := DefaultUserID
	if cfg.DefaultUserID != "" {
		id, err := uuid.Parse(cfg.DefaultUserID)
		if err != nil {
			return nil, fmt.Errorf("funcserver: default_user_id: %w", err)
		}
		defaultUser = id.String()
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = schedule.DefaultTimezone
	}
	loc, err := schedule.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("funcserver: %w", err)
	}

	s := &Server{
		store:       store,
		planner:     p,
		key:         cfg.MasterKey,
		defaultUser: defaultUser,
		loc:         loc,
		now:         time.Now,
		mux:         http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointGetHist), s.handleGetHist)
	s.mux.HandleFunc("POST /api/"+string(funcapp.EndpointSetHist), s.handleSetHist)
	s.mux.HandleFunc("POST /api/"+string(funcapp.EndpointSetSchedule), s.handleSetSchedule)
	s.mux.HandleFunc("POST /api/"+string(funcapp.EndpointHandleSchedule), s.handleSchedule)
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointGetTodo), s.handleGetTodo)
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointInit), s.handleInit)
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointSignUp), s.handleSignUp)
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointCreateImage), s.handleCreateImage)
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointSetMessage), s.handleSetMessage)
	s.mux.HandleFunc("GET /api/"+string(funcapp.EndpointGetAudioFile), s.handleGetAudioFile)
}

// ServeHTTP checks the access key and routes the request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.key)) != 1 {
		slog.Warn("funcserver unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	start := s.now()
	s.mux.ServeHTTP(w, r)
	slog.Debug("funcserver request", "method", r.Method, "path", r.URL.Path, "elapsed", s.now().Sub(start))
}

// userID returns the canonical user id of r.
func (s *Server) userID(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return s.defaultUser, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid user_id %q", raw)
	}
	return id.String(), nil
}

// lock serializes read-modify-write cycles of one user's documents.
func (s *Server) lock(user string) func() {
	l := &s.locks[xxhash.Sum64String(user)%lockShards]
	l.Lock()
	return l.Unlock
}

// timestamp formats the current time for history entries.
func (s *Server) timestamp() string {
	return s.now().In(s.loc).Format(DatetimeLayout)
}

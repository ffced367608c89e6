// ABOUTME: Site HTTP server: one templated page at /, static assets under /static, and a health check.
// ABOUTME: Routes run behind a chi router with request logging and panic recovery.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server renders the studio page and serves its assets.
type Server struct {
	cfg        Config
	dirs       AssetDirs
	templates  *TemplateEngine
	router     chi.Router
	instanceID string

	// now is swapped in tests.
	now func() time.Time
}

// NewServer resolves asset directories for cfg, parses the templates and
// builds the router. A missing template or static directory is an error.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dirs, err := ResolveAssetDirs(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolving assets: %w", err)
	}

	tmpl, err := NewTemplateEngine(dirs.Templates, dirs.Content)
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		dirs:       dirs,
		templates:  tmpl,
		instanceID: uuid.New().String(),
		now:        time.Now,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Dirs returns the resolved asset directories.
func (s *Server) Dirs() AssetDirs { return s.dirs }

// Templates returns the engine so callers can trigger reloads.
func (s *Server) Templates() *TemplateEngine { return s.templates }

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down, giving in-flight requests a few seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	fileServer := http.FileServer(filesOnly{http.Dir(s.dirs.Static)})
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	return r
}

// filesOnly hides directories so /static never produces a listing; they
// answer 404 like any other missing file.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// handleIndex renders the studio page. Nothing happens between the two
// clock reads; the page shows how long that nothing took.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	start := s.now()

	data := PageData{
		RenderTime:     elapsedMillis(start, s.now()),
		ServerLocation: s.cfg.Location,
		Manifesto:      s.templates.Manifesto(),
		InstanceID:     s.instanceID,
	}
	if err := s.templates.Render(w, "index.html", data.Vars()); err != nil {
		log.Printf("error rendering index id=%s: %v", RequestID(r.Context()), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleHealth returns a JSON health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"variant":  string(s.cfg.Variant),
		"instance": s.instanceID,
	})
}

// elapsedMillis returns end-start in milliseconds rounded to two decimals,
// never negative.
func elapsedMillis(start, end time.Time) float64 {
	ms := float64(end.Sub(start)) / float64(time.Millisecond)
	if ms < 0 {
		return 0
	}
	return math.Round(ms*100) / 100
}

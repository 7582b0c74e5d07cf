// Package server is the preview server: static file serving over the baked
// output with gzip, sane cache headers, and live reload via SSE.
package server

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kettleworks/bake/internal/watch"
)

// Options configures the preview server.
type Options struct {
	Host      string
	Port      string
	OutputDir string
}

// Server serves the output directory and pushes reload events when it
// changes.
type Server struct {
	opts Options
	hub  *reloadHub
}

func New(opts Options) *Server {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == "" {
		opts.Port = "2604"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "public"
	}
	return &Server{opts: opts, hub: newReloadHub()}
}

// Run blocks serving until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	watcher, err := watch.New([]string{s.opts.OutputDir}, func(watch.Event) {
		s.hub.broadcast()
	})
	if err != nil {
		log.Printf("Failed to watch output: %v", err)
	} else {
		go watcher.Start()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.hub.handle)
	mux.HandleFunc("/", gzipHandler(s.fileHandler()))

	addr := fmt.Sprintf("%s:%s", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		fmt.Println("\n🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	fmt.Printf("🌐 Serving on http://%s\n", addr)
	fmt.Println("   (Auto-reload enabled via /events)")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	fmt.Println("✅ Server stopped.")
	return nil
}

// Reload pushes a reload event to connected browsers, used after an external
// rebuild.
func (s *Server) Reload() {
	s.hub.broadcast()
}

func (s *Server) fileHandler() http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(s.opts.OutputDir))

	return func(w http.ResponseWriter, r *http.Request) {
		fullPath, err := validatePath(s.opts.OutputDir, filepath.ToSlash(filepath.Clean(r.URL.Path)))
		if err != nil {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("403 - Forbidden: Invalid path"))
			return
		}

		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				w.WriteHeader(http.StatusNotFound)
				if content, readErr := os.ReadFile(filepath.Join(s.opts.OutputDir, "404.html")); readErr == nil {
					_, _ = w.Write(content)
				} else {
					_, _ = w.Write([]byte("404 - Page Not Found"))
				}
			} else {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("500 - Internal Server Error"))
			}
			return
		}

		// Rendered pages must never be cached during preview; everything else
		// gets a short-lived cache.
		if info.IsDir() || strings.HasSuffix(fullPath, ".html") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=60")
		}

		fileServer.ServeHTTP(w, r)
	}
}

// gzipResponseWriter routes the body through the gzip writer.
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func gzipHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()
		next(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	}
}

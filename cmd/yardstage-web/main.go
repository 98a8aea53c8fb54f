package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/tmercier/yardstage/internal/auth"
	"github.com/tmercier/yardstage/internal/config"
	"github.com/tmercier/yardstage/internal/imagegen"
	"github.com/tmercier/yardstage/internal/logging"
	"github.com/tmercier/yardstage/internal/session"
)

//go:embed all:frontend_dist
var frontendFS embed.FS

// CLI flags
var (
	portFlag     int
	providerFlag string
	modelFlag    string
)

// Server-wide state, initialized in runMain.
var (
	cfg         *config.Config
	sessions    *session.Store
	editClient  imagegen.Client
	genaiClient *genai.Client
)

var rootCmd = &cobra.Command{
	Use:   "yardstage-web",
	Short: "Web UI for staging products into property photos",
	Long: `YardStage starts a local web server for previewing tiny homes and
pools in customer property photos. Upload a photo, paint the area to
replace or drag a region to zoom, and generate an AI rendering in your
browser.

Examples:
  yardstage-web
  yardstage-web --port 9090
  yardstage-web --provider stability
  yardstage-web --model gemini-3-pro-image-preview`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVar(&providerFlag, "provider", "", "Image backend: gemini or stability (default from env)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini image model to use")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.GeminiModel = modelFlag
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = imagegen.GetImageModel()
	}

	ctx := context.Background()
	if err := initClients(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize provider clients")
	}

	sessions = session.NewStore()

	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/session", handleSessionCreate)
	mux.HandleFunc("/api/session/", handleSessionRoutes)

	// Frontend static files (SPA fallback)
	frontendSub, err := fs.Sub(frontendFS, "frontend_dist")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access embedded frontend")
	}
	fileServer := http.FileServer(http.FS(frontendSub))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' blob: data:; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// SPA fallback: if the file doesn't exist, serve index.html
		path := r.URL.Path
		if path != "/" {
			f, err := frontendSub.Open(strings.TrimPrefix(path, "/"))
			if err != nil {
				// File not found — serve index.html for client-side routing
				r.URL.Path = "/"
			} else {
				f.Close()
			}
		}
		fileServer.ServeHTTP(w, r)
	})

	// Wrap with logging and CORS for local dev
	handler := withLogging(withCORS(mux))

	addr := fmt.Sprintf(":%d", portFlag)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().Int("port", portFlag).Str("provider", cfg.Provider).Msg("Starting web server")
	fmt.Printf("\n  YardStage Studio: http://localhost:%d\n\n", portFlag)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// initClients resolves API keys and builds the edit client for the selected
// provider. The Gemini SDK client is always created when a Gemini key is
// available — placement suggestions use the text model regardless of which
// backend renders images.
func initClients(ctx context.Context) error {
	switch cfg.Provider {
	case config.ProviderGemini:
		apiKey, err := auth.GetGeminiKey()
		if err != nil {
			return fmt.Errorf("gemini key: %w", err)
		}
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		if err := auth.ValidateGeminiKey(ctx, genaiClient, imagegen.ModelGeminiText); err != nil {
			return fmt.Errorf("invalid Gemini API key: %w", err)
		}
		log.Info().Msg("Gemini API key validated")
		editClient = imagegen.NewGeminiClient(apiKey, cfg.GeminiModel)

	case config.ProviderStability:
		apiKey, err := auth.GetStabilityKey()
		if err != nil {
			return fmt.Errorf("stability key: %w", err)
		}
		editClient = imagegen.NewStabilityClient(apiKey)

		// Placement suggestion is optional under the Stability backend.
		if geminiKey, err := auth.GetGeminiKey(); err == nil {
			genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  geminiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				log.Warn().Err(err).Msg("Placement suggestions disabled")
				genaiClient = nil
			}
		} else {
			log.Info().Msg("No Gemini key found — placement suggestions disabled")
		}

	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return nil
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins; the studio never serves remote traffic
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

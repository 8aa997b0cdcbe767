// Package app wires the registration runtime: storage, blob hosting, the
// checkout client, and both listeners.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/quizrally/registration/internal/platform/config"
	"github.com/quizrally/registration/internal/platform/timeouts"
	"github.com/quizrally/registration/internal/services/registration/api/httpapi"
	"github.com/quizrally/registration/internal/services/registration/blob"
	"github.com/quizrally/registration/internal/services/registration/checkout"
	"github.com/quizrally/registration/internal/services/registration/metrics"
	regsqlite "github.com/quizrally/registration/internal/services/registration/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath            string `env:"QUIZRALLY_REGISTRATION_DB_PATH"`
	BlobDir           string `env:"QUIZRALLY_BLOB_DIR"`
	PublicBaseURL     string `env:"QUIZRALLY_PUBLIC_BASE_URL"`
	WebhookSecret     string `env:"QUIZRALLY_WEBHOOK_SECRET"`
	CheckoutKeyID     string `env:"QUIZRALLY_CHECKOUT_KEY_ID"`
	CheckoutKeySecret string `env:"QUIZRALLY_CHECKOUT_KEY_SECRET"`
	CheckoutBaseURL   string `env:"QUIZRALLY_CHECKOUT_BASE_URL" envDefault:"https://api.razorpay.com"`
	CheckoutAmount    int64  `env:"QUIZRALLY_CHECKOUT_AMOUNT_PAISE" envDefault:"30000"`
	CheckoutCurrency  string `env:"QUIZRALLY_CHECKOUT_CURRENCY" envDefault:"INR"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "registration.db")
	}
	if strings.TrimSpace(cfg.BlobDir) == "" {
		cfg.BlobDir = filepath.Join("data", "files")
	}
	return cfg
}

// Server hosts the registration HTTP API, the uploaded-file server, and a
// gRPC health endpoint for infrastructure probes.
type Server struct {
	httpListener net.Listener
	grpcListener net.Listener
	httpServer   *http.Server
	grpcServer   *grpc.Server
	health       *health.Server
	store        *regsqlite.Store
}

// New creates a configured registration server listening on the provided
// HTTP and gRPC ports.
func New(httpPort, grpcPort int) (*Server, error) {
	return NewWithAddrs(fmt.Sprintf(":%d", httpPort), fmt.Sprintf(":%d", grpcPort))
}

// NewWithAddrs creates a configured registration server for the provided
// listener addresses.
func NewWithAddrs(httpAddr, grpcAddr string) (*Server, error) {
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpListener.Close()
		return nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
	}

	env := loadServerEnv()
	store, err := openRegistrationStore(env.DBPath)
	if err != nil {
		_ = httpListener.Close()
		_ = grpcListener.Close()
		return nil, err
	}

	blobs, err := blob.NewFSStore(env.BlobDir, strings.TrimRight(env.PublicBaseURL, "/"))
	if err != nil {
		_ = httpListener.Close()
		_ = grpcListener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	var orders httpapi.OrderCreator
	if strings.TrimSpace(env.CheckoutKeyID) != "" {
		client, err := checkout.NewClient(checkout.Config{
			KeyID:     env.CheckoutKeyID,
			KeySecret: env.CheckoutKeySecret,
			BaseURL:   env.CheckoutBaseURL,
		})
		if err != nil {
			_ = httpListener.Close()
			_ = grpcListener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("configure checkout client: %w", err)
		}
		orders = client
	} else {
		log.Printf("checkout credentials not configured; order creation disabled")
	}

	var webhookSecret []byte
	if secret := strings.TrimSpace(env.WebhookSecret); secret != "" {
		webhookSecret = []byte(secret)
	} else {
		log.Printf("webhook secret not configured; payment reconciliation disabled")
	}

	m := metrics.New()
	handler := httpapi.NewHandler(store, blobs, orders, m, httpapi.Config{
		WebhookSecret: webhookSecret,
		OrderAmount:   env.CheckoutAmount,
		OrderCurrency: env.CheckoutCurrency,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(blobs.Root()))))
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("quizrally.registration", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		httpListener: httpListener,
		grpcListener: grpcListener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
	}, nil
}

// HTTPAddr returns the HTTP listener address for the server.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the gRPC listener address for the server.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run creates and serves a registration server until context cancellation.
func Run(ctx context.Context, httpPort, grpcPort int) error {
	server, err := New(httpPort, grpcPort)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts both listeners until context cancellation. On cancellation
// the HTTP server drains in-flight requests within a bounded window before
// the hard close.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("registration http listening at %v", s.httpListener.Addr())
	log.Printf("registration grpc listening at %v", s.grpcListener.Addr())

	httpErr := make(chan error, 1)
	grpcErr := make(chan error, 1)
	go func() {
		httpErr <- s.httpServer.Serve(s.httpListener)
	}()
	go func() {
		grpcErr <- s.grpcServer.Serve(s.grpcListener)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown(httpErr)
	case err := <-httpErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-grpcErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

func (s *Server) shutdown(httpErr chan error) error {
	if s.health != nil {
		s.health.Shutdown()
	}
	s.grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	err := s.httpServer.Shutdown(shutdownCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-httpErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Close releases registration server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close registration store: %v", err)
		}
	}
}

func openRegistrationStore(path string) (*regsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := regsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registration sqlite store: %w", err)
	}
	return store, nil
}

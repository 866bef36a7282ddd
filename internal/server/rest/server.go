// Package rest exposes the session service over HTTP/JSON using chi.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Sessions is the service surface the handlers call. *services.SessionService
// satisfies it.
type Sessions interface {
	PublicKey(ctx context.Context) (string, error)
	Encrypt(ctx context.Context, publicKey, plain string) (string, error)
	SignIn(ctx context.Context, req services.SignInRequest) (models.TokenPair, error)
	SignOut(ctx context.Context, subjectID string) error
	Info(ctx context.Context, subjectID string) (*models.Account, error)
	UpdateInfo(ctx context.Context, subjectID string, req services.UpdateInfoRequest) error
	Withdraw(ctx context.Context, subjectID string) error
	ChangePassword(ctx context.Context, subjectID string, req services.ChangePasswordRequest) error
	Refresh(ctx context.Context, refreshToken, accessToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (models.AccessRecord, error)
}

type HTTPServer struct {
	address  string
	sessions Sessions
	metrics  *metrics.Metrics
	logger   logging.Logger
	handler  http.Handler
}

func NewHTTPServer(a string, l logging.Logger, sessions Sessions, m *metrics.Metrics) *HTTPServer {
	s := &HTTPServer{
		address:  a,
		sessions: sessions,
		metrics:  m,
		logger:   l.With("module", "http_server"),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

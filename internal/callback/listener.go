// Package callback catches the provider redirect on a short-lived local listener.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/brizzai/swagger-token/internal/auth/constants"
	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// ErrBind is returned by Start when the listen address cannot be bound
var ErrBind = errors.New("failed to bind callback listener")

// Result is what the single served request carried. Code is empty when
// the request was not a redirect or had no code parameter.
type Result struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
	Path             string
}

// Receiver is a one-shot redirect catcher
type Receiver interface {
	// Start binds the address and begins serving. When it returns nil the
	// receiver is ready for the redirect.
	Start() error
	// Wait blocks until the one request was served or ctx is done
	Wait(ctx context.Context) (Result, error)
	// Close stops the receiver; safe to call more than once
	Close() error
	// Addr is the bound address, valid after Start
	Addr() string
}

// Factory creates a fresh Receiver for each flow run
type Factory func() Receiver

// Listener serves exactly one request and hands its query back through a
// buffered channel.
type Listener struct {
	addr   string
	path   string
	server *http.Server
	ln     net.Listener

	once      sync.Once
	closeOnce sync.Once
	result    chan Result
}

func NewListener(cfg *config.CallbackConfig) *Listener {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	l := &Listener{
		addr:   cfg.Addr(),
		path:   path,
		result: make(chan Result, 1),
	}
	l.server = &http.Server{
		Handler:           l,
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.server.SetKeepAlivesEnabled(false)
	return l
}

// NewFactory returns a Factory building listeners from cfg
func NewFactory(cfg *config.CallbackConfig) Factory {
	return func() Receiver {
		return NewListener(cfg)
	}
}

func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %v", ErrBind, l.addr, err)
	}
	l.ln = ln

	go func() {
		logger.Info("callback listener started", zap.String("address", ln.Addr().String()))
		// The first request closes ln, which ends Serve with net.ErrClosed
		err := l.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			logger.Error("callback listener stopped", zap.Error(err))
		}
	}()
	return nil
}

func (l *Listener) Addr() string {
	if l.ln == nil {
		return l.addr
	}
	return l.ln.Addr().String()
}

func (l *Listener) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-l.result:
		return res, nil
	case <-ctx.Done():
		_ = l.Close()
		return Result{}, ctx.Err()
	}
}

func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = l.server.Shutdown(ctx)
		// Serve may not have taken ownership of the listener yet
		if l.ln != nil {
			_ = l.ln.Close()
		}
		logger.Debug("callback listener closed")
	})
	return err
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claimed := false
	l.once.Do(func() {
		claimed = true
		_ = l.ln.Close()
	})
	// Connections accepted before ln was closed are refused
	if !claimed {
		http.Error(w, "Callback already received", http.StatusGone)
		return
	}

	res := Result{Path: r.URL.Path}
	if r.Method == http.MethodGet && l.isCallbackPath(r.URL.Path) {
		q := r.URL.Query()
		if codes := q[constants.CodeQueryParam]; len(codes) > 0 {
			res.Code = codes[0]
		}
		res.State = q.Get(constants.StateQueryParam)
		res.Error = q.Get(constants.ErrorQueryParam)
		res.ErrorDescription = q.Get(constants.ErrorDescriptionQueryParam)
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(constants.AcknowledgePage)); err != nil {
			logger.Warn("failed to write acknowledgement page", zap.Error(err))
		}
	}

	logger.Info("callback request served",
		zap.String("path", res.Path),
		zap.Bool("code_present", res.Code != ""),
	)
	l.result <- res
	// Shutdown waits for this handler to return, so it cannot run inline
	go func() { _ = l.Close() }()
}

func (l *Listener) isCallbackPath(path string) bool {
	return path == "/" || path == "" || path == l.path
}

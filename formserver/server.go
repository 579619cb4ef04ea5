// Package formserver serves a reference implementation of the parrot name form. Running the
// suite against it checks the harness itself, including the real browser driver, without
// depending on a deployed copy of the form.
package formserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/launchdarkly/form-contract-tests/formstate"
	"github.com/launchdarkly/form-contract-tests/framework"
)

const shutdownTimeout = time.Second * 5

//go:embed form.html
var formPage []byte

// AcceptFunc is the server-side email validator.
type AcceptFunc func(email string, gender formstate.Gender) bool

type validateRequest struct {
	Email  string `json:"email"`
	Gender string `json:"gender"`
}

type validateResponse struct {
	Accepted bool `json:"accepted"`
}

// Server is a running reference form.
type Server struct {
	accept   AcceptFunc
	logger   framework.Logger
	server   *http.Server
	baseURL  string
	closing  sync.Once
	closeErr error
}

// Start listens on addr (for instance "localhost:8111", or "localhost:0" for any free port)
// and serves the form until Close is called.
func Start(addr string, accept AcceptFunc, logger framework.Logger) (*Server, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not start reference form listener on %s: %w", addr, err)
	}
	s := &Server{
		accept:  accept,
		logger:  logger,
		baseURL: "http://" + listener.Addr().String(),
	}
	s.server = &http.Server{
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadHeaderTimeout: time.Second * 10,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("Reference form server stopped: %s", err)
		}
	}()
	s.logger.Printf("Reference form listening at %s", s.URL())
	return s, nil
}

// URL returns the address of the form page.
func (s *Server) URL() string {
	return s.baseURL + "/"
}

// Close stops the server, waiting briefly for requests in progress.
func (s *Server) Close() error {
	s.closing.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeErr = s.server.Shutdown(ctx)
	})
	return s.closeErr
}

func (s *Server) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK) // lets a caller check that the listener is up
		return
	}
	switch req.URL.Path {
	case "/":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(formPage)
	case "/validate":
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.validate(w, req)
	default:
		s.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) validate(w http.ResponseWriter, req *http.Request) {
	var body validateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		s.logger.Printf("Invalid validation request: %s", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	gender := formstate.Boy
	if body.Gender == formstate.Girl.String() {
		gender = formstate.Girl
	}
	accepted := s.accept(body.Email, gender)
	s.logger.Printf("Validated %q (%s): accepted=%t", body.Email, gender, accepted)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(validateResponse{Accepted: accepted})
}

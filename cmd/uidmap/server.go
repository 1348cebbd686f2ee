package main

import (
	"context"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/jet/uidmap/identity"
	"github.com/jet/uidmap/log"
	"github.com/jet/uidmap/metrics"
	"github.com/jet/uidmap/sid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Whoami describes the current process
type Whoami struct {
	PID      int              `json:"pid"`
	Elevated *bool            `json:"elevated,omitempty"`
	Account  identity.Account `json:"account"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func whoami(r *identity.Resolver, elevated func() (bool, error), logger log.Logger) (Whoami, error) {
	acct, err := r.CurrentAccount()
	if err != nil {
		return Whoami{}, err
	}
	w := Whoami{
		PID:     os.Getpid(),
		Account: acct,
	}
	if elevated != nil {
		if e, err := elevated(); err != nil {
			logger.Debugf("unable to determine token elevation: %v", err)
		} else {
			w.Elevated = &e
		}
	}
	return w, nil
}

type server struct {
	resolver *identity.Resolver
	metrics  *metrics.Metrics
	logger   log.Logger
	elevated func() (bool, error)
}

func (s *server) routes(metricsEndpoint string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/account", s.instrument("account", s.handleAccount))
	mux.Handle("/whoami", s.instrument("whoami", s.handleWhoami))
	mux.Handle(metricsEndpoint, s.metrics.Handler())
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) instrument(name string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, req)
		s.metrics.OnRequest(name, rec.status, time.Since(start))
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error(errors.Wrapf(err, "encode %T", v), "unable to encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Debugf("unable to write response: %v", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// handleAccount serves GET /account?name=<name> and GET /account?sid=<S-...>
func (s *server) handleAccount(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, http.StatusMethodNotAllowed, errors.Errorf("method %s not allowed", req.Method))
		return
	}
	q := req.URL.Query()
	name, str := q.Get("name"), q.Get("sid")
	var acct identity.Account
	var err error
	switch {
	case name != "" && str != "":
		s.writeError(w, http.StatusBadRequest, errors.New("only one of name or sid may be given"))
		return
	case name != "":
		acct, err = s.resolver.ResolveAccount(name)
	case str != "":
		var parsed sid.SID
		if parsed, err = sid.Parse(str); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		acct, err = s.resolver.AccountForSID(parsed)
	default:
		s.writeError(w, http.StatusBadRequest, errors.New("name or sid is required"))
		return
	}
	if err != nil {
		if errors.Is(err, identity.ErrUnresolved) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.logger.Error(err, "account resolution failed")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, acct)
}

// handleWhoami serves GET /whoami
func (s *server) handleWhoami(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, http.StatusMethodNotAllowed, errors.Errorf("method %s not allowed", req.Method))
		return
	}
	me, err := whoami(s.resolver, s.elevated, s.logger)
	if err != nil {
		s.logger.Error(err, "whoami failed")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, me)
}

// serve runs the http server until ctx is done
func (s *server) serve(ctx context.Context, addr string, metricsEndpoint string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(metricsEndpoint),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Logf("listening on http://%s (metrics on %s)", addr, metricsEndpoint)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return errors.Wrapf(err, "http server on %s", addr)
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return errors.Wrapf(err, "http server shutdown")
	}
	return nil
}

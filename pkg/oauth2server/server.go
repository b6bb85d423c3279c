/*
Copyright 2022-2023 EscherCloud.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package oauth2server wires the oauth2 package's components into a
// runnable chi-routed HTTP server, shared by the oauth2gate-server and
// oauth2gatectl binaries so neither duplicates the wiring.
package oauth2server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/eschercloudai/oauth2gate/pkg/oauth2"
	"github.com/eschercloudai/oauth2gate/pkg/oauth2store/memory"
)

// Options configures Run, in the teacher's serverOptions/AddFlags style.
type Options struct {
	// ListenAddress is the main listener address.
	ListenAddress string

	// ReadTimeout, ReadHeaderTimeout, WriteTimeout bound the main listener.
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration

	// MetricsListenAddress serves /metrics, kept off the main listener.
	MetricsListenAddress string

	// ClientsFile is an INI file of registered clients, in the format
	// memory.ClientStore.SaveClientsFile writes.
	ClientsFile string
}

// NewOptions returns Options populated with the documented defaults.
func NewOptions() *Options {
	return &Options{
		ListenAddress:        ":8080",
		ReadTimeout:          time.Second,
		ReadHeaderTimeout:    time.Second,
		WriteTimeout:         10 * time.Second,
		MetricsListenAddress: ":8081",
	}
}

// AddFlags registers flags with the provided flag set.
func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.ListenAddress, "server-listen-address", o.ListenAddress, "API listener address.")
	f.DurationVar(&o.ReadTimeout, "server-read-timeout", o.ReadTimeout, "How long to wait for the client to send the request body.")
	f.DurationVar(&o.ReadHeaderTimeout, "server-read-header-timeout", o.ReadHeaderTimeout, "How long to wait for the client to send headers.")
	f.DurationVar(&o.WriteTimeout, "server-write-timeout", o.WriteTimeout, "How long to wait for the API to respond to the client.")
	f.StringVar(&o.MetricsListenAddress, "metrics-listen-address", o.MetricsListenAddress, "Metrics listener address.")
	f.StringVar(&o.ClientsFile, "clients-file", o.ClientsFile, "INI file of registered clients, written by oauth2gatectl.")
}

// demoHost is a minimal host application satisfying the consent and
// resource contracts (§4.4 Phase B, §4.6) with no real user interaction:
// it grants every consent request on behalf of the fixed resource owner
// "demo-user", serves a static body to every resource request carrying a
// valid token, and asks for an unauthenticated challenge for every other
// resource request. A real deployment
// passes its own application to dispatcher.Handler instead of using Run.
type demoHost struct{}

func (demoHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if authRequestID, ok := oauth2.AuthRequestIDFromContext(r.Context()); ok {
		w.Header().Set(oauth2.HeaderAuthorization, authRequestID)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"resource": "demo-user"})

		return
	}

	if _, ok := oauth2.ResourceFromContext(r.Context()); ok {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})

		return
	}

	w.Header().Set(oauth2.HeaderNoAccess, "1")
	w.WriteHeader(http.StatusUnauthorized)
}

// Run builds the component tree from config and opts, and serves it until
// ctx is canceled or SIGTERM arrives, whichever comes first. It blocks.
func Run(ctx context.Context, logger logr.Logger, config *oauth2.Config, opts *Options) error {
	clients := memory.NewClientStore()

	if opts.ClientsFile != "" {
		if err := clients.LoadClientsFile(opts.ClientsFile); err != nil {
			return err
		}
	}

	grants := memory.NewGrantStore(config.AuthRequestTTL)
	tokens := memory.NewTokenStore()
	authRequests := memory.NewAuthRequestStore(config.AuthRequestTTL, grants, tokens)

	authorizer := oauth2.NewAuthorizer(config, clients, authRequests, grants, tokens)
	tokenIssuer := oauth2.NewTokenIssuer(config, clients, grants, tokens)
	resourceGate := oauth2.NewResourceGate(config, tokens)
	dispatcher := oauth2.NewDispatcher(config, authorizer, tokenIssuer, resourceGate)

	router := chi.NewRouter()
	router.Use(oauth2.Logger)
	router.Mount("/", dispatcher.Handler(demoHost{}))

	server := &http.Server{
		Addr:              opts.ListenAddress,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		Handler:           router,
	}

	metricsServer := &http.Server{
		Addr:              opts.MetricsListenAddress,
		ReadHeaderTimeout: time.Second,
		Handler:           dispatcher.Metrics(),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM)

	go func() {
		select {
		case <-stop:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "server shutdown error")
		}

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "metrics server shutdown error")
		}
	}()

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "unexpected metrics server error")
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

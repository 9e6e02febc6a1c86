package restmachinery

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dextrolabs/dextro/internal/file"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServerConfig is the interface for the API server's transport-level
// configuration.
type ServerConfig interface {
	// Port returns the port the server listens on.
	Port() int
	// TLSEnabled returns whether the server should attempt to serve TLS.
	TLSEnabled() bool
	// TLSCertPath returns the path to the server's TLS certificate.
	TLSCertPath() string
	// TLSKeyPath returns the path to the server's TLS key.
	TLSKeyPath() string
	// AllowedOrigins returns the origins permitted to make credentialed
	// cross-origin requests.
	AllowedOrigins() []string
}

// Server is an interface for the component that responds to HTTP API requests
type Server interface {
	// ListenAndServe causes the API server to start serving HTTP requests. It
	// will block until an error occurs and will return that error.
	ListenAndServe() error
}

type server struct {
	*BaseEndpoints // The server itself exposes liveness endpoints
	config         ServerConfig
	handler        http.Handler
}

// NewServer returns a REST API server. Cross-origin requests are permitted
// (with credentials) only for origins in the configured allow-list; requests
// bearing no Origin header, e.g. from non-browser clients, pass through
// untouched. Blocked origins are logged.
func NewServer(
	config ServerConfig,
	baseEndpoints *BaseEndpoints,
	endpoints []Endpoints,
) Server {
	router := mux.NewRouter()
	router.StrictSlash(true)

	for _, eps := range endpoints {
		eps.Register(router)
	}

	allowedOrigins := map[string]struct{}{}
	for _, origin := range config.AllowedOrigins() {
		allowedOrigins[origin] = struct{}{}
	}

	s := &server{
		BaseEndpoints: baseEndpoints,
		config:        config,
		handler: cors.New(
			cors.Options{
				AllowOriginFunc: func(origin string) bool {
					if _, ok := allowedOrigins[origin]; ok {
						return true
					}
					log.Printf("blocked cross-origin request from %q", origin)
					return false
				},
				AllowedMethods:   []string{"DELETE", "GET", "POST", "PUT"},
				AllowedHeaders:   []string{"Authorization", "Content-Type"},
				AllowCredentials: true,
			},
		).Handler(router),
	}

	// Liveness probes. No filters applied to these requests.
	router.HandleFunc("/", s.checkLiveness).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.checkHealth).Methods(http.MethodGet)

	return s
}

func (s *server) ListenAndServe() error {
	address := fmt.Sprintf(":%d", s.config.Port())
	if s.config.TLSEnabled() &&
		file.Exists(s.config.TLSCertPath()) &&
		file.Exists(s.config.TLSKeyPath()) {
		log.Printf(
			"API server is listening with TLS enabled on 0.0.0.0:%d",
			s.config.Port(),
		)
		return http.ListenAndServeTLS(
			address,
			s.config.TLSCertPath(),
			s.config.TLSKeyPath(),
			s.handler,
		)
	}
	log.Printf(
		"API server is listening without TLS on 0.0.0.0:%d",
		s.config.Port(),
	)
	return http.ListenAndServe(
		address,
		h2c.NewHandler(s.handler, &http2.Server{}),
	)
}

func (s *server) checkLiveness(w http.ResponseWriter, _ *http.Request) {
	s.ServeHumanRequest(
		HumanRequest{
			W: w,
			EndpointLogic: func() (interface{}, error) {
				return "Auth server is running", nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (s *server) checkHealth(w http.ResponseWriter, r *http.Request) {
	s.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

// Package playground serves translation over HTTP for editor integrations
// and quick experiments.
//
//	POST /translate?namespace=api&format=true
//
// The request body is a YAML or JSON descriptor document. Successful
// responses are wrapped as {"result": {...}}, failures as {"error": {...}}.
package playground

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/typets"
	"github.com/broady/typets/format"
	"github.com/broady/typets/ir"
	"github.com/broady/typets/typetsgen"
)

// DefaultMaxBodySize bounds request documents.
const DefaultMaxBodySize = 1 << 20

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// TranslateParams are the query parameters of POST /translate.
type TranslateParams struct {
	Namespace string `schema:"namespace" validate:"omitempty,max=64"`
	EnumStyle string `schema:"enum_style" validate:"omitempty,oneof=enum const_enum union object"`
	Comments  bool   `schema:"comments"`
	Format    bool   `schema:"format"`
	Indent    int    `schema:"indent" validate:"gte=0,lte=16"`
}

// TranslateResult is the body of a successful translation.
type TranslateResult struct {
	Output      string       `json:"output"`
	Definitions int          `json:"definitions"`
	Warnings    []ir.Warning `json:"warnings,omitempty"`
}

// Server handles playground requests.
type Server struct {
	logger      *slog.Logger
	maxBodySize int64
	plugins     func() ([]typets.Plugin, error)
}

// New creates a Server.
func New() *Server {
	return &Server{maxBodySize: DefaultMaxBodySize}
}

// WithLogger sets the logger for request and translation logging.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	s.logger = logger
	return s
}

// WithMaxBodySize sets the largest accepted document in bytes.
func (s *Server) WithMaxBodySize(n int64) *Server {
	s.maxBodySize = n
	return s
}

// WithPlugins sets a constructor for extra plugins. It runs once per
// request.
func (s *Server) WithPlugins(build func() ([]typets.Plugin, error)) *Server {
	s.plugins = build
	return s
}

func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Handler returns the playground routes wrapped in logging and CORS
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /translate", s.handleTranslate)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return Logging(s.log())(CORS(nil)(mux))
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var params TranslateParams
	if err := schemaDecoder.Decode(&params, r.URL.Query()); err != nil {
		s.writeError(w, typets.Errorf(typets.CodeInvalidArgument, "invalid query: %v", err))
		return
	}
	if err := validate.Struct(params); err != nil {
		s.writeError(w, typets.AsError(err))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, typets.Errorf(typets.CodeInvalidArgument, "document exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, fmt.Errorf("read body: %w", err))
		return
	}
	doc, err := ir.ParseDocument(body)
	if err != nil {
		s.writeError(w, typets.NewError(typets.CodeInvalidArgument, err.Error()))
		return
	}

	g := typetsgen.FromDocument(doc).
		Namespace(params.Namespace).
		EnumStyle(params.EnumStyle).
		WithLogger(s.log())
	if params.Comments {
		g = g.PreserveComments("default")
	}
	if params.Format {
		f, err := format.New(format.Options{IndentSize: params.Indent})
		if err != nil {
			s.writeError(w, typets.AsError(err))
			return
		}
		g = g.Formatted(f)
	}
	if s.plugins != nil {
		extra, err := s.plugins()
		if err != nil {
			s.writeError(w, fmt.Errorf("build plugins: %w", err))
			return
		}
		g = g.WithPlugins(extra...)
	}

	res, err := g.Generate(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, TranslateResult{
		Output:      res.Output,
		Definitions: res.Definitions,
		Warnings:    res.Warnings,
	})
}

func (s *Server) writeResult(w http.ResponseWriter, result TranslateResult) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Result TranslateResult `json:"result"`
	}{result}); err != nil {
		s.log().Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	svcErr := typets.AsError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.Code.HTTPStatus())
	if err := json.NewEncoder(w).Encode(struct {
		Error *typets.Error `json:"error"`
	}{svcErr}); err != nil {
		// Headers already sent, nothing we can do.
		s.log().Error("failed to encode error response",
			slog.String("code", string(svcErr.Code)),
			slog.String("message", svcErr.Message),
			slog.Any("error", err))
	}
}

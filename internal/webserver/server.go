// Package webserver builds the echo instance: serializers, validation,
// error envelopes, access logging and the bearer token gate.
package webserver

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

type Server struct {
	root        *echo.Echo
	public      *echo.Group
	protected   *echo.Group
	addr        string
	uploadLimit string
	uploads     map[string]bool
}

// Options tweak server construction, mostly for tests.
type Options struct {
	DisableMetrics bool
}

func New(cfg *config.AppConfig, idp identity.Provider, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = httpErrorHandler

	if cfg.System.Debug {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.L().Error("panic recovered",
				zap.String("namespace", "web"),
				zap.String("path", c.Path()),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(middleware.RequestID())
	e.Use(accessLog())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if cfg.Web.Metrics && !opts.DisableMetrics {
		p := prometheus.NewPrometheus(cfg.System.Appid, nil)
		p.Use(e)
	}

	s := &Server{
		root:        e,
		addr:        fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		uploadLimit: cfg.Web.UploadLimit,
		uploads:     make(map[string]bool),
	}
	// limits run after Auth so an anonymous request is always a 401
	s.public = e.Group(apiPrefix, s.bodyLimit(cfg.Web.BodyLimit))
	s.protected = e.Group(apiPrefix, Auth(idp), s.bodyLimit(cfg.Web.BodyLimit))
	return s
}

// bodyLimit caps request bodies, except on routes registered with ApiUpload
// which carry their own limit.
func (s *Server) bodyLimit(limit string) echo.MiddlewareFunc {
	if limit == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: limit,
		Skipper: func(c echo.Context) bool {
			return s.uploads[c.Path()]
		},
	})
}

// ServeHTTP lets tests drive the server through httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

// Public registers an unauthenticated route under /api/v1
func (s *Server) Public(method, path string, h echo.HandlerFunc) {
	s.public.Add(method, path, h)
}

func (s *Server) ApiGET(path string, h echo.HandlerFunc) {
	s.protected.GET(path, h)
}

func (s *Server) ApiPOST(path string, h echo.HandlerFunc) {
	s.protected.POST(path, h)
}

// ApiUpload registers a protected multipart POST route limited by
// web.upload_limit instead of web.body_limit.
func (s *Server) ApiUpload(path string, h echo.HandlerFunc) {
	s.uploads[apiPrefix+path] = true
	if s.uploadLimit == "" {
		s.protected.POST(path, h)
		return
	}
	s.protected.POST(path, h, middleware.BodyLimit(s.uploadLimit))
}

func (s *Server) ApiPUT(path string, h echo.HandlerFunc) {
	s.protected.PUT(path, h)
}

func (s *Server) ApiDELETE(path string, h echo.HandlerFunc) {
	s.protected.DELETE(path, h)
}

func (s *Server) Start() error {
	zap.L().Info("web server listening", zap.String("namespace", "web"), zap.String("addr", s.addr))
	err := s.root.Start(s.addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

func accessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			res := c.Response()
			zap.L().Info("http request",
				zap.String("namespace", "web"),
				zap.String("id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)))
			return nil
		}
	}
}

// Validator adapts go-playground/validator to echo.Validator. Field names in
// errors are taken from json tags.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

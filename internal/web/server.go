// Package web exposes the hasher service over a small HTTP API.
package web

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/ironsheep/image-blockhash-mcp/internal/blockhash"
	"github.com/ironsheep/image-blockhash-mcp/internal/config"
	"github.com/ironsheep/image-blockhash-mcp/internal/hasher"
	"github.com/ironsheep/image-blockhash-mcp/internal/imaging"
)

// Server serves block hashes over HTTP.
type Server struct {
	svc *hasher.Service
	cfg *config.Config
	app *fiber.App
}

// New builds the fiber application and its routes.
func New(svc *hasher.Service, cfg *config.Config) *Server {
	if svc == nil {
		svc = hasher.New()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{svc: svc, cfg: cfg}

	app := fiber.New(fiber.Config{
		AppName:               "Image Blockhash API",
		BodyLimit:             imaging.DefaultMaxBytes,
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	if cfg.Debug() {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/hash", s.hashBody)
	api.Get("/hash", s.hashURL)
	api.Get("/distance", s.distance)

	s.app = app
	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	log.Printf("HTTP API listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// params reads the bits and method query parameters, falling back to config.
func (s *Server) params(c *fiber.Ctx) (int, blockhash.Method, error) {
	bits := c.QueryInt("bits", s.cfg.DefaultBits)
	raw := c.Query("method")
	if raw == "" {
		return bits, s.cfg.DefaultMethod, nil
	}
	m, err := blockhash.ParseMethod(raw)
	if err != nil {
		return 0, 0, err
	}
	return bits, m, nil
}

// hashBody hashes the raw request body. The type comes from ?ext=, then the
// Content-Type header, then sniffing; ?name= is checked against the content.
func (s *Server) hashBody(c *fiber.Ctx) error {
	bits, method, err := s.params(c)
	if err != nil {
		return s.fail(c, err)
	}

	ext := c.Query("ext")
	if ext == "" {
		if ct := c.Get(fiber.HeaderContentType); strings.HasPrefix(ct, "image/") {
			ext = ct
		}
	}

	// fasthttp reuses the body buffer after the handler returns.
	data := append([]byte(nil), c.Body()...)
	src := imaging.Source{Buffer: &imaging.Buffer{Data: data, Ext: ext, Name: c.Query("name")}}

	return s.hash(c, src, bits, method)
}

func (s *Server) hashURL(c *fiber.Ctx) error {
	bits, method, err := s.params(c)
	if err != nil {
		return s.fail(c, err)
	}

	u := c.Query("url")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url must be an http or https URL"})
	}

	return s.hash(c, imaging.Source{URL: u}, bits, method)
}

// hash runs the service for src, restricted to ?region= when given.
func (s *Server) hash(c *fiber.Ctx, src imaging.Source, bits int, method blockhash.Method) error {
	var (
		res *hasher.Result
		err error
	)
	if region := c.Query("region"); region != "" {
		res, err = s.svc.HashRegion(c.UserContext(), src, region, bits, method)
	} else {
		res, err = s.svc.HashSource(c.UserContext(), src, bits, method)
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(res)
}

func (s *Server) distance(c *fiber.Ctx) error {
	a, b := c.Query("a"), c.Query("b")
	bits := c.QueryInt("bits", len(a)*4)

	d, err := hasher.Distance(a, b, bits)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"distance":   d,
		"bits":       bits,
		"similarity": 1 - float64(d)/float64(bits),
	})
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if s.cfg.Debug() || status >= fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, blockhash.ErrInvalidBitCount),
		errors.Is(err, blockhash.ErrUnsupportedMethod),
		errors.Is(err, blockhash.ErrInvalidHash),
		errors.Is(err, blockhash.ErrLengthMismatch),
		errors.Is(err, imaging.ErrNoSource),
		errors.Is(err, imaging.ErrInvalidRegion),
		errors.Is(err, imaging.ErrUnsupportedFormat),
		errors.Is(err, imaging.ErrFormatMismatch):
		return fiber.StatusBadRequest
	case errors.Is(err, imaging.ErrDecode),
		errors.Is(err, blockhash.ErrMalformedBuffer):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, imaging.ErrFetch):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v5"
)

// Server exposes read-only container inspection over HTTP.
type Server struct {
	inspector Inspector
}

func NewServer(inspector Inspector) *Server {
	return &Server{inspector: inspector}
}

// Register mounts the API routes.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/health", s.handleHealth)
	e.POST("/v1/inspect", s.handleInspect)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInspect(c *echo.Context) error {
	if s.inspector == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "inspector not configured")
	}
	req, err := decodeJSON[InspectRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Path == "" {
		return writeBadRequest(c, "path is required")
	}

	resp, err := s.inspector.Inspect(c.Request().Context(), req.Path, req.Samsung)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return writeError(c, http.StatusNotFound, "not_found_error", err.Error())
		}
		return writeError(c, http.StatusUnprocessableEntity, "container_error", err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

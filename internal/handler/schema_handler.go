package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/group-events/internal/dto"
	"github.com/Eursukkul/group-events/internal/schema"
)

// SchemaHandler serves the form descriptors clients render for each event type.
type SchemaHandler struct{}

func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

func (h *SchemaHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListSchemas)
	g.GET("/:kind", h.GetSchema)
}

func (h *SchemaHandler) ListSchemas(c echo.Context) error {
	kinds := schema.Kinds()
	resp := make([]dto.SchemaResponse, 0, len(kinds))
	for _, k := range kinds {
		s, err := schema.Lookup(string(k))
		if err != nil {
			return err
		}
		resp = append(resp, dto.ToSchemaResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SchemaHandler) GetSchema(c echo.Context) error {
	s, err := schema.Lookup(c.Param("kind"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToSchemaResponse(s))
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/coursepanel/core/llm"
)

type modelApi struct {
	catalog *llm.Catalog
}

func registerModelAPI(g *echo.Group, deps ServerDeps) {
	api := modelApi{catalog: deps.Catalog}
	g.GET("/models", api.list)
}

type ModelsResponse struct {
	Models    []llm.Descriptor `json:"models"`
	DefaultID string           `json:"default_id"`
}

func (api *modelApi) list(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ModelsResponse{
		Models:    api.catalog.List(),
		DefaultID: api.catalog.DefaultID(),
	})
}

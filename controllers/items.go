package controllers

import (
	"net/http"
	"strings"

	"wardrobeapi/models"

	"github.com/labstack/echo/v4"
)

type ItemsController struct {
	Images *imageResolver
}

type ItemNameIn struct {
	Name string `json:"name"`
}

func (controller ItemsController) ItemRoutes(g *echo.Group) {
	g.GET("", controller.listItems)
	g.GET("/:id", controller.getItem)
	g.PATCH("/:id/name", controller.renameItem)
	g.PATCH("/:id/metadata", controller.updateItemMetadata)
	g.DELETE("/:id", controller.deleteItem)
	g.GET("/:id/outfits", controller.relatedOutfits)
}

// listItems returns the wardrobe items, filtered by ?q= when present.
func (controller ItemsController) listItems(c echo.Context) error {
	store := currentWardrobe(c)
	items := store.Items()
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		items = store.SearchItems(q)
	}
	return c.JSON(http.StatusOK, controller.Images.items(c.Request().Context(), items))
}

func (controller ItemsController) getItem(c echo.Context) error {
	item, err := currentWardrobe(c).Item(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.item(c.Request().Context(), item))
}

func (controller ItemsController) renameItem(c echo.Context) error {
	var in ItemNameIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	ctx := c.Request().Context()
	item, err := currentWardrobe(c).RenameItem(ctx, c.Param("id"), in.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.item(ctx, item))
}

func (controller ItemsController) updateItemMetadata(c echo.Context) error {
	var patch models.ItemMetadataPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	ctx := c.Request().Context()
	item, err := currentWardrobe(c).UpdateItemMetadata(ctx, c.Param("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.item(ctx, item))
}

func (controller ItemsController) deleteItem(c echo.Context) error {
	if err := currentWardrobe(c).DeleteItem(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return message(c, http.StatusOK, "Item deleted")
}

func (controller ItemsController) relatedOutfits(c echo.Context) error {
	views, err := currentWardrobe(c).RelatedOutfits(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.outfits(c.Request().Context(), views))
}

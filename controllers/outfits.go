package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type OutfitsController struct {
	Images *imageResolver
}

// OutfitCreateIn optionally overrides the composer name before submitting.
type OutfitCreateIn struct {
	Name *string `json:"name"`
}

type OutfitNameIn struct {
	Name string `json:"name"`
}

type WearDatesIn struct {
	Dates []time.Time `json:"dates" validate:"required,min=1"`
}

type WearDatesOut struct {
	OutfitID string      `json:"outfitId"`
	Dates    []time.Time `json:"dates"`
}

func (controller OutfitsController) OutfitRoutes(g *echo.Group) {
	g.GET("", controller.listOutfits)
	g.POST("", controller.createOutfit)
	g.GET("/suggested", controller.suggestedOutfits)
	g.GET("/:id", controller.getOutfit)
	g.PATCH("/:id/name", controller.renameOutfit)
	g.DELETE("/:id", controller.deleteOutfit)
	g.GET("/:id/wear", controller.wearDates)
	g.POST("/:id/wear", controller.recordWear)
}

func (controller OutfitsController) listOutfits(c echo.Context) error {
	views := currentWardrobe(c).OutfitViews()
	return c.JSON(http.StatusOK, controller.Images.outfits(c.Request().Context(), views))
}

// createOutfit submits the composer: its name and the selected items.
func (controller OutfitsController) createOutfit(c echo.Context) error {
	var in OutfitCreateIn
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	ctx := c.Request().Context()
	store := currentWardrobe(c)
	if in.Name != nil {
		if err := store.SetNewOutfitName(ctx, *in.Name); err != nil {
			return respondError(c, err)
		}
	}
	view, err := store.CreateOutfit(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, controller.Images.outfit(ctx, view))
}

func (controller OutfitsController) suggestedOutfits(c echo.Context) error {
	views, err := currentWardrobe(c).SuggestedOutfits()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.outfits(c.Request().Context(), views))
}

func (controller OutfitsController) getOutfit(c echo.Context) error {
	view, err := currentWardrobe(c).OutfitView(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.outfit(c.Request().Context(), view))
}

func (controller OutfitsController) renameOutfit(c echo.Context) error {
	var in OutfitNameIn
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	ctx := c.Request().Context()
	view, err := currentWardrobe(c).RenameOutfit(ctx, c.Param("id"), in.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.outfit(ctx, view))
}

func (controller OutfitsController) deleteOutfit(c echo.Context) error {
	if err := currentWardrobe(c).DeleteOutfit(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return message(c, http.StatusOK, "Outfit deleted")
}

// wearDates lists the recorded wear dates; unknown outfits have none.
func (controller OutfitsController) wearDates(c echo.Context) error {
	id := c.Param("id")
	out := WearDatesOut{OutfitID: id, Dates: currentWardrobe(c).WearDates(c.Request().Context(), id)}
	return c.JSON(http.StatusOK, out)
}

// recordWear merges dates into the outfit, creating a placeholder outfit
// when the id is unknown.
func (controller OutfitsController) recordWear(c echo.Context) error {
	var in WearDatesIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	outfit, err := currentWardrobe(c).RecordWear(c.Request().Context(), c.Param("id"), in.Dates)
	if err != nil {
		return respondError(c, err)
	}
	out := WearDatesOut{OutfitID: outfit.ID, Dates: []time.Time{}}
	if outfit.Metadata != nil {
		out.Dates = append(out.Dates, outfit.Metadata.WornDates...)
	}
	return c.JSON(http.StatusOK, out)
}

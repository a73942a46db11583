package controllers

import (
	"net/http"

	"wardrobeapi/models"
	"wardrobeapi/wardrobe"

	"github.com/labstack/echo/v4"
)

// UIController serves the selection, composer and tab state of a wardrobe.
type UIController struct {
	Registry *wardrobe.Registry
	Images   *imageResolver
}

type TabIn struct {
	Tab string `json:"tab" validate:"required"`
}

type SearchIn struct {
	Term string `json:"term"`
}

type ComposerNameIn struct {
	Name string `json:"name"`
}

type StateOut struct {
	UI            wardrobe.UIState `json:"ui"`
	Revision      uint64           `json:"revision"`
	ItemCount     int              `json:"itemCount"`
	OutfitCount   int              `json:"outfitCount"`
	PendingCount  int              `json:"pendingCount"`
	OpenItem      *ItemResponse    `json:"openItem,omitempty"`
	OpenOutfit    *OutfitResponse  `json:"openOutfit,omitempty"`
	AvailableTabs []string         `json:"availableTabs"`
}

func (controller UIController) UIRoutes(g *echo.Group) {
	g.GET("/state", controller.state)
	g.PUT("/ui/tab", controller.setTab)
	g.PUT("/ui/search", controller.setSearch)
	g.POST("/ui/premium", controller.togglePremium)

	g.POST("/selection/items/:id", controller.openItem)
	g.POST("/selection/outfits/:id", controller.openOutfit)
	g.DELETE("/selection", controller.closeDetail)

	g.POST("/composer/items/:id", controller.toggleComposerItem)
	g.PUT("/composer/name", controller.setComposerName)

	g.GET("/notifications", controller.notifications)
}

func (controller UIController) state(c echo.Context) error {
	ctx := c.Request().Context()
	store := currentWardrobe(c)
	snapshot := store.Snapshot()
	out := StateOut{
		UI:            snapshot.UI,
		Revision:      store.Revision(),
		ItemCount:     len(snapshot.Items),
		OutfitCount:   len(snapshot.Outfits),
		PendingCount:  len(snapshot.RecentUploads),
		AvailableTabs: wardrobe.Tabs,
	}
	if item, ok := snapshot.Item(snapshot.UI.OpenItemID); ok {
		resp := controller.Images.item(ctx, item)
		out.OpenItem = &resp
	}
	if outfit, ok := snapshot.Outfit(snapshot.UI.OpenOutfitID); ok {
		resp := controller.Images.outfit(ctx, wardrobe.JoinOutfits([]models.Outfit{outfit}, snapshot.Items)[0])
		out.OpenOutfit = &resp
	}
	return c.JSON(http.StatusOK, out)
}

func (controller UIController) setTab(c echo.Context) error {
	var in TabIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	if err := currentWardrobe(c).SetActiveTab(c.Request().Context(), in.Tab); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"tab": in.Tab})
}

func (controller UIController) setSearch(c echo.Context) error {
	var in SearchIn
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	ctx := c.Request().Context()
	store := currentWardrobe(c)
	if err := store.SetSearchTerm(ctx, in.Term); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.items(ctx, store.SearchItems(in.Term)))
}

func (controller UIController) togglePremium(c echo.Context) error {
	premium, err := currentWardrobe(c).TogglePremium(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"premium": premium})
}

func (controller UIController) openItem(c echo.Context) error {
	if err := currentWardrobe(c).OpenItem(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return controller.state(c)
}

func (controller UIController) openOutfit(c echo.Context) error {
	if err := currentWardrobe(c).OpenOutfit(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return controller.state(c)
}

func (controller UIController) closeDetail(c echo.Context) error {
	if err := currentWardrobe(c).CloseDetail(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	return controller.state(c)
}

func (controller UIController) toggleComposerItem(c echo.Context) error {
	selected, err := currentWardrobe(c).ToggleItemSelection(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if selected == nil {
		selected = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"selectedItemIds": selected})
}

func (controller UIController) setComposerName(c echo.Context) error {
	var in ComposerNameIn
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := currentWardrobe(c).SetNewOutfitName(c.Request().Context(), in.Name); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"name": in.Name})
}

// notifications drains the success and error messages raised since the
// last call.
func (controller UIController) notifications(c echo.Context) error {
	return c.JSON(http.StatusOK, controller.Registry.Notifications(currentUser(c)))
}

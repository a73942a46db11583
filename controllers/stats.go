package controllers

import (
	"net/http"
	"time"

	"wardrobeapi/stats"

	"github.com/labstack/echo/v4"
)

const customRangeDateLayout = "02/01/2006"

type StatsController struct {
	Stats *stats.Service
}

type TimeRangeIn struct {
	Range string `json:"range" validate:"required"`
}

// CustomRangeIn takes both bounds as dd/mm/yyyy.
type CustomRangeIn struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

func (controller StatsController) StatsRoutes(g *echo.Group) {
	g.GET("", controller.summary)
	g.PUT("/range", controller.setRange)
	g.PUT("/custom-range", controller.setCustomRange)
}

func (controller StatsController) summary(c echo.Context) error {
	summary, err := controller.Stats.Summary(c.Request().Context(), currentUser(c), currentWardrobe(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (controller StatsController) setRange(c echo.Context) error {
	var in TimeRangeIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	if err := currentWardrobe(c).SetTimeRange(c.Request().Context(), in.Range); err != nil {
		return respondError(c, err)
	}
	return controller.summary(c)
}

func (controller StatsController) setCustomRange(c echo.Context) error {
	var in CustomRangeIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	start, err := time.Parse(customRangeDateLayout, in.Start)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Start date must be dd/mm/yyyy")
	}
	end, err := time.Parse(customRangeDateLayout, in.End)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "End date must be dd/mm/yyyy")
	}
	if _, err := currentWardrobe(c).SetCustomTimeRange(c.Request().Context(), start, end); err != nil {
		return respondError(c, err)
	}
	return controller.summary(c)
}

package controllers

import (
	"fmt"
	"net/http"

	"wardrobeapi/errs"
	"wardrobeapi/inference"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/tasks"
	"wardrobeapi/wardrobe"

	"github.com/labstack/echo/v4"
)

type UploadsController struct {
	Uploads    *inference.Service
	Dispatcher *tasks.Dispatcher
	Images     *imageResolver
}

type PresignIn struct {
	FileName string `json:"file_name" validate:"required"`
}

type PresignOut struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

// UploadIn describes a photo to classify. Without image_url the photo is
// expected at the bucket key derived from file_name.
type UploadIn struct {
	FileName    string `json:"file_name" validate:"required"`
	ImageURL    string `json:"image_url"`
	Multiple    bool   `json:"multiple"`
	AutoConfirm bool   `json:"auto_confirm"`
}

type PageIn struct {
	Page int `json:"page" validate:"min=0"`
}

type IntakeOut struct {
	Items   []ItemResponse         `json:"items"`
	Groups  []wardrobe.IntakeGroup `json:"groups"`
	Pending []models.RecentUpload  `json:"pending"`
}

type TaskOut struct {
	TaskID string     `json:"task_id"`
	State  string     `json:"state"`
	Error  string     `json:"error,omitempty"`
	Intake *IntakeOut `json:"intake,omitempty"`
}

func (controller UploadsController) UploadRoutes(g *echo.Group) {
	g.POST("/presign", controller.presign)
	g.POST("", controller.upload)
	g.GET("/tasks/:id", controller.taskStatus)

	g.GET("/sessions/:id", controller.getSession)
	g.PATCH("/sessions/:id/items/:index", controller.editCandidate)
	g.PUT("/sessions/:id/page", controller.goToPage)
	g.POST("/sessions/:id/items/:index/confirm", controller.confirmCandidate)
	g.POST("/sessions/:id/confirm", controller.confirmAll)
}

func (controller UploadsController) RecentUploadRoutes(g *echo.Group) {
	g.GET("", controller.listRecentUploads)
	g.POST("/:id/confirm", controller.confirmRecentUpload)
	g.DELETE("/:id", controller.discardRecentUpload)
}

func (controller UploadsController) presign(c echo.Context) error {
	var in PresignIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	objectKey, err := services.ClothesObjectKey(in.FileName)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	url, err := controller.Images.AWSService.PresignLink(c.Request().Context(), controller.Images.BucketName, objectKey)
	if err != nil {
		return respondError(c, fmt.Errorf("presign %s: %w", objectKey, err))
	}
	return c.JSON(http.StatusOK, PresignOut{UploadURL: url, ObjectKey: objectKey})
}

// upload classifies a photo. auto_confirm routes the candidates by
// confidence without a dialog, on the worker when a queue is configured.
// Otherwise a confirmation session is opened.
func (controller UploadsController) upload(c echo.Context) error {
	var in UploadIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	upload := inference.Upload{FileName: in.FileName, ImageURL: in.ImageURL, Multiple: in.Multiple}
	if upload.ImageURL == "" {
		objectKey, err := services.ClothesObjectKey(in.FileName)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		upload.ImageURL = objectKey
	}

	ctx := c.Request().Context()
	userID := currentUser(c)
	switch {
	case in.AutoConfirm && controller.Dispatcher != nil:
		taskID, err := controller.Dispatcher.Enqueue(userID, upload)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusAccepted, TaskOut{TaskID: taskID, State: "pending"})
	case in.AutoConfirm:
		intake, err := controller.Uploads.Classify(ctx, userID, upload)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, controller.intake(c, intake))
	}

	view, err := controller.Uploads.Start(ctx, userID, upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, controller.session(c, view))
}

func (controller UploadsController) taskStatus(c echo.Context) error {
	if controller.Dispatcher == nil {
		return respondError(c, fmt.Errorf("task %s: %w", c.Param("id"), errs.ErrNotFound))
	}
	status, err := controller.Dispatcher.Collect(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := TaskOut{TaskID: status.TaskID, State: status.State, Error: status.Error}
	if status.Intake != nil {
		intake := controller.intake(c, *status.Intake)
		out.Intake = &intake
	}
	return c.JSON(http.StatusOK, out)
}

func (controller UploadsController) getSession(c echo.Context) error {
	view, err := controller.Uploads.Session(currentUser(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.session(c, view))
}

func (controller UploadsController) editCandidate(c echo.Context) error {
	index, err := intParam(c, "index")
	if err != nil {
		return respondError(c, err)
	}
	var patch inference.CandidatePatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	view, err := controller.Uploads.Edit(currentUser(c), c.Param("id"), index, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.session(c, view))
}

func (controller UploadsController) goToPage(c echo.Context) error {
	var in PageIn
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	view, err := controller.Uploads.GoTo(currentUser(c), c.Param("id"), in.Page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.session(c, view))
}

func (controller UploadsController) confirmCandidate(c echo.Context) error {
	index, err := intParam(c, "index")
	if err != nil {
		return respondError(c, err)
	}
	intake, err := controller.Uploads.ConfirmAt(c.Request().Context(), currentUser(c), c.Param("id"), index)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.intake(c, intake))
}

func (controller UploadsController) confirmAll(c echo.Context) error {
	intake, err := controller.Uploads.ConfirmAll(c.Request().Context(), currentUser(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.intake(c, intake))
}

func (controller UploadsController) listRecentUploads(c echo.Context) error {
	uploads := currentWardrobe(c).RecentUploads()
	return c.JSON(http.StatusOK, controller.Images.recentUploads(c.Request().Context(), uploads))
}

func (controller UploadsController) confirmRecentUpload(c echo.Context) error {
	ctx := c.Request().Context()
	item, err := currentWardrobe(c).ConfirmRecentUpload(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, controller.Images.item(ctx, item))
}

func (controller UploadsController) discardRecentUpload(c echo.Context) error {
	if err := currentWardrobe(c).DiscardRecentUpload(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return message(c, http.StatusOK, "Upload discarded")
}

func (controller UploadsController) session(c echo.Context, view inference.SessionView) inference.SessionView {
	view.Candidates = controller.Images.candidates(c.Request().Context(), view.Candidates)
	return view
}

func (controller UploadsController) intake(c echo.Context, intake wardrobe.Intake) IntakeOut {
	ctx := c.Request().Context()
	out := IntakeOut{
		Items:   controller.Images.items(ctx, intake.Items),
		Groups:  intake.Groups,
		Pending: controller.Images.recentUploads(ctx, intake.Pending),
	}
	if out.Groups == nil {
		out.Groups = []wardrobe.IntakeGroup{}
	}
	return out
}

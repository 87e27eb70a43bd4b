package echoapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/calendar"
)

type calendarApi struct {
	svc *calendar.Service
}

func registerCalendarAPI(g *echo.Group, deps *Deps) {
	api := calendarApi{svc: deps.CalendarSvc}

	g.GET("/tasks/:date", api.queryTasks)
	g.POST("/tasks", api.createTask)
	g.PUT("/tasks/:id/complete", api.setTaskCompletion)
	g.DELETE("/tasks/:id", api.destroyTask)

	g.GET("/journal/:date", api.retrieveJournal)
	g.POST("/journal", api.saveJournal)

	g.GET("/month/:year/:month", api.retrieveMonth)
}

// Handlers

func (api *calendarApi) queryTasks(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	tasks, err := api.svc.ListTasksForDate(ctx.Request().Context(), ownerID, pathParam(ctx, "date"))
	if err != nil {
		return errors.Wrap(err, "listing tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *calendarApi) createTask(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	var data calendar.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}

	task, err := api.svc.CreateTask(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, task)
}

func (api *calendarApi) setTaskCompletion(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	var data calendar.SetCompletion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCompletion")
	}
	completed, err := calendar.ValidateCompletion(data.Completed)
	if err != nil {
		return err
	}

	task, err := api.svc.SetTaskCompletion(ctx.Request().Context(), ownerID, ctx.Param("id"), completed)
	if err != nil {
		return errors.Wrap(err, "setting task completion")
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *calendarApi) destroyTask(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTask(ctx.Request().Context(), ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

func (api *calendarApi) retrieveJournal(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	entry, err := api.svc.GetJournal(ctx.Request().Context(), ownerID, pathParam(ctx, "date"))
	if err != nil {
		return errors.Wrap(err, "getting journal")
	}
	if !entry.IsStored() {
		return ctx.JSON(http.StatusOK, newDefaultJournalResponse(entry))
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *calendarApi) saveJournal(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	var data calendar.SaveJournal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveJournal")
	}

	entry, err := api.svc.SaveJournal(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "saving journal")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *calendarApi) retrieveMonth(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	year, yErr := strconv.Atoi(ctx.Param("year"))
	month, mErr := strconv.Atoi(ctx.Param("month"))
	if yErr != nil || mErr != nil {
		return core.NewValidationError(calendar.ErrInvalidRange)
	}

	view, err := api.svc.GetMonth(ctx.Request().Context(), ownerID, year, month)
	if err != nil {
		return errors.Wrap(err, "getting month")
	}
	return ctx.JSON(http.StatusOK, view)
}

type (
	MessageResponse struct {
		Message string `json:"message"`
	}

	// DefaultJournalResponse is returned for a day without a saved journal.
	DefaultJournalResponse struct {
		Feeling      calendar.Feeling `json:"feeling"`
		Productivity int              `json:"productivity"`
		StudyHours   float64          `json:"studyHours"`
		Content      string           `json:"content"`
	}
)

func newDefaultJournalResponse(entry calendar.JournalEntry) DefaultJournalResponse {
	return DefaultJournalResponse{
		Feeling:      entry.Feeling,
		Productivity: entry.Productivity,
		StudyHours:   entry.StudyHours,
		Content:      entry.Content,
	}
}

// pathParam returns the unescaped value of a path parameter.
func pathParam(ctx echo.Context, name string) string {
	value := ctx.Param(name)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core/study"
)

type studyApi struct {
	svc      *study.Service
	validate *validator.Validate
}

func registerStudyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := studyApi{svc: deps.StudySvc, validate: deps.Validate}

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.querySubjects)
	sg.POST("", api.createSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)

	qg := g.Group("/quiz", jwt)
	qg.GET("/history", api.queryQuizHistory)
	qg.POST("/history", api.recordQuiz)

	g.GET("/dashboard", api.dashboard, jwt)
}

// Handlers

func (api *studyApi) querySubjects(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.ListSubjects(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *studyApi) createSubject(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	var data study.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subject, err := api.svc.CreateSubject(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subject)
}

func (api *studyApi) updateSubject(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	var data study.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subject, err := api.svc.UpdateSubject(ctx.Request().Context(), ownerID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, subject)
}

func (api *studyApi) destroySubject(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ownerID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) queryQuizHistory(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	quizzes, err := api.svc.ListQuizHistory(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "listing quiz history")
	}
	return ctx.JSON(http.StatusOK, QuizHistoryResponse{History: quizzes})
}

func (api *studyApi) recordQuiz(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	var data study.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	quiz, err := api.svc.RecordQuiz(ctx.Request().Context(), ownerID, data)
	if err != nil {
		return errors.Wrap(err, "recording quiz")
	}
	return ctx.JSON(http.StatusCreated, quiz)
}

func (api *studyApi) dashboard(ctx echo.Context) error {
	ownerID, err := getOwnerID(ctx)
	if err != nil {
		return err
	}
	dashboard, err := api.svc.Dashboard(ctx.Request().Context(), ownerID)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dashboard)
}

type QuizHistoryResponse struct {
	History []study.QuizResult `json:"history"`
}

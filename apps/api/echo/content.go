package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/notification"
	"github.com/trezcool/classpoll/core/portal"
	"github.com/trezcool/classpoll/core/school"
)

type (
	VoteRequest struct {
		OptionID string `json:"option_id" validate:"required"`
	}

	ProposalRequest struct {
		Topic      string `json:"topic" validate:"required,notblank"`
		Difficulty string `json:"difficulty"`
	}
)

func registerContentAPI(e *echo.Echo, api portalApi, authed []echo.MiddlewareFunc) {
	e.GET("/dashboard", api.dashboard, authed...)
	e.GET("/notifications", api.notifications, authed...)

	ag := e.Group("/announcements", authed...)
	ag.GET("", func(ctx echo.Context) error { return list(ctx, api.svc.Announcements) })
	ag.POST("", func(ctx echo.Context) error { return create(ctx, api.svc.CreateAnnouncement) })
	ag.DELETE("/:id", func(ctx echo.Context) error { return destroy(ctx, api.svc.DeleteAnnouncement) })

	eg := e.Group("/exams", authed...)
	eg.GET("", func(ctx echo.Context) error { return list(ctx, api.svc.Exams) })
	eg.POST("", func(ctx echo.Context) error { return create(ctx, api.svc.CreateExam) })
	eg.DELETE("/:id", func(ctx echo.Context) error { return destroy(ctx, api.svc.DeleteExam) })

	pg := e.Group("/polls", authed...)
	pg.GET("", func(ctx echo.Context) error { return list(ctx, api.svc.Polls) })
	pg.POST("", func(ctx echo.Context) error { return create(ctx, api.svc.CreatePoll) })
	pg.DELETE("/:id", func(ctx echo.Context) error { return destroy(ctx, api.svc.DeletePoll) })
	pg.POST("/proposal", api.proposePoll)
	pg.POST("/:id/vote", func(ctx echo.Context) error { return api.vote(ctx, api.svc.VotePoll) })
	pg.PUT("/:id/vote", func(ctx echo.Context) error { return api.vote(ctx, api.svc.ChangeVote) })

	rg := e.Group("/resources", authed...)
	rg.GET("", func(ctx echo.Context) error { return list(ctx, api.svc.Resources) })
	rg.POST("", func(ctx echo.Context) error { return create(ctx, api.svc.CreateResource) })
	rg.DELETE("/:id", func(ctx echo.Context) error { return destroy(ctx, api.svc.DeleteResource) })
}

func (api portalApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.Dashboard(portal.NowFunc())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api portalApi) notifications(ctx echo.Context) error {
	return list(ctx, func() ([]notification.Notification, error) { return api.svc.Notifications(portal.NowFunc()) })
}

func (api portalApi) vote(ctx echo.Context, do func(pollID, optionID string) error) error {
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if err := do(ctx.Param("id"), data.OptionID); err != nil {
		return err
	}

	polls, err := api.svc.Polls()
	if err != nil {
		return err
	}
	for _, poll := range polls {
		if poll.ID == ctx.Param("id") {
			return ctx.JSON(http.StatusOK, poll)
		}
	}
	return school.ErrPollNotFound
}

// proposePoll answers 204 when no proposal could be made; creating a poll never depends on it.
func (api portalApi) proposePoll(ctx echo.Context) error {
	var data ProposalRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProposalRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	proposal, ok := api.svc.ProposePoll(ctx.Request().Context(), data.Topic, data.Difficulty)
	if !ok {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, proposal)
}

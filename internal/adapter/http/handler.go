package httpadapter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"tilebot/internal/app/ports"
	"tilebot/internal/app/scheduler"
	"tilebot/internal/app/task"
	"tilebot/internal/domain/world"
)

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

// Handler is the control surface: sessions and their task queues. The game
// transport is separate; this API only steers the bot.
type Handler struct {
	Scheduler  *scheduler.Scheduler
	NewSession func() *scheduler.Session
	PathCfg    task.PathFinderConfig
	DrinkCfg   task.DrinkerConfig
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api/sessions")
	api.POST("", h.createSession)
	api.GET("", h.listSessions)
	api.GET("/:id", h.sessionStatus)
	api.GET("/:id/dump", h.sessionDump)
	api.DELETE("/:id", h.removeSession)
	api.POST("/:id/tasks", h.addTask)
	api.DELETE("/:id/tasks/:name", h.cancelTask)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) createSession(_ context.Context, ctx *app.RequestContext) {
	s := h.NewSession()
	h.Scheduler.Add(s)
	ctx.JSON(consts.StatusCreated, map[string]string{"id": s.ID})
}

func (h Handler) listSessions(_ context.Context, ctx *app.RequestContext) {
	sessions := h.Scheduler.Sessions()
	out := make([]scheduler.StatusReport, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Status())
	}
	ctx.JSON(consts.StatusOK, map[string]any{"sessions": out})
}

func (h Handler) sessionStatus(_ context.Context, ctx *app.RequestContext) {
	s, ok := h.Scheduler.Get(string(ctx.Param("id")))
	if !ok {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	ctx.JSON(consts.StatusOK, s.Status())
}

func (h Handler) sessionDump(_ context.Context, ctx *app.RequestContext) {
	s, ok := h.Scheduler.Get(string(ctx.Param("id")))
	if !ok {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	ctx.JSON(consts.StatusOK, s.Dump())
}

func (h Handler) removeSession(c context.Context, ctx *app.RequestContext) {
	if !h.Scheduler.Remove(c, string(ctx.Param("id"))) {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "removed"})
}

type addTaskRequest struct {
	Type string       `json:"type"`
	Dest *world.Coord `json:"dest,omitempty"`
}

const (
	taskTypePathFinder = "path_finder"
	taskTypeExplorer   = "explorer"
	taskTypeDrinker    = "drinker"
)

func (h Handler) addTask(_ context.Context, ctx *app.RequestContext) {
	s, ok := h.Scheduler.Get(string(ctx.Param("id")))
	if !ok {
		writeError(ctx, ports.ErrNotFound)
		return
	}

	var body addTaskRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	var t task.Task
	switch body.Type {
	case taskTypePathFinder:
		if body.Dest == nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "missing_dest", "path_finder requires dest")
			return
		}
		t = task.NewPathFinder(h.PathCfg, *body.Dest)
	case taskTypeExplorer:
		t = task.NewExplorer(h.PathCfg)
	case taskTypeDrinker:
		t = task.NewDrinker(h.DrinkCfg)
	default:
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_task_type", "unknown task type")
		return
	}

	s.AddTask(t)
	ctx.JSON(consts.StatusCreated, map[string]string{"task": t.Name()})
}

func (h Handler) cancelTask(c context.Context, ctx *app.RequestContext) {
	s, ok := h.Scheduler.Get(string(ctx.Param("id")))
	if !ok {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	if !s.CancelTask(c, string(ctx.Param("name"))) {
		writeError(ctx, ports.ErrNotFound)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "canceled"})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

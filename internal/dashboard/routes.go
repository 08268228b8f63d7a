package dashboard

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/tickora/internal/board"
	"github.com/zulandar/tickora/internal/models"
	"github.com/zulandar/tickora/internal/sprint"
	"github.com/zulandar/tickora/internal/standup"
	"github.com/zulandar/tickora/internal/store"
)

// api holds the handlers' dependencies.
type api struct {
	opts StartOpts
	s    *store.Store
}

func newAPI(opts StartOpts) *api {
	return &api{opts: opts, s: opts.Store}
}

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, a *api) {
	r := router.Group("/api")
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/users", a.listUsers)
	r.POST("/users", a.createUser)
	r.GET("/users/:id", a.getUser)
	r.PATCH("/users/:id", a.updateUser)
	r.DELETE("/users/:id", a.deleteUser)

	r.GET("/teams", a.listTeams)
	r.POST("/teams", a.createTeam)
	r.GET("/teams/:id", a.getTeam)
	r.PATCH("/teams/:id", a.updateTeam)
	r.DELETE("/teams/:id", a.deleteTeam)
	r.PUT("/teams/:id/members/:userID", a.addMember)
	r.DELETE("/teams/:id/members/:userID", a.removeMember)

	r.GET("/projects", a.listProjects)
	r.POST("/projects", a.createProject)
	r.GET("/projects/:id", a.getProject)
	r.PATCH("/projects/:id", a.updateProject)
	r.DELETE("/projects/:id", a.deleteProject)
	r.GET("/projects/:id/board", a.getBoard)
	r.GET("/projects/:id/board/events", a.boardEvents)

	r.GET("/sprints", a.listSprints)
	r.POST("/sprints", a.createSprint)
	r.GET("/sprints/:id", a.getSprint)
	r.PATCH("/sprints/:id", a.updateSprint)
	r.DELETE("/sprints/:id", a.deleteSprint)
	r.GET("/sprints/:id/metrics", a.sprintMetrics)

	r.GET("/items", a.listItems)
	r.POST("/items", a.createItem)
	r.GET("/items/:id", a.getItem)
	r.PATCH("/items/:id", a.updateItem)
	r.DELETE("/items/:id", a.deleteItem)
	r.PUT("/items/:id/blockers/:blockerID", a.addBlocker)
	r.DELETE("/items/:id/blockers/:blockerID", a.removeBlocker)

	r.GET("/standups", a.listStandups)
	r.POST("/standups", a.postStandup)
}

// bind decodes the JSON body into req, reporting failures as 400.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid body: %v", err)
		return false
	}
	return true
}

// respond writes v, or the error when err is non-nil.
func respond[T any](c *gin.Context, status int, v T, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, v)
}

func noContent(c *gin.Context, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- users ---

func (a *api) listUsers(c *gin.Context) {
	var filters []store.Filter[models.User]
	if team := c.Query("team"); team != "" {
		filters = append(filters, store.UsersInTeam(team))
	}
	c.JSON(http.StatusOK, nonNil(slices.Collect(a.s.ListUsers(filters...))))
}

func (a *api) createUser(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		fail(c, err)
		return
	}
	u, err := a.s.CreateUser(in)
	respond(c, http.StatusCreated, u, err)
}

func (a *api) getUser(c *gin.Context) {
	u, err := a.s.GetUser(c.Param("id"))
	respond(c, http.StatusOK, u, err)
}

func (a *api) updateUser(c *gin.Context) {
	var req userPatchRequest
	if !bind(c, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		fail(c, err)
		return
	}
	u, err := a.s.UpdateUser(c.Param("id"), p)
	respond(c, http.StatusOK, u, err)
}

func (a *api) deleteUser(c *gin.Context) { noContent(c, a.s.DeleteUser(c.Param("id"))) }

// --- teams ---

func (a *api) listTeams(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(slices.Collect(a.s.ListTeams())))
}

func (a *api) createTeam(c *gin.Context) {
	var req teamRequest
	if !bind(c, &req) {
		return
	}
	t, err := a.s.CreateTeam(store.TeamInput{ID: req.ID, Name: req.Name})
	respond(c, http.StatusCreated, t, err)
}

func (a *api) getTeam(c *gin.Context) {
	t, err := a.s.GetTeam(c.Param("id"))
	respond(c, http.StatusOK, t, err)
}

func (a *api) updateTeam(c *gin.Context) {
	var req teamPatchRequest
	if !bind(c, &req) {
		return
	}
	t, err := a.s.UpdateTeam(c.Param("id"), store.TeamPatch{Name: req.Name})
	respond(c, http.StatusOK, t, err)
}

func (a *api) deleteTeam(c *gin.Context) { noContent(c, a.s.DeleteTeam(c.Param("id"))) }

func (a *api) addMember(c *gin.Context) {
	t, err := a.s.AddTeamMember(c.Param("id"), c.Param("userID"))
	respond(c, http.StatusOK, t, err)
}

func (a *api) removeMember(c *gin.Context) {
	t, err := a.s.RemoveTeamMember(c.Param("id"), c.Param("userID"))
	respond(c, http.StatusOK, t, err)
}

// --- projects ---

func (a *api) listProjects(c *gin.Context) {
	var filters []store.Filter[models.Project]
	if team := c.Query("team"); team != "" {
		filters = append(filters, store.ProjectsOfTeam(team))
	}
	c.JSON(http.StatusOK, nonNil(slices.Collect(a.s.ListProjects(filters...))))
}

func (a *api) createProject(c *gin.Context) {
	var req projectRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		fail(c, err)
		return
	}
	p, err := a.s.CreateProject(in)
	respond(c, http.StatusCreated, p, err)
}

func (a *api) getProject(c *gin.Context) {
	p, err := a.s.GetProject(c.Param("id"))
	respond(c, http.StatusOK, p, err)
}

func (a *api) updateProject(c *gin.Context) {
	var req projectPatchRequest
	if !bind(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		fail(c, err)
		return
	}
	p, err := a.s.UpdateProject(c.Param("id"), patch)
	respond(c, http.StatusOK, p, err)
}

func (a *api) deleteProject(c *gin.Context) { noContent(c, a.s.DeleteProject(c.Param("id"))) }

// boardColumns resolves the columns query parameter, falling back to the
// configured columns.
func (a *api) boardColumns(c *gin.Context) ([]board.ColumnDef, error) {
	statuses := a.opts.Columns
	if raw := c.Query("columns"); raw != "" {
		statuses = nil
		for _, part := range strings.Split(raw, ",") {
			st, err := models.ParseStatus(part)
			if err != nil {
				return nil, store.Invalidf("board", c.Param("id"), "%v", err)
			}
			statuses = append(statuses, st)
		}
	}
	return board.Defs(statuses, a.opts.WIPLimits), nil
}

func (a *api) projectBoard(c *gin.Context) ([]board.Column, error) {
	defs, err := a.boardColumns(c)
	if err != nil {
		return nil, err
	}
	return board.ProjectDefs(a.s, c.Param("id"), defs, board.Options{SprintID: c.Query("sprint")})
}

func (a *api) getBoard(c *gin.Context) {
	cols, err := a.projectBoard(c)
	respond(c, http.StatusOK, gin.H{"project_id": c.Param("id"), "columns": cols}, err)
}

// --- sprints ---

func (a *api) listSprints(c *gin.Context) {
	var filters []store.Filter[models.Sprint]
	if project := c.Query("project"); project != "" {
		filters = append(filters, store.SprintsInProject(project))
	}
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseSprintStatus(raw)
		if err != nil {
			badRequest(c, "%v", err)
			return
		}
		filters = append(filters, store.SprintsWithStatus(st))
	}
	c.JSON(http.StatusOK, nonNil(slices.Collect(a.s.ListSprints(filters...))))
}

func (a *api) createSprint(c *gin.Context) {
	var req sprintRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		fail(c, err)
		return
	}
	sp, err := a.s.CreateSprint(in)
	respond(c, http.StatusCreated, sp, err)
}

func (a *api) getSprint(c *gin.Context) {
	sp, err := a.s.GetSprint(c.Param("id"))
	respond(c, http.StatusOK, sp, err)
}

func (a *api) updateSprint(c *gin.Context) {
	var req sprintPatchRequest
	if !bind(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		fail(c, err)
		return
	}
	sp, err := a.s.UpdateSprint(c.Param("id"), patch)
	respond(c, http.StatusOK, sp, err)
}

func (a *api) deleteSprint(c *gin.Context) { noContent(c, a.s.DeleteSprint(c.Param("id"))) }

type metricsResponse struct {
	sprint.Report
	DaysRemaining int `json:"days_remaining"`
}

func (a *api) sprintMetrics(c *gin.Context) {
	id := c.Param("id")
	var (
		rep sprint.Report
		err error
	)
	if a.opts.Recorder != nil {
		rep, err = a.opts.Recorder.Report(c.Request.Context(), id, a.opts.Clock())
	} else {
		rep, err = sprint.AggregateWithPrevious(a.s, id, nil)
	}
	respond(c, http.StatusOK, metricsResponse{Report: rep, DaysRemaining: rep.DaysRemaining(a.opts.Clock())}, err)
}

// --- work items ---

func (a *api) listItems(c *gin.Context) {
	var filters []store.Filter[models.WorkItem]
	if v := c.Query("project"); v != "" {
		filters = append(filters, store.ItemsInProject(v))
	}
	if v := c.Query("sprint"); v != "" {
		filters = append(filters, store.ItemsInSprint(v))
	}
	if v := c.Query("owner"); v != "" {
		filters = append(filters, store.ItemsOwnedBy(v))
	}
	if v := c.Query("parent"); v != "" {
		filters = append(filters, store.ItemsWithParent(v))
	}
	if raw := c.Query("status"); raw != "" {
		var statuses []models.Status
		for _, part := range strings.Split(raw, ",") {
			st, err := models.ParseStatus(part)
			if err != nil {
				badRequest(c, "%v", err)
				return
			}
			statuses = append(statuses, st)
		}
		filters = append(filters, store.ItemsWithStatus(statuses...))
	}
	if c.Query("blocked") == "true" {
		filters = append(filters, store.ItemsBlocked())
	}
	c.JSON(http.StatusOK, nonNil(slices.Collect(a.s.ListWorkItems(filters...))))
}

func (a *api) createItem(c *gin.Context) {
	var req itemRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		fail(c, err)
		return
	}
	w, err := a.s.CreateWorkItem(in)
	respond(c, http.StatusCreated, w, err)
}

func (a *api) getItem(c *gin.Context) {
	w, err := a.s.GetWorkItem(c.Param("id"))
	respond(c, http.StatusOK, w, err)
}

func (a *api) updateItem(c *gin.Context) {
	var req itemPatchRequest
	if !bind(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		fail(c, err)
		return
	}
	w, err := a.s.UpdateWorkItem(c.Param("id"), patch)
	respond(c, http.StatusOK, w, err)
}

func (a *api) deleteItem(c *gin.Context) { noContent(c, a.s.DeleteWorkItem(c.Param("id"))) }

func (a *api) addBlocker(c *gin.Context) {
	w, err := a.s.AddBlocker(c.Param("id"), c.Param("blockerID"))
	respond(c, http.StatusOK, w, err)
}

func (a *api) removeBlocker(c *gin.Context) {
	w, err := a.s.RemoveBlocker(c.Param("id"), c.Param("blockerID"))
	respond(c, http.StatusOK, w, err)
}

// --- standups ---

func (a *api) postStandup(c *gin.Context) {
	var req standup.Response
	if !bind(c, &req) {
		return
	}
	changed, err := a.opts.Processor.Process(c.Request.Context(), req)
	respond(c, http.StatusOK, gin.H{"changed": nonNil(changed)}, err)
}

// listStandups returns a project's saved responses, oldest first. since
// is optional; without it the whole history is returned.
func (a *api) listStandups(c *gin.Context) {
	if a.opts.StandupLog == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": errorBody{
			Code:    "unavailable",
			Message: "standup history is not enabled",
		}})
		return
	}
	projectID := c.Query("project")
	if projectID == "" {
		badRequest(c, "project is required")
		return
	}
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			fail(c, err)
			return
		}
		since = t
	}
	if _, err := a.s.GetProject(projectID); err != nil {
		fail(c, err)
		return
	}
	responses, err := a.opts.StandupLog.Since(c.Request.Context(), projectID, since)
	respond(c, http.StatusOK, nonNil(responses), err)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

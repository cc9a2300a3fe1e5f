package webhttp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bracketbuddy/internal/catalog"
	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/render"
	"bracketbuddy/internal/scatter"
	"bracketbuddy/internal/session"
	"bracketbuddy/internal/store"
)

const (
	defaultRenderLimit = 50
	maxRenderLimit     = 500
)

// Router holds the chart API handlers.
type Router struct {
	cfg      ServerConfig
	sessions *session.Manager
	catalog  *catalog.Registry
	renders  store.RenderRepository
}

func NewRouter(cfg ServerConfig) *Router {
	return &Router{cfg: cfg, sessions: cfg.Sessions, catalog: cfg.Catalog, renders: cfg.Renders}
}

func (r *Router) Register(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/catalog", r.handleCatalog)
	api.POST("/sessions", r.handleCreateSession)
	api.GET("/sessions", r.handleListSessions)
	api.PUT("/sessions/:id", r.handleRefresh)
	api.DELETE("/sessions/:id", r.handleDeleteSession)
	api.GET("/sessions/:id/chart", r.handleChartPage)
	api.GET("/sessions/:id/chart.png", r.handleChartPNG)
	api.GET("/sessions/:id/chart.json", r.handleChartOption)
	api.GET("/renders", r.handleRenders)
	api.GET("/predictions/:team1/:year1/:team2/:year2", r.handlePredictionProxy)
	router.GET("/ws/sessions/:id", r.handleWebsocket)
}

// chartResponse is returned by session create and refresh.
type chartResponse struct {
	SessionID string            `json:"session_id"`
	Seq       uint64            `json:"seq"`
	Revision  int               `json:"revision"`
	Config    scatter.Config    `json:"config"`
	Points    []scatter.Point   `json:"points"`
	Colors    []string          `json:"colors"`
	Range     scatter.AxisRange `json:"range"`
}

func newChartResponse(id string, out session.Outcome) chartResponse {
	return chartResponse{
		SessionID: id,
		Seq:       out.Seq,
		Revision:  out.Frame.Revision,
		Config:    out.Frame.Config,
		Points:    out.Frame.Series.Points,
		Colors:    out.Frame.Series.Colors,
		Range:     out.Frame.Series.Range,
	}
}

// bindSelection accepts a JSON body or query parameters.
func bindSelection(c *gin.Context) (prediction.Selection, error) {
	var sel prediction.Selection
	if c.Request.ContentLength > 0 && strings.Contains(c.ContentType(), "json") {
		if err := c.ShouldBindJSON(&sel); err != nil {
			return sel, err
		}
		return sel, nil
	}
	if err := c.ShouldBindQuery(&sel); err != nil {
		return sel, err
	}
	return sel, nil
}

func (r *Router) handleCatalog(c *gin.Context) {
	if r.catalog == nil {
		c.JSON(http.StatusOK, catalog.Snapshot{Seasons: []string{}, Teams: []catalog.Team{}})
		return
	}
	snap := r.catalog.Snapshot()
	if season := c.Query("season"); season != "" {
		snap.Teams = snap.TeamsFor(season)
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleCreateSession(c *gin.Context) {
	sel, err := bindSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": session.KindIncomplete})
		return
	}
	if err := sel.Normalize().Complete(); err != nil {
		writeError(c, err)
		return
	}
	s := r.sessions.Create()
	out, err := s.Refresh(c.Request.Context(), sel)
	if err != nil {
		r.sessions.Remove(s.ID)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newChartResponse(s.ID, out))
}

func (r *Router) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": r.sessions.IDs()})
}

func (r *Router) handleRefresh(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	sel, err := bindSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": session.KindIncomplete})
		return
	}
	out, err := s.Refresh(c.Request.Context(), sel)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChartResponse(s.ID, out))
}

func (r *Router) handleDeleteSession(c *gin.Context) {
	if !r.sessions.Remove(c.Param("id")) {
		writeError(c, session.ErrUnknownSession)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleChartPage(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	page, ok := s.ECharts().Page()
	if !ok {
		writeError(c, scatter.ErrNotInitialized)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (r *Router) handleChartOption(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	option, rev, ok := s.ECharts().Option()
	if !ok {
		writeError(c, scatter.ErrNotInitialized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "revision": rev, "option": option})
}

// handleChartPNG renders with go-chart, or with the headless browser when
// engine=snapshot.
func (r *Router) handleChartPNG(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	frame, err := s.Frame()
	if err != nil {
		writeError(c, err)
		return
	}
	var img []byte
	if c.Query("engine") == "snapshot" {
		snap := render.NewSnapshotSurface(c.Request.Context(), r.cfg.Style, r.cfg.SnapshotEnabled, r.cfg.SnapshotTimeout)
		if err := snap.Draw(frame); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "kind": "snapshot"})
			return
		}
		img, _ = snap.Image()
	} else {
		surface := render.NewPNGSurface(r.cfg.Style)
		if err := surface.Draw(frame); err != nil {
			writeError(c, err)
			return
		}
		img, _, _ = surface.Image()
	}
	c.Header("X-Chart-Revision", strconv.Itoa(frame.Revision))
	c.Data(http.StatusOK, "image/png", img)
}

func (r *Router) handleWebsocket(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	// the upgrader has already answered the client on failure
	_ = s.Hub().ServeWS(c.Writer, c.Request)
}

func (r *Router) handleRenders(c *gin.Context) {
	if r.renders == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "render log disabled", "kind": "disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRenderLimit)))
	if limit <= 0 {
		limit = defaultRenderLimit
	}
	if limit > maxRenderLimit {
		limit = maxRenderLimit
	}
	ctx := c.Request.Context()
	var (
		rows any
		err  error
	)
	if id := strings.TrimSpace(c.Query("session")); id != "" {
		rows, err = r.renders.ListBySession(ctx, id, limit)
	} else {
		rows, err = r.renders.ListRecent(ctx, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": session.KindInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"renders": rows, "limit": limit})
}

// handlePredictionProxy relays the upstream payload after checking it parses.
func (r *Router) handlePredictionProxy(c *gin.Context) {
	if r.cfg.Upstream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction proxy disabled", "kind": "disabled"})
		return
	}
	sel := prediction.Selection{
		HomeTeam: c.Param("team1"),
		HomeYear: c.Param("year1"),
		AwayTeam: c.Param("team2"),
		AwayYear: c.Param("year2"),
	}.Normalize()
	raw, err := r.cfg.Upstream.FetchRaw(c.Request.Context(), sel)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := prediction.Parse(raw, r.cfg.ParseOptions); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

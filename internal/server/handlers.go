package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dyike/FinAgentGo/internal/relay"
	"github.com/dyike/FinAgentGo/models"
	"github.com/dyike/FinAgentGo/pkg/app"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

func (s *Server) engine(c *gin.Context) (*app.Engine, bool) {
	e := s.engines.Engine()
	if e == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not ready"})
		return nil, false
	}
	return e, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) serveWS(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}
	e, ok := s.engine(c)
	if !ok {
		return
	}
	rt, err := e.Agent()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "err", err)
		return
	}
	defer conn.Close()

	opts := []relay.Option{relay.WithRegistry(s.registry), relay.WithMetrics(s.metrics)}
	if s.store != nil {
		opts = append(opts, relay.WithRecorder(s.store))
	}
	err = relay.New(rt, opts...).Serve(c.Request.Context(), conn, userID)

	code, text := websocket.CloseNormalClosure, ""
	if errors.Is(err, relay.ErrProtocolViolation) {
		code, text = websocket.CloseProtocolError, "protocol violation"
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func (s *Server) health(c *gin.Context) {
	e := s.engines.Engine()
	if e == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	_, agentErr := e.Agent()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"engine_version": e.Version,
		"quote_provider": e.Fetcher.Provider().Name(),
		"agent_ready":    agentErr == nil,
		"live_sessions":  s.registry.Len(),
	})
}

func (s *Server) movers(c *gin.Context) {
	e, ok := s.engine(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := e.Scraper.ScrapeMarketMovers(c.Request.Context(), c.Query("url"), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": dataflows.ErrorKind(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"movers": records})
}

func (s *Server) commodities(c *gin.Context) {
	e, ok := s.engine(c)
	if !ok {
		return
	}
	names := splitList(c.Query("names"))
	if len(names) == 0 {
		names = dataflows.CommodityNames()
	}
	c.JSON(http.StatusOK, e.Fetcher.FetchCommodities(c.Request.Context(), names))
}

func (s *Server) indices(c *gin.Context) {
	e, ok := s.engine(c)
	if !ok {
		return
	}
	groups, err := dataflows.ParseGroups(splitList(c.Query("group")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"indices": e.Fetcher.FetchWorldIndices(c.Request.Context(), groups...)})
}

func (s *Server) stocks(c *gin.Context) {
	e, ok := s.engine(c)
	if !ok {
		return
	}
	symbols := splitList(c.Query("symbols"))
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stocks": e.Fetcher.LookupStocks(c.Request.Context(), symbols)})
}

func (s *Server) sectors(c *gin.Context) {
	e, ok := s.engine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e.Fetcher.FetchSectorPerformance(c.Request.Context()))
}

func (s *Server) yields(c *gin.Context) {
	e, ok := s.engine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e.Fetcher.FetchTreasuryYields(c.Request.Context()))
}

func (s *Server) listSessions(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store disabled"})
		return
	}
	var params models.HistoryParams
	params.Cursor, _ = strconv.ParseInt(c.Query("cursor"), 10, 64)
	params.Limit, _ = strconv.Atoi(c.Query("limit"))

	page, err := s.store.ListSessions(c.Request.Context(), params)
	if err != nil {
		slog.Error("list sessions", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getSession(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store disabled"})
		return
	}
	ctx := c.Request.Context()
	sess, err := s.store.GetSession(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	msgs, err := s.store.ListMessages(ctx, sess.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "messages": msgs})
}

func (s *Server) liveSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.registry.List()})
}

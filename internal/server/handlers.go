package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/session"
	"github.com/harrison/stackforge/internal/snapshot"
	"github.com/harrison/stackforge/internal/stack"
)

// DefaultExportName is the project name used when export is called without one
const DefaultExportName = "my-app"

type categoryView struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Cardinality string   `json:"cardinality"`
	Group       string   `json:"group"`
	Order       int      `json:"order"`
	AllowEmpty  bool     `json:"allow_empty"`
	Domain      []string `json:"domain"`
	Default     []string `json:"default"`
}

type ruleView struct {
	ID       string          `json:"id"`
	Kind     models.Kind     `json:"kind"`
	Severity models.Severity `json:"severity"`
	Reads    []string        `json:"reads"`
	Writes   string          `json:"writes"`
	Autofix  bool            `json:"autofix"`
}

type sessionView struct {
	ID         string              `json:"id"`
	State      map[string][]string `json:"state"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	ExportedAs string              `json:"exported_as,omitempty"`
	Revision   int64               `json:"revision"`
	Events     []session.Event     `json:"events"`
}

func newSessionView(sess *session.Session) sessionView {
	events := sess.Events
	if events == nil {
		events = []session.Event{}
	}
	return sessionView{
		ID:         sess.ID,
		State:      sess.State.ToMap(),
		CreatedAt:  sess.CreatedAt,
		UpdatedAt:  sess.UpdatedAt,
		ExportedAs: sess.ExportedAs,
		Revision:   sess.Revision,
		Events:     events,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCatalog(c *gin.Context) {
	cats := stack.Categories()
	categories := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		categories = append(categories, categoryView{
			ID:          string(cat.ID),
			Label:       cat.Label,
			Cardinality: cat.Cardinality.String(),
			Group:       string(cat.Group),
			Order:       cat.Order,
			AllowEmpty:  cat.AllowEmpty,
			Domain:      cat.Domain,
			Default:     stack.Normalize(cat.ID, stack.Of(cat.Default...)),
		})
	}

	all := s.engine.Catalog().All()
	rs := make([]ruleView, 0, len(all))
	for _, r := range all {
		reads := make([]string, len(r.Reads))
		for i, id := range r.Reads {
			reads[i] = string(id)
		}
		rs = append(rs, ruleView{
			ID:       r.ID,
			Kind:     r.Kind,
			Severity: r.Severity,
			Reads:    reads,
			Writes:   string(r.Writes),
			Autofix:  r.HasAutofix(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories, "rules": rs})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req validateRequest
	if !bind(c, &req) {
		return
	}
	st, err := req.State.toState()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	violations := s.engine.Validate(st, engine.ValidateOptions{Mode: engine.ParseMode(req.Mode)})
	countViolations(violations)
	c.JSON(http.StatusOK, gin.H{
		"valid":       models.CountHard(violations) == 0,
		"violations":  nonNilViolations(violations),
		"diagnostics": engine.FormatAll(violations),
	})
}

func (s *Server) handleAdjust(c *gin.Context) {
	var req adjustRequest
	if !bind(c, &req) {
		return
	}
	st, err := req.State.toState()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	res, err := s.adjust(st)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":   res.State.ToMap(),
		"changes": nonNilChanges(res.Changes),
		"notes":   notes(res.Changes),
	})
}

func (s *Server) handleOptions(c *gin.Context) {
	var req optionsRequest
	if !bind(c, &req) {
		return
	}
	st, err := req.State.toState()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	id, _ := stack.ParseCategoryID(req.Category)

	c.JSON(http.StatusOK, gin.H{
		"category": id,
		"options":  s.engine.Options(st, id),
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	start := s.defaults
	if req.State != nil {
		st, err := req.State.toState()
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		start = st
	}

	res, err := s.adjust(start)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	sess, err := s.store.Create(c.Request.Context(), res.State)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	sessionsStored.Inc()
	s.log.LogInfo(fmt.Sprintf("session %s created", sess.ID))

	c.JSON(http.StatusCreated, gin.H{
		"session": newSessionView(sess),
		"changes": nonNilChanges(res.Changes),
		"notes":   notes(res.Changes),
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": newSessionView(sess)})
}

// handleSelect applies one click of the configurator. Values the oracle
// reports unavailable are refused, so a successful select always keeps the
// chosen value.
func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if !bind(c, &req) {
		return
	}
	sess, ok := s.loadSession(c)
	if !ok {
		return
	}
	if req.Revision != nil && *req.Revision != sess.Revision {
		conflict(c, sess)
		return
	}
	id, _ := stack.ParseCategoryID(req.Category)
	cat := stack.MustLookup(id)

	if !cat.InDomain(req.Value) {
		fail(c, http.StatusBadRequest, fmt.Errorf("%q is not a valid %s option", req.Value, cat.Label))
		return
	}

	action := session.ActionSelect
	var next stack.State
	if req.Remove {
		action = session.ActionDeselect
		next = stack.Deselect(sess.State, id, req.Value)
	} else {
		if reason := s.engine.DisabledReason(sess.State, id, req.Value); reason != "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": reason, "category": id, "value": req.Value})
			return
		}
		next = stack.Select(sess.State, id, req.Value)
	}

	res, err := s.adjust(next)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	event, err := s.store.UpdateAt(c.Request.Context(), sess.ID, sess.Revision, res.State, session.Event{
		Action:   action,
		Category: string(id),
		Value:    req.Value,
		Changes:  res.Changes,
	})
	if errors.Is(err, session.ErrConflict) {
		if current, getErr := s.store.Get(c.Request.Context(), sess.ID); getErr == nil {
			sess = current
		}
		conflict(c, sess)
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	sess.Revision++
	sess.State = res.State
	sess.Events = append(sess.Events, *event)
	sess.UpdatedAt = event.CreatedAt

	warnings := engine.FormatAll(softViolations(s.engine.Validate(res.State, engine.ValidateOptions{Mode: engine.CollectAll})))
	c.JSON(http.StatusOK, gin.H{
		"session":  newSessionView(sess),
		"changes":  nonNilChanges(res.Changes),
		"notes":    notes(res.Changes),
		"warnings": warnings,
	})
}

// handleExport returns the session as a stackforge.yaml document. The state
// must pass strict validation, exactly as the CLI would require.
func (s *Server) handleExport(c *gin.Context) {
	var q exportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid query: %w", err))
		return
	}
	if err := q.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if q.Name == "" {
		q.Name = DefaultExportName
	}

	sess, ok := s.loadSession(c)
	if !ok {
		return
	}

	if err := s.engine.Check(sess.State, engine.ValidateOptions{Mode: engine.CollectAll}); err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			countViolations(verr.Violations)
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":       err.Error(),
				"violations":  verr.Violations,
				"diagnostics": engine.FormatAll(verr.Violations),
			})
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}

	data, err := snapshot.Encode(snapshot.New(q.Name, sess.State, nil, q.Git, q.Install, s.now()))
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.MarkExported(c.Request.Context(), sess.ID, q.Name); err != nil {
		s.storeError(c, err)
		return
	}
	s.log.LogInfo(fmt.Sprintf("session %s exported as %s", sess.ID, q.Name))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snapshot.FileName))
	c.Data(http.StatusOK, "application/yaml", data)
}

// adjust runs soft mode and logs the rewrites
func (s *Server) adjust(st stack.State) (engine.Result, error) {
	res, err := s.engine.Adjust(st, engine.AdjustOptions{})
	if err != nil {
		s.log.LogError(fmt.Sprintf("adjust failed: %v", err))
		return engine.Result{}, err
	}
	for _, ch := range res.Changes {
		adjustmentsTotal.WithLabelValues(ch.Category).Inc()
		s.log.LogChange(ch)
	}
	return res, nil
}

func (s *Server) loadSession(c *gin.Context) (*session.Session, bool) {
	sess, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	s.log.LogError(fmt.Sprintf("session store: %v", err))
	fail(c, http.StatusInternalServerError, err)
}

// conflict writes a 409 naming the revision the client should reload
func conflict(c *gin.Context, sess *session.Session) {
	c.JSON(http.StatusConflict, gin.H{"error": session.ErrConflict.Error(), "revision": sess.Revision})
}

// bind decodes and validates a JSON body, writing a 400 on failure
func bind(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := req.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err)
		return false
	}
	return true
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func notes(changes []models.Change) []string {
	out := make([]string, len(changes))
	for i, ch := range changes {
		out[i] = engine.FormatChange(ch)
	}
	return out
}

func softViolations(vs []models.Violation) []models.Violation {
	var out []models.Violation
	for _, v := range vs {
		if !v.IsHard() {
			out = append(out, v)
		}
	}
	return out
}

func countViolations(vs []models.Violation) {
	for _, v := range vs {
		violationsTotal.WithLabelValues(v.RuleID, string(v.Severity)).Inc()
	}
}

func nonNilChanges(cs []models.Change) []models.Change {
	if cs == nil {
		return []models.Change{}
	}
	return cs
}

func nonNilViolations(vs []models.Violation) []models.Violation {
	if vs == nil {
		return []models.Violation{}
	}
	return vs
}

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appctx "colisflow/internal/core/context"
	"colisflow/internal/domain/audit"
)

// maxAuditCaptureBytes bounds how much of a request or response body is kept
// for the audit trail.
const maxAuditCaptureBytes = 64 << 10

// AuditSubmitter queues entries; audit.Writer implements it.
type AuditSubmitter interface {
	Submit(e *audit.Entry) bool
}

// AuditConfig controls the audit middleware.
type AuditConfig struct {
	IncludeReads bool
}

// Audit records one entry per request once the response is settled.
// The entry is handed to the submitter and never delays or alters the response.
func Audit(sink AuditSubmitter, cfg AuditConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if audit.ShouldSkip(path) {
			c.Next()
			return
		}
		action := audit.ClassifyAction(c.Request.Method)
		if action == audit.ActionRead && !cfg.IncludeReads {
			c.Next()
			return
		}

		start := time.Now()
		reqBody := captureRequestBody(c)
		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		entity, entityID := audit.ClassifyEntity(path)

		details := map[string]any{
			"body":   audit.SanitizeBody(reqBody),
			"params": requestParams(c),
		}
		outcome := audit.OutcomeSuccess
		if status >= http.StatusBadRequest || len(c.Errors) > 0 {
			outcome = audit.OutcomeError
			details["error"] = audit.SanitizeBody(w.body.Bytes())
		} else {
			details["response"] = audit.SanitizeBody(w.body.Bytes())
		}

		ctx := c.Request.Context()
		userID := appctx.GetUserID(ctx)
		if userID == "" {
			userID = appctx.AnonymousUser
		}

		sink.Submit(&audit.Entry{
			UserID:     userID,
			Action:     action,
			Entity:     entity,
			EntityID:   entityID,
			Method:     c.Request.Method,
			Path:       path,
			StatusCode: status,
			Details:    details,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			DurationMs: time.Since(start).Milliseconds(),
			Outcome:    outcome,
			RequestID:  appctx.GetRequestID(ctx),
		})
	}
}

func captureRequestBody(c *gin.Context) []byte {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	head, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditCaptureBytes))
	if err != nil {
		return nil
	}
	// Hand the handler the full stream: captured head plus whatever remains.
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), c.Request.Body), c.Request.Body}
	return head
}

func requestParams(c *gin.Context) map[string]any {
	params := make(map[string]any, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	for k, v := range c.Request.URL.Query() {
		if len(v) == 1 {
			params[k] = v[0]
		} else {
			params[k] = v
		}
	}
	if len(params) == 0 {
		return nil
	}
	return audit.Sanitize(params).(map[string]any)
}

// captureWriter tees the first maxAuditCaptureBytes of the response.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.keep(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.keep([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *captureWriter) keep(b []byte) {
	if room := maxAuditCaptureBytes - w.body.Len(); room > 0 {
		if len(b) > room {
			b = b[:room]
		}
		w.body.Write(b)
	}
}

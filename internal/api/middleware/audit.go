package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

const (
	maxAuditBody = 16384
	redacted     = "***"
)

// 审计日志中需要脱敏的字段
var sensitiveKeys = []string{"password", "token"}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < maxAuditBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// AuditMiddleware 记录请求与响应, 口令与 token 脱敏, 文件上传与 websocket 握手不记录报文
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if c.IsWebsocket() {
			log.InfoContext(ctx, "Recv WS Handshake",
				log.String("path", c.Request.URL.Path),
				log.String("query", redactQuery(c.Request.URL.Query())),
			)
			startTime := time.Now()
			c.Next()
			log.InfoContext(ctx, "WS Session End", log.Duration("duration", time.Since(startTime)))
			return
		}

		var reqBody []byte
		if c.Request.Body != nil && !strings.HasPrefix(c.ContentType(), "multipart/") {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", redactQuery(c.Request.URL.Query())),
			log.String("req_body", redactBody(reqBody)),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		log.InfoContext(ctx, "Send Response",
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("res_body", redactBody(w.body.Bytes())),
		)
	}
}

func redactQuery(q url.Values) string {
	for _, k := range sensitiveKeys {
		if q.Has(k) {
			q.Set(k, redacted)
		}
	}
	decoded, err := url.QueryUnescape(q.Encode())
	if err != nil {
		return q.Encode()
	}
	return decoded
}

// redactBody 仅处理 JSON 对象, 其余原样返回
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return string(body)
	}
	if !redactMap(obj) {
		return string(body)
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return string(body)
	}
	return string(out)
}

func redactMap(obj map[string]any) bool {
	changed := false
	for k, v := range obj {
		for _, s := range sensitiveKeys {
			if strings.EqualFold(k, s) {
				obj[k] = redacted
				changed = true
			}
		}
		if nested, ok := v.(map[string]any); ok && redactMap(nested) {
			changed = true
		}
	}
	return changed
}

package logger

import (
	log "log/slog"

	"github.com/go-resty/resty/v2"
)

const restyBodyLimit = 1000

// AttachResty 为 resty 客户端挂载请求日志
func AttachResty(client *resty.Client) *resty.Client {
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		req := resp.Request
		body := resp.String()
		if len(body) > restyBodyLimit {
			body = body[:restyBodyLimit] + "...[truncated]"
		}
		fields := []any{
			log.String("method", req.Method),
			log.String("url", req.URL),
			log.Int("status", resp.StatusCode()),
			log.Duration("latency", resp.Time()),
			log.String("res_body", body),
		}
		if resp.IsError() {
			log.WarnContext(req.Context(), "HTTP Outbound Error", fields...)
		} else {
			log.DebugContext(req.Context(), "HTTP Outbound", fields...)
		}
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		log.ErrorContext(req.Context(), "HTTP Outbound Failed",
			log.String("method", req.Method),
			log.String("url", req.URL),
			log.Any("err", err),
		)
	})
	return client
}

package handlers

import (
	"bytes"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "linguaflow/internal/db"
)

// MetricsHandler exposes the service's prometheus metrics. Access is
// gated on a valid API key passed as the api-key query parameter, and
// only the linguaflow namespace is exported.
func MetricsHandler(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		apiKeyValue := string(ctx.QueryArgs().Peek("api-key"))
		if apiKeyValue == "" {
			jsonError(ctx, fasthttp.StatusUnauthorized, "API Key required")
			return
		}

		if _, err := dbpkg.FindUserByAPIKey(db, apiKeyValue); err != nil {
			if errors.Is(err, dbpkg.ErrUserNotFound) {
				jsonError(ctx, fasthttp.StatusForbidden, "Invalid API Key")
				return
			}
			jsonError(ctx, fasthttp.StatusInternalServerError, "Server error")
			return
		}

		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "Failed to gather metrics")
			return
		}

		filtered := make([]*dto.MetricFamily, 0, len(metricFamilies))
		for _, mf := range metricFamilies {
			if strings.HasPrefix(mf.GetName(), "linguaflow_") {
				filtered = append(filtered, mf)
			}
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				jsonError(ctx, fasthttp.StatusInternalServerError, "Failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

package postgres

import (
	"fmt"
	"time"

	"github.com/gpinvoice/invoicegen/internal/logger"
)

type queryTracer struct {
	logger *logger.Logger
	query  string
	params interface{}
	start  time.Time
}

func newQueryTracer(logger *logger.Logger, query string, params interface{}) *queryTracer {
	return &queryTracer{
		logger: logger,
		query:  query,
		params: params,
		start:  time.Now(),
	}
}

func (qt *queryTracer) done(err error) {
	fields := []interface{}{
		"duration_ms", time.Since(qt.start).Milliseconds(),
		"query", qt.query,
		"params", fmt.Sprintf("%+v", qt.params),
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
		return
	}
	qt.logger.Debugw("database query completed", fields...)
}

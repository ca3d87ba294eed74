package analytics

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/influxdb"
	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

// QueryRunner is the slice of api.QueryAPI the engine needs.
type QueryRunner interface {
	Query(ctx context.Context, query string) (*api.QueryTableResult, error)
}

// Engine answers historical aggregation queries with a single windowed-mean
// Flux query per request.
type Engine struct {
	runner QueryRunner
	bucket string
}

// NewEngine returns an engine querying the given bucket.
func NewEngine(runner QueryRunner, bucket string) *Engine {
	return &Engine{runner: runner, bucket: bucket}
}

// windowSpec pairs a Flux range start with an aggregate window size.
type windowSpec struct {
	rangeStart string
	every      string
}

// windowFor maps an interval selector to its query window. Window sizes
// widen strictly with the interval; only the daily range depends on days.
func windowFor(interval string, days int) windowSpec {
	switch interval {
	case "weekly":
		return windowSpec{rangeStart: "-7d", every: "30m"}
	case "monthly":
		return windowSpec{rangeStart: "-30d", every: "2h"}
	case "yearly":
		return windowSpec{rangeStart: "-365d", every: "1d"}
	default:
		return windowSpec{rangeStart: fmt.Sprintf("-%dh", days*24), every: "5m"}
	}
}

// Aggregate runs one windowed-mean query over the reading measurement and
// returns one pivoted row per window per device, oldest first. There is no
// error return: no matching data and query failures both yield an empty
// slice, with the cause logged.
func (e *Engine) Aggregate(ctx context.Context, interval string, days int) []models.AggregatedRow {
	spec := windowFor(interval, days)

	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == %q)
  |> aggregateWindow(every: %s, fn: mean, createEmpty: false)
  |> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")`,
		e.bucket, spec.rangeStart, influxdb.Measurement, spec.every)

	result, err := e.runner.Query(ctx, flux)
	if err != nil {
		log.Printf("analytics: query failed: %v", err)
		return []models.AggregatedRow{}
	}

	rows := make([]models.AggregatedRow, 0)
	for result.Next() {
		rows = append(rows, rowFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		log.Printf("analytics: reading query result: %v", err)
		return []models.AggregatedRow{}
	}

	if len(rows) == 0 {
		log.Printf("analytics: no data for range %s with window %s", spec.rangeStart, spec.every)
		return rows
	}

	// Pivoted results arrive grouped per device; merge to a single
	// oldest-first sequence.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time < rows[j].Time })
	return rows
}

// rowFromRecord shapes one pivoted record, defaulting absent channels to 0
// rather than omitting the row.
func rowFromRecord(record *query.FluxRecord) models.AggregatedRow {
	return models.AggregatedRow{
		Time:         record.Time().UTC().Format(time.RFC3339),
		Device:       asString(record.ValueByKey("device")),
		InputVoltage: asFloat(record.ValueByKey("input_voltage")),
		InputCurrent: asFloat(record.ValueByKey("input_current")),
		OutVoltage1:  asFloat(record.ValueByKey("out_voltage1")),
		OutCurrent1:  asFloat(record.ValueByKey("out_current1")),
		OutVoltage2:  asFloat(record.ValueByKey("out_voltage2")),
		OutCurrent2:  asFloat(record.ValueByKey("out_current2")),
		OutVoltage3:  asFloat(record.ValueByKey("out_voltage3")),
		OutCurrent3:  asFloat(record.ValueByKey("out_current3")),
	}
}

func asString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asFloat(value interface{}) float64 {
	if f, ok := value.(float64); ok {
		return f
	}
	return 0
}

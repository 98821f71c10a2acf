// Package influxdb provides the telemetry history sink for the liaison.
//
// It wraps the official influxdb-client-go v2 library for recording
// robot battery levels and presence transitions as time-series data.
// The status ingest is the only writer; the sink is optional and the
// service runs fully without it.
//
// Writes are non-blocking and batched according to config (batch_size,
// flush_interval). Async write failures surface through SetOnError.
package influxdb

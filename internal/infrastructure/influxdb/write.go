package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteBatteryLevel records a robot's reported battery level.
//
// The write is non-blocking; points are batched and sent asynchronously.
func (c *Client) WriteBatteryLevel(serial string, level int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"robot_battery",
		map[string]string{
			"serial": serial,
		},
		map[string]interface{}{
			"level": level,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePresence records a robot's online/offline transition.
//
// Online is stored as an integer field (1/0) so downstream queries can
// aggregate uptime with sum() and mean().
func (c *Client) WritePresence(serial string, online bool) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if online {
		state = 1
	}

	point := write.NewPoint(
		"robot_presence",
		map[string]string{
			"serial": serial,
		},
		map[string]interface{}{
			"online": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
// Use this when the timestamp is not "now", e.g. replayed status data.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

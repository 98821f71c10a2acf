// Package mqtt manages the liaison's single session to the MQTT broker.
//
// This package provides:
//   - Connection to the broker with indefinite auto-reconnect and backoff
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) presence for offline detection
//   - The topic naming convention shared with the robot firmware
//
// # Architecture
//
// The liaison never talks to robots directly; everything flows through the
// broker. Commands go out on per-robot command topics, robot telemetry
// arrives on per-robot status topics collected by one wildcard
// subscription.
//
//	Web layer -> liaison -> MQTT broker -> robots
//	                     <-             <-
//
// # Delivery semantics
//
// A successful Publish means the message was accepted by the local session
// at the requested QoS. It does not mean a robot received it; end-to-end
// confirmation comes from the robot's subsequent status messages.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.StatusWildcard(), 1,
//	    func(topic string, payload []byte) error {
//	        // hand off to the ingest channel, never block here
//	        return nil
//	    })
//
//	client.Publish(topics.Command("R1"), []byte(`{"action":"forward"}`), 1, false)
package mqtt

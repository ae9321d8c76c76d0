// Package infra contains technical adapters such as the MQTT transport and
// the metrics sinks. These packages depend only on the interfaces defined in
// the core packages; the planning logic never imports them.
package infra

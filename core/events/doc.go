// Package events defines the dispatch events emitted on the event bus.
//
// Available event types:
//   - RequestEvent: request submitted or cancelled
//   - AssignmentEvent: drone committed to a request
//   - InterceptEvent: in-flight drone picked up an extra request
//   - DeliveryEvent: request completed with its energy accounting
//   - DroneStateEvent: drone status change (released, charging, charged)
package events

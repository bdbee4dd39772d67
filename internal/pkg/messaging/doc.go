// Package messaging publishes domain events to a message broker.
//
// Callers depend on Publisher only; the broker (NATS, NSQ, Kafka, Google
// Pub/Sub or none) is chosen by configuration through NewFromDriver.
package messaging

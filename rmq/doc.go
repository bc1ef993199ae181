// Package rmq provides utility code to help the signer connect to a RabbitMQ server:
// it declares the queues the signer uses, and exposes producers, consumers, and reply
// publishers with simplified, higher level semantics. Two queue types are used: a work
// queue from which signing requests are consumed, and a fanout exchange to which audit
// events are published.
package rmq

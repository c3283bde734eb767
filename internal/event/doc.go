/*
Package event provides a pub/sub event system for the action protocol.

Components publish what happened (a command failed, a toast was shown, a
report was produced, the history cursor moved) and transports such as the
SSE and WebSocket endpoints subscribe without depending on the producers.

# Architecture

The bus keeps direct subscriber callbacks so that typed payloads reach
in-process consumers unchanged. Every event is additionally marshalled to
JSON and forwarded to a watermill gochannel topic named after its type;
Messages exposes that subscription for consumers that want ack-based
delivery.

# Event Types

  - command.failed: a command in a batch produced a failed result
  - toast.shown: the host displayed a notification
  - report.created: a batch finished executing
  - history.changed: the undo/redo log or its cursor changed
  - state.changed: the reference host mutated its UI state
  - session.saved: history was persisted for a session

# Usage

	bus := event.NewBus()
	defer bus.Close()

	unsub := bus.Subscribe(event.ReportCreated, func(e event.Event) {
		data := e.Data.(event.ReportCreatedData)
		fmt.Println(data.Report.SuccessCount)
	})
	defer unsub()

Publish delivers asynchronously, one goroutine per subscriber.
PublishSync delivers in the caller's goroutine, which is what the executor
uses so that subscribers observe events in command order.
*/
package event

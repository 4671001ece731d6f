package domain

// Fixed replies the agent produces without consulting the planner.
const (
	// ReadContextPlaceholder is the outbound message of every round that carries read results.
	ReadContextPlaceholder = "Processing read content"

	// NoMessageReply is used when the planner answers without actions and without a message.
	NoMessageReply = "No message returned from API."

	// EchoGreeting prefixes the payload returned by the echo diagnostic.
	EchoGreeting = "Hello, the server got your message: "

	// DefaultMaxRounds bounds the planner loop.
	DefaultMaxRounds = 10

	// DefaultSnapshotRows is how many leading rows are attached to each planner request.
	DefaultSnapshotRows = 5
)

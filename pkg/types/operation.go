package types

const (
	OperationQuery        = "query"
	OperationMutation     = "mutation"
	OperationSubscription = "subscription"
	OperationFragment     = "fragment"
)

// OperationDocument is the text of one embedded GraphQL document.
type OperationDocument struct {
	Text string `json:"-"`
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

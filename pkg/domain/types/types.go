package types

// Version is the build version of actsync. Overridden by -ldflags at release.
var Version = "dev"

// ActionKey identifies an action in the catalog as "owner/name"
type ActionKey string

// NewActionKey builds an ActionKey from owner and name
func NewActionKey(owner, name string) ActionKey {
	return ActionKey(owner + "/" + name)
}

// String returns the key as a plain string
func (k ActionKey) String() string {
	return string(k)
}

const (
	// FunctionKeyHeader carries the API key of the catalog
	FunctionKeyHeader = "x-functions-key"

	// CorrelationIDHeader identifies a request in the catalog's logs
	CorrelationIDHeader = "x-correlation-id"
)

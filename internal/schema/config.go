package schema

// InsertType selects the insert engine strategy. The set is closed and
// dispatched via a small registry rather than runtime reflection.
type InsertType int

const (
	InsertSimple InsertType = iota
	InsertTransactional
	InsertServerScript
)

func (t InsertType) String() string {
	switch t {
	case InsertTransactional:
		return "transactional"
	case InsertServerScript:
		return "server_script"
	default:
		return "simple"
	}
}

// DeleteType selects the delete engine strategy.
type DeleteType int

const (
	DeleteSimple DeleteType = iota
	DeleteServerScript
)

func (t DeleteType) String() string {
	if t == DeleteServerScript {
		return "server_script"
	}
	return "simple"
}

// KeyPolicyKind selects the key-policy canonicalization strategy.
type KeyPolicyKind int

const (
	KeyPolicyJSON KeyPolicyKind = iota
	KeyPolicyHash
)

func (k KeyPolicyKind) String() string {
	if k == KeyPolicyHash {
		return "hash"
	}
	return "json"
}

// ListRecordsType selects the table-iterator strategy.
type ListRecordsType int

const (
	ListRecordsSet ListRecordsType = iota
	ListRecordsScan
	ListRecordsKeys
)

func (l ListRecordsType) String() string {
	switch l {
	case ListRecordsScan:
		return "scan"
	case ListRecordsKeys:
		return "keys"
	default:
		return "set"
	}
}

// JoiningAlgorithm selects the join execution strategy. Only one exists
// today; the type exists so a future algorithm slots into the same
// dispatch point used for the other strategies.
type JoiningAlgorithm int

const (
	NestedLoops JoiningAlgorithm = iota
)

// CoreConfiguration enumerates the strategy selectors chosen once, at Core
// construction.
type CoreConfiguration struct {
	InsertType       InsertType
	DeleteType       DeleteType
	KeyPolicy        KeyPolicyKind
	ListRecordsType  ListRecordsType
	JoiningAlgorithm JoiningAlgorithm
}

// DefaultConfiguration mirrors the reference implementation's defaults:
// atomic server-side scripting for mutation, human-readable JSON keys, and
// set-based iteration.
func DefaultConfiguration() CoreConfiguration {
	return CoreConfiguration{
		InsertType:       InsertServerScript,
		DeleteType:       DeleteServerScript,
		KeyPolicy:        KeyPolicyJSON,
		ListRecordsType:  ListRecordsSet,
		JoiningAlgorithm: NestedLoops,
	}
}

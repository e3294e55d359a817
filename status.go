package ledgersdk

// Status is a server precheck/receipt status code. The concrete integer
// values and their names mirror the wire enum (assumed available via the
// protobuf codec); only the subset referenced by engine control flow is
// named here.
type Status int32

const (
	StatusUnknown                       Status = 0
	StatusOk                            Status = 1
	StatusInvalidTransaction            Status = 2
	StatusBusy                          Status = 10
	StatusPlatformNotActive             Status = 11
	StatusTransactionExpired            Status = 15
	StatusReceiptNotFound               Status = 24
	StatusRecordNotFound                Status = 25
	StatusPlatformTransactionNotCreated Status = 26
	StatusSuccess                       Status = 22
	StatusUnrecognized                  Status = -1
)

// knownStatuses bounds which integers are considered "recognized" by
// ResponseStatusUnrecognized classification (§4.C). In a full catalog this
// set would mirror every value of the wire enum; this module recognizes
// only the statuses it names above, except StatusUnrecognized.
var knownStatuses = map[Status]struct{}{
	StatusUnknown:                       {},
	StatusOk:                            {},
	StatusInvalidTransaction:            {},
	StatusBusy:                          {},
	StatusPlatformNotActive:             {},
	StatusTransactionExpired:            {},
	StatusReceiptNotFound:               {},
	StatusRecordNotFound:                {},
	StatusPlatformTransactionNotCreated: {},
	StatusSuccess:                       {},
}

// IsKnown reports whether s is a recognized status code.
func IsKnown(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminalReceiptStatus reports whether s represents a terminal receipt
// state (neither "still pending" nor "not yet visible").
func IsTerminalReceiptStatus(s Status) bool {
	switch s {
	case StatusUnknown, StatusReceiptNotFound, StatusRecordNotFound, StatusPlatformTransactionNotCreated:
		return false
	default:
		return true
	}
}

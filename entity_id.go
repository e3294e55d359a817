package ledgersdk

// FileID, TopicID, and ScheduleID share AccountID's wire shape
// (shard.realm.num) and textual/checksum forms; the execution core never
// branches on entity kind, so they are aliases rather than distinct
// types. A full SDK surface would give each its own type for compile-time
// safety against e.g. passing a TopicID where a FileID is expected; that
// type-safety layer is outside this module's scope.
type (
	FileID     = AccountID
	TopicID    = AccountID
	ScheduleID = AccountID
)

package types

// Status is a type for the lifecycle status of a persisted resource.
// It is used to soft delete records and exclude them from queries.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}

package models

// SnapshotSchemaVersion is the only snapshot format this build reads or writes.
const SnapshotSchemaVersion = 1

// Snapshot is the import/export document for the whole store.
// Topics and Words are pointers to slices so a missing array can be told
// apart from an empty one during import validation.
type Snapshot struct {
	SchemaVersion int      `json:"schemaVersion"`
	Topics        *[]Topic `json:"topics"`
	Words         *[]Word  `json:"words"`
}

// MergePolicy controls how an imported snapshot combines with existing data.
type MergePolicy string

const (
	// MergeReplace clears the store before writing the snapshot verbatim.
	MergeReplace MergePolicy = "replace"
	// MergeUnion keeps existing records on id collision; imported records
	// only fill gaps.
	MergeUnion MergePolicy = "merge"
)

// Valid reports whether p is a known merge policy.
func (p MergePolicy) Valid() bool {
	return p == MergeReplace || p == MergeUnion
}

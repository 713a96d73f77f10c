package store

// Exposes unexported helpers to the external store_test package.
var (
	RenameType = renameType
	SetOption  = setOption
)

package corr

// DuplicateSet occurs when two correlation sets have the same name.
type DuplicateSet struct {
	Name string
}

func (e *DuplicateSet) Error() string {
	return `correlation set "` + e.Name + `" declared more than once`
}

// EmptySet occurs when a correlation set has no variables.
type EmptySet struct {
	Name string
}

func (e *EmptySet) Error() string {
	return `correlation set "` + e.Name + `" has no variables`
}

// UnknownSet occurs when an operation refers to a set that isn't
// declared.
type UnknownSet struct {
	Operation string
	Name      string
}

func (e *UnknownSet) Error() string {
	return `operation "` + e.Operation + `" refers to unknown correlation set "` + e.Name + `"`
}

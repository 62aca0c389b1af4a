package ids

import "github.com/segmentio/ksuid"

// New returns a sortable, globally-unique identifier.
func New() string {
	return ksuid.New().String()
}

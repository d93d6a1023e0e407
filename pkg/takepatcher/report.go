package takepatcher

import (
	"github.com/hashicorp/go-multierror"
)

// NotPatched describes a target that was left untouched.
type NotPatched struct {
	Target string

	// Subject is the matched take, empty when there was no match.
	Subject string

	Reason string
	Err    error
}

type Report struct {
	// Project is the source project directory.
	Project string

	// Staging is the working copy that got patched.
	Staging string

	// Published is the copy next to Project; empty if publishing
	// was not reached.
	Published string

	Patched    []Patched
	NotPatched []NotPatched
}

func (r *Report) addNotPatched(target, subject, reason string, err error) {
	if reason == "" && err != nil {
		reason = err.Error()
	}
	r.NotPatched = append(r.NotPatched, NotPatched{
		Target:  target,
		Subject: subject,
		Reason:  reason,
		Err:     err,
	})
}

// Err aggregates the failures of every target that was not patched.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, np := range r.NotPatched {
		if np.Err != nil {
			result = multierror.Append(result, np.Err)
		}
	}
	return result.ErrorOrNil()
}

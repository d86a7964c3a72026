package submitter

// Outcome is the terminal state of one submit.
type Outcome int

const (
	// Success means the endpoint answered with a 2xx status.
	Success Outcome = iota
	// Failure covers transport errors, non-2xx statuses and encoding errors alike.
	Failure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Result is the outcome of one submit. Err is set only for Failure.
type Result struct {
	Outcome Outcome
	Err     error
}

// OK reports whether the submit succeeded.
func (r Result) OK() bool { return r.Outcome == Success }

// Description returns the failure text, empty on success.
func (r Result) Description() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func succeeded() Result { return Result{Outcome: Success} }

func failed(err error) Result { return Result{Outcome: Failure, Err: err} }

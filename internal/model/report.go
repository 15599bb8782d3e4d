package model

import "time"

type Stage string

const (
	StageEngine  Stage = "engine"
	StageConnect Stage = "connect"
	StageOK      Stage = "ok"
)

// Report is the outcome of one connectivity check. Stage names the step that
// failed, or StageOK.
type Report struct {
	ID        string        `json:"id"`
	Database  string        `json:"database"`
	URL       string        `json:"url"`
	Driver    string        `json:"driver,omitempty"`
	Stage     Stage         `json:"stage"`
	Error     string        `json:"error,omitempty"`
	SQLState  string        `json:"sqlstate,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`

	EngineErr error `json:"-"`
	ConnErr   error `json:"-"`
}

func (r Report) OK() bool { return r.Stage == StageOK }

func (r Report) Err() error {
	if r.EngineErr != nil {
		return r.EngineErr
	}
	return r.ConnErr
}

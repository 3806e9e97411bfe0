package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is a property of the program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how the program is executed, including the command,
// the working directory, and the start and end time.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []ExecInfo
	now       func() time.Time
}

// NewExecRecorder creates an ExecRecorder that writes into the exec_info
// table.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
		now:       time.Now,
	}

	e.recorder.CreateTable(e.tableName, ExecInfo{})

	return e
}

// Start logs the current execution.
func (e *ExecRecorder) Start() {
	e.entries = append(e.entries,
		ExecInfo{"Start Time", e.now().Format(execTimeFormat)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
}

// End writes the execution info along with the exit time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tableName, entry)
	}

	e.recorder.InsertData(e.tableName,
		ExecInfo{"End Time", e.now().Format(execTimeFormat)})

	e.entries = nil

	e.recorder.Flush()
}

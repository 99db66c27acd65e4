package simnet

// trace.go holds the trace manager, which gathers a record of what happened to
// every message during a run, for post-run analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
)

// TraceOp names the step in the life of a transmission that a trace records
type TraceOp string

const (
	TraceRequest TraceOp = "request" // handed to the network
	TraceCommit  TraceOp = "commit"  // both streams accepted a finish time
	TraceDeliver TraceOp = "deliver" // receiver notified
	TraceFail    TraceOp = "fail"    // sender notified of failure
)

// TraceInst is one serialized trace record
type TraceInst struct {
	TraceTime string `json:"tracetime" yaml:"tracetime"`
	TraceType string `json:"tracetype" yaml:"tracetype"`
	TraceStr  string `json:"tracestr" yaml:"tracestr"`
}

// TraceManager gathers information about an execution of a simulation model.
// Traces are kept per message identity
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// all trace records for this experiment, by message id
	Traces map[string][]TraceInst `json:"traces" yaml:"traces"`

	// message ids in the order their first trace was recorded
	Order []string `json:"order" yaml:"order"`
}

// CreateTraceManager is a constructor. It saves the name of the experiment
// and a flag indicating whether the trace manager is active. An inactive trace
// manager, or a nil one, ignores every record
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.Traces = make(map[string][]TraceInst)
	tm.Order = []string{}
	return tm
}

// Active tells the caller whether the trace manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm != nil && tm.InUse
}

// AddTrace stores a trace record under the message id
func (tm *TraceManager) AddTrace(msgID string, trace TraceInst) {
	if !tm.Active() {
		return
	}
	_, present := tm.Traces[msgID]
	if !present {
		tm.Order = append(tm.Order, msgID)
	}
	tm.Traces[msgID] = append(tm.Traces[msgID], trace)
}

// NumTraces returns the number of trace records gathered
func (tm *TraceManager) NumTraces() int {
	if tm == nil {
		return 0
	}
	cnt := 0
	for _, traces := range tm.Traces {
		cnt += len(traces)
	}
	return cnt
}

// WriteToFile stores the TraceManager to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name
func (tm *TraceManager) WriteToFile(filename string) error {
	if !tm.Active() {
		return nil
	}
	bytes, err := marshalByExt(filename, *tm)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0o644)
}

// TxTrace saves information about one step of a transmission
type TxTrace struct {
	Time     float64 `yaml:"time"`     // time in float64
	Ticks    int64   `yaml:"ticks"`    // ticks variable of time
	Priority int64   `yaml:"priority"` // priority field of time-stamp
	MsgID    string  `yaml:"msgid"`
	Sender   string  `yaml:"sender"`
	Receiver string  `yaml:"receiver"`
	Op       TraceOp `yaml:"op"`
	Bits     float64 `yaml:"bits"`
	Finish   float64 `yaml:"finish,omitempty"` // agreed finish time, on commit
}

func (txt *TxTrace) Serialize() string {
	bytes, merr := yaml.Marshal(*txt)
	if merr != nil {
		panic(merr)
	}
	return string(bytes)
}

// AddTxTrace creates a record of a transmission step and stores it
func AddTxTrace(tm *TraceManager, vrt vrtime.Time, tx Transmission, op TraceOp, finish float64) {
	if !tm.Active() {
		return
	}
	txt := new(TxTrace)
	txt.Time = vrt.Seconds()
	txt.Ticks = vrt.Ticks()
	txt.Priority = vrt.Pri()
	txt.MsgID = messageID(tx.Message)
	txt.Sender = fmt.Sprint(tx.Sender)
	txt.Receiver = fmt.Sprint(tx.Receiver)
	txt.Op = op
	txt.Bits = tx.Message.Size()
	txt.Finish = finish

	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	tm.AddTrace(txt.MsgID, TraceInst{TraceTime: traceTime, TraceType: "transmission", TraceStr: txt.Serialize()})
}

// marshalByExt serializes v to yaml or json, as selected by the extension of filename
func marshalByExt(filename string, v any) ([]byte, error) {
	switch path.Ext(filename) {
	case ".yaml", ".YAML", ".yml":
		return yaml.Marshal(v)
	case ".json", ".JSON":
		return json.MarshalIndent(v, "", "\t")
	}
	return nil, fmt.Errorf("%s: unknown serialization extension", filename)
}

package actor

import (
	"fmt"
	"strings"
	"time"

	"mfcatalog/internal/catalog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Command is the operation a request asks for.
type Command int

const (
	CommandAdd    Command = iota // create; fails if present
	CommandModify                // merge into existing; fails if absent
	CommandUpdate                // create if absent, merge if present
	CommandDelete                // remove; fails if absent
	CommandFind                  // fetch one
	CommandList                  // fetch all matching a name pattern

	CommandOpen   // create tables if absent
	CommandCreate // drop and recreate tables
	CommandDrop   // drop tables if present
	CommandClose  // stop the actor
)

var commandNames = [...]string{
	CommandAdd:    "add",
	CommandModify: "modify",
	CommandUpdate: "update",
	CommandDelete: "delete",
	CommandFind:   "find",
	CommandList:   "list",
	CommandOpen:   "open",
	CommandCreate: "create",
	CommandDrop:   "drop",
	CommandClose:  "close",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("command(%d)", int(c))
	}
	return commandNames[c]
}

// Result is the outcome the actor assigns to a request.
type Result int

const (
	ResultPending Result = iota
	ResultSuccess
	ResultFailure
)

func (r Result) String() string {
	switch r {
	case ResultPending:
		return "pending"
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Kind names the family a request belongs to.
type Kind string

const (
	KindLifecycle Kind = "lifecycle"
	KindDataset   Kind = "dataset"
	KindMember    Kind = "member"
)

// Initiator receives the finished request. ProcessResult runs on the actor
// goroutine and must return quickly.
type Initiator interface {
	ProcessResult(req Request)
}

// InitiatorFunc adapts a function to the Initiator interface.
type InitiatorFunc func(req Request)

func (f InitiatorFunc) ProcessResult(req Request) {
	f(req)
}

// Request is anything the actor accepts: a LifecycleRequest, DatasetRequest
// or MemberRequest.
type Request interface {
	Base() *RequestBase
	Kind() Kind
	String() string
}

// RequestBase holds the fields shared by every request. Result, Modified,
// Catalog, Detail and Finished are set by the actor.
type RequestBase struct {
	ID        uuid.UUID
	Command   Command
	Initiator Initiator

	Result    Result
	Modified  bool
	Catalog   string
	Detail    string
	Submitted time.Time
	Finished  time.Time
}

func newBase(cmd Command, initiator Initiator) RequestBase {
	return RequestBase{
		ID:        uuid.New(),
		Command:   cmd,
		Initiator: initiator,
	}
}

func (r *RequestBase) Base() *RequestBase {
	return r
}

// Succeeded reports whether the request finished with ResultSuccess.
func (r *RequestBase) Succeeded() bool {
	return r.Result == ResultSuccess
}

func (r *RequestBase) succeed() {
	r.Result = ResultSuccess
}

func (r *RequestBase) fail(format string, args ...any) {
	r.Result = ResultFailure
	r.note(format, args...)
}

// note appends a diagnostic line to Detail.
func (r *RequestBase) note(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if r.Detail == "" {
		r.Detail = line
		return
	}
	r.Detail += "; " + line
}

func (r *RequestBase) dump(b *strings.Builder) {
	field(b, "Request", r.ID.String())
	field(b, "Catalog", r.Catalog)
	field(b, "Command", r.Command.String())
	field(b, "Result", r.Result.String())
	field(b, "Modified", fmt.Sprint(r.Modified))
	if !r.Finished.IsZero() && !r.Submitted.IsZero() {
		field(b, "Elapsed", r.Finished.Sub(r.Submitted).String())
	}
}

func (r *RequestBase) dumpDetail(b *strings.Builder) {
	if r.Detail != "" {
		field(b, "Detail", r.Detail)
	}
}

// field writes one dotted-leader line of a request dump.
func field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-14s %s\n", label+" "+strings.Repeat(".", max(1, 12-len(label))), value)
}

// LifecycleRequest opens, recreates, drops or closes the catalog.
type LifecycleRequest struct {
	RequestBase
}

func NewLifecycleRequest(cmd Command, initiator Initiator) *LifecycleRequest {
	return &LifecycleRequest{RequestBase: newBase(cmd, initiator)}
}

func (r *LifecycleRequest) Kind() Kind {
	return KindLifecycle
}

func (r *LifecycleRequest) String() string {
	var b strings.Builder
	r.dump(&b)
	r.dumpDetail(&b)
	return b.String()
}

// DatasetRequest targets one dataset by name, or for CommandList every dataset
// whose name matches the pattern held in DatasetName.
//
// For add, modify and update Dataset carries the incoming attributes. On
// success Dataset holds the catalog's copy of the dataset and Datasets the list
// result.
type DatasetRequest struct {
	RequestBase
	DatasetName string
	Dataset     *catalog.Dataset
	Datasets    []*catalog.Dataset
}

// NewDatasetRequest builds a request carrying a dataset, for add, modify and
// update.
func NewDatasetRequest(cmd Command, dataset *catalog.Dataset, initiator Initiator) *DatasetRequest {
	return &DatasetRequest{
		RequestBase: newBase(cmd, initiator),
		DatasetName: dataset.Name(),
		Dataset:     dataset,
	}
}

// NewDatasetNameRequest builds a request naming a dataset, for delete, find
// and list.
func NewDatasetNameRequest(cmd Command, name string, initiator Initiator) *DatasetRequest {
	return &DatasetRequest{
		RequestBase: newBase(cmd, initiator),
		DatasetName: name,
	}
}

func (r *DatasetRequest) Kind() Kind {
	return KindDataset
}

func (r *DatasetRequest) String() string {
	var b strings.Builder
	r.dump(&b)
	field(&b, "Dataset", r.DatasetName)
	if r.Command == CommandList && r.Result == ResultSuccess {
		field(&b, "Listed", humanize.Comma(int64(len(r.Datasets)))+" datasets")
	}
	r.dumpDetail(&b)
	return b.String()
}

// MemberRequest targets one member of a dataset, or for CommandList every
// member of DatasetName whose name matches the pattern held in MemberName.
//
// On success Member holds the catalog's copy of the member, Dataset the
// parent dataset and Members the list result.
type MemberRequest struct {
	RequestBase
	DatasetName string
	MemberName  string
	Member      *catalog.Member
	Dataset     *catalog.Dataset
	Members     []*catalog.Member
}

// NewMemberRequest builds a request carrying a member, for add, modify and
// update.
func NewMemberRequest(cmd Command, member *catalog.Member, initiator Initiator) *MemberRequest {
	return &MemberRequest{
		RequestBase: newBase(cmd, initiator),
		DatasetName: member.DatasetName(),
		MemberName:  member.Name(),
		Member:      member,
	}
}

// NewMemberNameRequest builds a request naming a member, for delete, find and
// list.
func NewMemberNameRequest(cmd Command, dataset, member string, initiator Initiator) *MemberRequest {
	return &MemberRequest{
		RequestBase: newBase(cmd, initiator),
		DatasetName: dataset,
		MemberName:  member,
	}
}

func (r *MemberRequest) Kind() Kind {
	return KindMember
}

func (r *MemberRequest) String() string {
	var b strings.Builder
	r.dump(&b)
	field(&b, "Dataset", r.DatasetName)
	field(&b, "Member", r.MemberName)
	if r.Command == CommandList && r.Result == ResultSuccess {
		field(&b, "Listed", humanize.Comma(int64(len(r.Members)))+" members")
	}
	r.dumpDetail(&b)
	return b.String()
}

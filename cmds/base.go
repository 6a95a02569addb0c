// Package cmds holds the command objects of the tool. A command is
// validated first and then executed with an output writer. The sub packages
// implement the did, vc, dwn and agent commands on top of the façades.
package cmds

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lainio/err2/try"
)

var ErrInvalid = errors.New("invalid command, check arguments")

type Result interface {
	JSON() ([]byte, error)
}

type Command interface {
	Validate() error
	Exec(w io.Writer) (r Result, err error)
}

// ActionError tells that the action isn't one of the sub command's actions.
type ActionError struct {
	Sub     string
	Action  string
	Allowed []string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("invalid %s action %s: must be one of %s",
		e.Sub, e.Action, strings.Join(e.Allowed, ", "))
}

func (e *ActionError) Is(target error) bool {
	return target == ErrInvalid
}

// ValidateAction returns ActionError if action isn't in allowed.
func ValidateAction(sub, action string, allowed ...string) error {
	for _, a := range allowed {
		if a == action {
			return nil
		}
	}
	return &ActionError{Sub: sub, Action: action, Allowed: allowed}
}

// Fprintln is fmt.Fprintln but it allows writer to be nil. Note! it throws an
// error.
func Fprintln(w io.Writer, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintln(w, a...))
	}
}

// Fprintf is fmt.Fprintf but it allows writer to be nil. Note! it throws an
// error.
func Fprintf(w io.Writer, format string, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintf(w, format, a...))
	}
}

// ParseLoggingArgs feeds the logging startup arguments like
// "-logtostderr=true -v=2" to the flag package which glog uses.
func ParseLoggingArgs(s string) {
	args := make([]string, 1, 12)
	args[0] = os.Args[0]
	args = append(args, strings.Fields(s)...)
	orgArgs := os.Args
	os.Args = args
	flag.Parse()
	os.Args = orgArgs
}

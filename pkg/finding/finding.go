package finding

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waftester/mutaprobe/pkg/mutation"
	"github.com/waftester/mutaprobe/pkg/probe"
)

// Kind is the classifier family that produced a finding.
type Kind string

const (
	// Redirect marks a response that redirects to a test target.
	Redirect Kind = "redirect"
	// Discovery marks a newly reachable resource.
	Discovery Kind = "discovery"
)

// IsValid reports whether k is a recognized kind.
func (k Kind) IsValid() bool {
	return k == Redirect || k == Discovery
}

// Finding is one recorded verdict plus the context needed to report it.
type Finding struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Severity    Severity  `json:"severity"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Plugin      string    `json:"plugin,omitempty"`
	Variable    string    `json:"variable,omitempty"`
	Locus       string    `json:"locus,omitempty"`
	URL         string    `json:"url"`
	Method      string    `json:"method"`
	ResponseID  string    `json:"response_id,omitempty"`
	Evidence    string    `json:"evidence,omitempty"`
	Remediation string    `json:"remediation,omitempty"`
	Time        time.Time `json:"time"`
}

// New builds a finding for mutant m and the response that triggered it.
// resp may be nil.
func New(kind Kind, sev Severity, name, description string, m *mutation.Mutant, resp *probe.Response) Finding {
	f := Finding{
		ID:          uuid.NewString(),
		Kind:        kind,
		Severity:    sev,
		Name:        name,
		Description: description,
		Variable:    m.Variable(),
		Locus:       m.Locus().String(),
		URL:         m.URL(),
		Method:      m.Request().Method(),
		Time:        time.Now(),
	}
	if resp != nil {
		f.ResponseID = resp.ID
	}
	return f
}

// Validate checks the fields every repository requires.
func (f Finding) Validate() error {
	switch {
	case !f.Kind.IsValid():
		return fmt.Errorf("%w: kind %q", ErrInvalidFinding, f.Kind)
	case !f.Severity.IsValid():
		return fmt.Errorf("%w: severity %q", ErrInvalidFinding, f.Severity)
	case f.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidFinding)
	}
	return nil
}

// ByVariable keys findings by the mutated variable name.
func ByVariable(f Finding) string { return f.Variable }

// ByURL keys findings by request URL.
func ByURL(f Finding) string { return f.URL }

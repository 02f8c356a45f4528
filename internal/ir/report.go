package ir

// Severity of a diagnostic.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Test outcomes in a RuleSummary.
const (
	TestPassed  = "passed"
	TestFailed  = "failed"
	TestSkipped = "skipped"
)

// Diagnostic is one compile error or example-test warning.
type Diagnostic struct {
	Severity  string   `json:"severity"`
	Code      string   `json:"code,omitempty"` // E2xx for errors
	Kind      string   `json:"kind"`
	Statement string   `json:"statement"`
	FirstLine int      `json:"first_line"`
	LastLine  int      `json:"last_line"`
	Message   string   `json:"message"`
	Examples  []string `json:"examples,omitempty"`
}

// RuleSummary describes one compiled rule in a report.
type RuleSummary struct {
	Name      string `json:"name"`
	Operator  string `json:"operator"`
	FirstLine int    `json:"first_line"`
	LastLine  int    `json:"last_line"`
	States    int    `json:"states"`
	Positive  string `json:"positive"`
	Negative  string `json:"negative"`
}

// CompileReport is the machine-readable result of a compile.
type CompileReport struct {
	Source      string        `json:"source"`
	Thorough    int           `json:"thorough"`
	Statements  int           `json:"statements"`
	Definitions int           `json:"definitions"`
	Rules       []RuleSummary `json:"rules"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
}

// CheckReport is the result of running a whole rule set against the
// examples: Lost examples are rejected by some rule, Wrong strings are
// accepted by every rule without being examples.
type CheckReport struct {
	Rules    int      `json:"rules"`
	Examples int      `json:"examples"`
	Lost     []string `json:"lost"`
	Wrong    []string `json:"wrong"`
}

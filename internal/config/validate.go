package config

import "fmt"

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity Severity
	Field    string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// HasErrors reports whether any issue is fatal.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	validKinds    = map[string]bool{"sqlite": true, "postgres": true}
	validLevels   = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats  = map[string]bool{"text": true, "json": true}
	validBackends = map[string]bool{"none": true, "pushgateway": true}
)

// Validate checks the assembled configuration and returns every finding at
// once rather than stopping at the first.
func (c Config) Validate() []Issue {
	var issues []Issue
	add := func(sev Severity, field, msg string) {
		issues = append(issues, Issue{Severity: sev, Field: field, Message: msg})
	}

	if !validKinds[c.DatabaseKind] {
		add(SeverityError, "db", fmt.Sprintf("unknown backend %q, want sqlite or postgres", c.DatabaseKind))
	}
	if c.DatabaseDSN == "" {
		add(SeverityError, "dsn", "must not be empty")
	}
	if c.UsersCSV == "" {
		add(SeverityError, "users-csv", "must not be empty")
	}
	if c.TransactionsCSV == "" {
		add(SeverityError, "transactions-csv", "must not be empty")
	}
	if !c.IngestOnly && c.ListenAddr == "" {
		add(SeverityError, "addr", "must not be empty")
	}
	if !validLevels[c.LogLevel] {
		add(SeverityError, "log-level", fmt.Sprintf("unknown level %q", c.LogLevel))
	}
	if !validFormats[c.LogFormat] {
		add(SeverityError, "log-format", fmt.Sprintf("unknown format %q", c.LogFormat))
	}
	if !validBackends[c.MetricsBackend] {
		add(SeverityError, "metrics", fmt.Sprintf("unknown backend %q, want none or pushgateway", c.MetricsBackend))
	}
	if c.MetricsBackend == "pushgateway" && c.PushgatewayURL == "" {
		add(SeverityError, "pushgateway-url", "required when metrics backend is pushgateway")
	}
	if c.RejectDir == "" {
		add(SeverityWarning, "reject-dir", "empty: rejected rows will not be written to audit files")
	}
	return issues
}

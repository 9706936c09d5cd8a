package logger

import "strings"

// RedactEmail masks a customer contact address before it reaches the logs.
// Imported exports and helpdesk payloads carry end-user emails; log lines
// keep just enough to correlate ("jo***@example.com"). Local parts of two
// characters or fewer are masked entirely.
func RedactEmail(email string) string {
	name, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(name) > 2 {
		return name[:2] + "***@" + domain
	}
	return "***@" + domain
}

package ingest

import "strings"

// TopicDefault is the fallback category for sessions matching no rule.
const TopicDefault = "Formazione Generale"

// topicRules is the classification cascade for training sessions. Order is
// load-bearing: the first rule whose keywords appear in the text wins, so a
// note mentioning both the PBX and a marketing template is a PBX session.
var topicRules = []struct {
	Topic    string
	Keywords []string
}{
	{"Centralino / Voice Pro", []string{"voice pro", "centralino"}},
	{"WhatsApp & API", []string{"api", "whatsapp", "wa", "meta"}},
	{"Sviluppo App Clienti", []string{"app clienti", "app lite", "build", "store", "apple", "google"}},
	{"Gestionale & Magazzino", []string{"magazzino", "mansionario", "mansionissimo", "attività", "utenti"}},
	{"Marketing & Fidelity", []string{"fidelity", "marketing", "template", "portfolio", "promo", "referral", "winback", "qr code"}},
	{"Assistenza Pura", []string{"bug", "lavori", "assistenza", "ticket"}},
}

// Topics returns every category the classifier can emit, cascade order
// first, default last.
func Topics() []string {
	out := make([]string, 0, len(topicRules)+1)
	for _, r := range topicRules {
		out = append(out, r.Topic)
	}
	return append(out, TopicDefault)
}

// ClassifyTopic assigns exactly one topic to a session from its title and
// free-text description. Deterministic keyword containment, no scoring.
func ClassifyTopic(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, rule := range topicRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Topic
			}
		}
	}
	return TopicDefault
}

package ingest

import "testing"

func TestClassifyTopic(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"telephony keyword", "Configurazione Voice Pro", "", "Centralino / Voice Pro"},
		{"whatsapp keyword", "Onboarding", "collegamento WhatsApp con Meta", "WhatsApp & API"},
		{"app build", "Rilascio build su store", "", "Sviluppo App Clienti"},
		{"warehouse", "Gestione magazzino e utenti", "", "Gestionale & Magazzino"},
		{"marketing", "Campagna fidelity", "template promo natale", "Marketing & Fidelity"},
		{"support", "Segnalazione bug", "apertura ticket", "Assistenza Pura"},
		{"no keyword", "Sessione introduttiva", "panoramica generale", TopicDefault},
		{"empty", "", "", TopicDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTopic(tt.title, tt.description)
			if got != tt.want {
				t.Errorf("ClassifyTopic(%q, %q) = %q, want %q", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestClassifyTopicPriority(t *testing.T) {
	// A session touching both the PBX and marketing templates belongs to the
	// PBX category: earlier rules outrank later ones.
	got := ClassifyTopic("Centralino", "personalizzazione template marketing")
	if got != "Centralino / Voice Pro" {
		t.Errorf("mixed-keyword title classified as %q", got)
	}
}

func TestTopicsOrder(t *testing.T) {
	topics := Topics()
	if len(topics) != len(topicRules)+1 {
		t.Fatalf("Topics() returned %d entries", len(topics))
	}
	if topics[len(topics)-1] != TopicDefault {
		t.Errorf("last topic = %q, want default", topics[len(topics)-1])
	}
}

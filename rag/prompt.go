package rag

import (
	"fmt"
	"sort"
	"strings"
)

// SystemPrompt is the instruction block for the generation collaborator.
// Generators are expected to pass it verbatim as the system message.
const SystemPrompt = `Du bist ein Experte für Betriebsanlagengenehmigungen in Wien, spezialisiert auf Gastronomiebetriebe.

Deine Aufgabe:
- Beantworte Fragen zu Genehmigungen, Gesetzen und Verordnungen
- Nutze NUR die bereitgestellten Gesetzestexte als Grundlage
- Gib präzise, faktische Antworten
- Nenne IMMER die Quellenangaben (§-Paragraphen, Gesetze)
- Strukturiere deine Antwort klar und verständlich

Wichtige Regeln:
1. KEINE Rechtsberatung - nur Informationen
2. KEINE Garantien oder Versprechen
3. Bei Unsicherheit: Empfehle Rücksprache mit Behörde/Anwalt
4. Verwende einfache, verständliche Sprache
5. Gib konkrete, umsetzbare Informationen

Format deiner Antwort:
1. Direkte Antwort auf die Frage
2. Notwendige Schritte/Dokumente (wenn relevant)
3. Quellenangaben (§-Paragraphen)
4. Hinweis auf Besonderheiten (wenn relevant)`

// BuildGroundingText renders the retrieved documents as a numbered
// source block for the generation prompt.
func BuildGroundingText(docs []Document) string {
	if len(docs) == 0 {
		return "Keine relevanten Gesetzestexte gefunden."
	}

	var b strings.Builder
	b.WriteString("GESETZESTEXTE UND VERORDNUNGEN:\n\n")
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		b.WriteString(fmt.Sprintf("[Quelle %d] %s", i+1, doc.Source))
		if doc.Section != "" {
			b.WriteString(" - " + doc.Section)
		}
		if doc.Page > 0 {
			b.WriteString(fmt.Sprintf(" (Seite %d)", doc.Page))
		}
		b.WriteString(fmt.Sprintf(" [Relevanz: %.1f%%]\n", doc.Score*100))
		b.WriteString(doc.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// BuildUserMessage assembles the full user message: business context,
// grounding text, and the question itself.
func BuildUserMessage(query string, docs []Document, qctx Context) string {
	var b strings.Builder

	if len(qctx) > 0 {
		b.WriteString("KONTEXT ZUM BETRIEB:\n")
		keys := make([]string, 0, len(qctx))
		for k := range qctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("- %s: %v\n", k, qctx[k]))
		}
		b.WriteString("\n")
	}

	b.WriteString(BuildGroundingText(docs))
	b.WriteString("\n\n---\n\nFRAGE DES NUTZERS:\n")
	b.WriteString(query)
	b.WriteString("\n\nBitte beantworte diese Frage basierend auf den oben genannten Gesetzestexten.")

	return b.String()
}

// Package labextract pulls laboratory test results out of clinical report
// text. Two strategies run side by side: a deterministic regex pass over
// common report layouts, and a retrieval-augmented pass that grounds an LLM
// on a curated knowledge base of lab tests. Results from both are validated,
// deduplicated, and reconciled with the regex pass taking precedence.
package labextract

import "fmt"

// Document is one knowledge-base entry describing a laboratory test. Text is
// the retrievable passage; the remaining fields ride along as metadata for
// prompt construction.
type Document struct {
	ID          string
	Test        string
	Unit        string
	NormalRange string
	Description string
	Text        string
}

type kbEntry struct {
	test        string
	unit        string
	normalRange string
	description string
}

var kbEntries = []kbEntry{
	{"Glucose", "mg/dL", "70-110", "Blood glucose measures the amount of sugar in the blood and screens for diabetes"},
	{"WBC", "10^3/uL", "4-10", "White blood cell count reflects immune activity and rises with infection or inflammation"},
	{"Hemoglobin", "g/dL", "12-16", "Hemoglobin carries oxygen in red blood cells and falls in anemia"},
	{"Creatinine", "mg/dL", "0.6-1.3", "Serum creatinine gauges kidney filtration and rises with renal impairment"},
	{"Platelets", "10^3/uL", "150-400", "Platelet count measures clotting capacity and drops in thrombocytopenia"},
	{"ALT", "U/L", "7-56", "Alanine aminotransferase is a liver enzyme elevated in hepatocellular injury"},
	{"AST", "U/L", "10-40", "Aspartate aminotransferase is a liver enzyme elevated in liver and muscle damage"},
	{"BUN", "mg/dL", "7-20", "Blood urea nitrogen reflects kidney function and protein metabolism"},
	{"Cholesterol", "mg/dL", "<200", "Total cholesterol assesses cardiovascular risk"},
	{"Triglycerides", "mg/dL", "<150", "Triglycerides measure circulating fat and contribute to cardiovascular risk"},
}

// KnowledgeBase returns the built-in lab-test corpus. Each call returns a
// fresh slice; the documents themselves are immutable by convention.
func KnowledgeBase() []Document {
	docs := make([]Document, len(kbEntries))
	for i, e := range kbEntries {
		docs[i] = Document{
			ID:          fmt.Sprintf("lab-%03d", i+1),
			Test:        e.test,
			Unit:        e.unit,
			NormalRange: e.normalRange,
			Description: e.description,
			Text:        fmt.Sprintf("%s: %s. Unit: %s. Normal range: %s", e.test, e.description, e.unit, e.normalRange),
		}
	}
	return docs
}

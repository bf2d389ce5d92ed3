package extract

import "testing"

func TestDocumentCandidate(t *testing.T) {
	tests := []struct {
		name      string
		firstPage string
		window    string
		wantKind  Kind
		wantValue string
	}{
		{
			name:      "doi on page one",
			firstPage: "A Title Line Long Enough To Qualify Here\ndoi:10.1038/nature12373",
			window:    "A Title Line Long Enough To Qualify Here\ndoi:10.1038/nature12373",
			wantKind:  KindDOI,
			wantValue: "10.1038/nature12373",
		},
		{
			name:      "doi on page two still found",
			firstPage: "short\n2024\n",
			window:    "short\n2024\n\nciting 10.1126/science.1260419 among others",
			wantKind:  KindDOI,
			wantValue: "10.1126/science.1260419",
		},
		{
			name:      "title guess comes from page one only",
			firstPage: "short\n2024\n",
			window:    "short\n2024\n\nA Long Body Text Line That Lives Only On Page Two Of The Document",
			wantKind:  KindNone,
		},
		{
			name:      "page one title beats page two text",
			firstPage: "Metadata Resolution For Research Papers\n",
			window:    "Metadata Resolution For Research Papers\n\nAn Even Longer Body Sentence Continuing Onto The Second Page Here",
			wantKind:  KindTitleGuess,
			wantValue: "Metadata Resolution For Research Papers",
		},
		{
			name:      "nothing usable",
			firstPage: "short\n",
			window:    "short\n",
			wantKind:  KindNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Path: "/papers/x.pdf", FirstPage: tt.firstPage, Window: tt.window}
			c := doc.Candidate()
			if c.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", c.Kind, tt.wantKind)
			}
			if c.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", c.Value, tt.wantValue)
			}
		})
	}
}

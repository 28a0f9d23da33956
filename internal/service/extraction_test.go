package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

func TestNormalizeAccountHint(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{
			"full IBAN kept with spaces removed",
			"PT50 0002 0123 1234 5678 9015 4",
			"PT50000201231234567890154",
		},
		{
			"partial IBAN reduced to prefix plus trailing digits",
			"PT50 **** 1234",
			"PT50501234",
		},
		{
			"masked account reduced",
			"conta ****5678 9012",
			"CONT56789012",
		},
		{
			"long masked tail keeps at most eight digits",
			"PT50 1111 2222 3333 ****",
			"PT5022223333",
		},
		{
			"generic hint truncated",
			"conta ordenado do banco principal lisboa",
			"CONTAORDENADODOBANCOPRIN",
		},
		{
			"truncation backs off to a rune boundary",
			"conta ordem banco xyzabcdeà xyz",
			"CONTAORDEMBANCOXYZABCDE",
		},
		{"short generic hint kept", "BPI", "BPI"},
		{
			"single X is not a mask rune",
			"Caixa Geral 1234",
			"CAIXAGERAL1234",
		},
		{
			"doubled X still masks",
			"conta XXXX 5678",
			"CONT5678",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAccountHint(tt.input)
			if got != tt.want {
				t.Errorf("normalizeAccountHint(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("normalizeAccountHint(%q) produced invalid UTF-8 %q", tt.input, got)
			}
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object untouched", `{"amount": 42}`, `{"amount": 42}`},
		{"markdown fence stripped", "```json\n{\"amount\": 42}\n```", `{"amount": 42}`},
		{"bare fence stripped", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose sliced", "Aqui está o resultado: {\"a\":1} obrigado", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.input); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeExtractionToleratesShapeMismatches(t *testing.T) {
	payload := map[string]interface{}{
		"sourceType":  "invoice", // not in the enum
		"amount":      "42",      // string where number expected
		"currency":    "EUR",
		"dueDate":     nil,
		"companyName": 17, // number where string expected
		"recurringExpenses": []interface{}{
			map[string]interface{}{ // no description: skipped
				"averageAmount": 9.99,
			},
			map[string]interface{}{
				"description":   "Netflix",
				"averageAmount": "abc", // wrong type: absent
				"dayOfMonth":    12.0,
			},
			"not an object", // skipped
		},
	}

	extraction := decodeExtraction(payload)

	if extraction.SourceType != nil {
		t.Errorf("SourceType = %q, want nil for unknown enum value", *extraction.SourceType)
	}
	if extraction.Amount != nil {
		t.Errorf("Amount = %v, want nil for string payload", *extraction.Amount)
	}
	if extraction.Currency == nil || *extraction.Currency != "EUR" {
		t.Error("well-typed fields must survive")
	}
	if extraction.CompanyName != nil {
		t.Errorf("CompanyName = %q, want nil for numeric payload", *extraction.CompanyName)
	}
	if len(extraction.RecurringExpenses) != 1 {
		t.Fatalf("RecurringExpenses count = %d, want 1", len(extraction.RecurringExpenses))
	}
	cand := extraction.RecurringExpenses[0]
	if cand.Description != "Netflix" {
		t.Errorf("Description = %q, want Netflix", cand.Description)
	}
	if cand.AverageAmount != nil {
		t.Error("wrongly typed averageAmount must read as absent")
	}
	if cand.DayOfMonth == nil || *cand.DayOfMonth != 12 {
		t.Error("dayOfMonth must decode from a JSON number")
	}
}

func TestExtractDocument(t *testing.T) {
	extractionJSON := `{
		"sourceType": "extracto",
		"amount": null,
		"currency": "EUR",
		"dueDate": null,
		"accountHint": "PT50 **** 9015",
		"companyName": null,
		"expenseType": null,
		"notes": null,
		"supplierTaxId": null,
		"statementAccountIban": "PT50000201231234567890154",
		"recurringExpenses": [
			{
				"description": "Ginásio",
				"averageAmount": 29.9,
				"currency": "EUR",
				"dayOfMonth": 3,
				"accountHint": null,
				"monthsObserved": ["2025-01", "2025-02", "2025-03"],
				"notes": null
			}
		],
		"statementSettlements": []
	}`

	var deletes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("multipart parse: %v", err)
		}
		if purpose := r.FormValue("purpose"); purpose != "user_data" {
			t.Errorf("purpose = %q, want user_data", purpose)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "file-123"})
	})
	mux.HandleFunc("POST /responses", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("request decode: %v", err)
		}
		format := req["text"].(map[string]interface{})["format"].(map[string]interface{})
		if format["type"] != "json_schema" || format["strict"] != true {
			t.Errorf("unexpected text format: %v", format)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"output": []map[string]interface{}{
				{
					"type": "message",
					"content": []map[string]string{
						{"type": "output_text", "text": "```json\n" + extractionJSON + "\n```"},
					},
				},
			},
		})
	})
	mux.HandleFunc("DELETE /files/file-123", func(w http.ResponseWriter, r *http.Request) {
		deletes.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	svc, _ := newTestService(t, mux)

	extraction, err := svc.ExtractDocument(context.Background(), strings.NewReader("%PDF-1.4 fake"), "extracto.pdf", "contas: Conta Ordenado")
	if err != nil {
		t.Fatalf("ExtractDocument: %v", err)
	}

	if extraction.SourceType == nil || *extraction.SourceType != "extracto" {
		t.Errorf("SourceType = %v, want extracto", extraction.SourceType)
	}
	if extraction.AccountHint == nil || *extraction.AccountHint != "PT50509015" {
		t.Errorf("AccountHint = %v, want masked IBAN reduced to PT50509015", extraction.AccountHint)
	}
	if len(extraction.RecurringExpenses) != 1 {
		t.Fatalf("RecurringExpenses count = %d, want 1", len(extraction.RecurringExpenses))
	}
	cand := extraction.RecurringExpenses[0]
	if cand.DeduplicationKey == nil {
		t.Fatal("recurring candidate must carry a deduplication key")
	}
	if !strings.Contains(*cand.DeduplicationKey, "ginasio") {
		t.Errorf("key %q misses the normalized description", *cand.DeduplicationKey)
	}

	// File cleanup is detached; waiting makes it observable.
	svc.WaitCleanup()
	if deletes.Load() != 1 {
		t.Errorf("remote file deleted %d times, want 1", deletes.Load())
	}
}

func TestExtractDocumentRejectsNonJSONOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "file-9"})
	})
	mux.HandleFunc("POST /responses", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"output_text": "não consegui ler o documento"})
	})
	mux.HandleFunc("DELETE /files/file-9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.ExtractDocument(context.Background(), strings.NewReader("x"), "doc.pdf", "")
	if err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
	svc.WaitCleanup()
}

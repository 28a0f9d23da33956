package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"contaflow/internal/models"

	"go.uber.org/zap"
)

const extractionSchemaName = "document_extraction"

// extractionSchema is the strict JSON schema the generation request is
// constrained by. Every field is required and nullable, per strict mode.
var extractionSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required": []string{
		"sourceType", "amount", "currency", "dueDate", "accountHint",
		"companyName", "expenseType", "notes", "supplierTaxId",
		"statementAccountIban", "recurringExpenses", "statementSettlements",
	},
	"properties": map[string]interface{}{
		"sourceType": map[string]interface{}{
			"type": []string{"string", "null"},
			"enum": []interface{}{"fatura", "recibo", "extracto", nil},
		},
		"amount":               map[string]interface{}{"type": []string{"number", "null"}},
		"currency":             map[string]interface{}{"type": []string{"string", "null"}},
		"dueDate":              map[string]interface{}{"type": []string{"string", "null"}},
		"accountHint":          map[string]interface{}{"type": []string{"string", "null"}},
		"companyName":          map[string]interface{}{"type": []string{"string", "null"}},
		"expenseType":          map[string]interface{}{"type": []string{"string", "null"}},
		"notes":                map[string]interface{}{"type": []string{"string", "null"}},
		"supplierTaxId":        map[string]interface{}{"type": []string{"string", "null"}},
		"statementAccountIban": map[string]interface{}{"type": []string{"string", "null"}},
		"recurringExpenses": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required": []string{
					"description", "averageAmount", "currency", "dayOfMonth",
					"accountHint", "monthsObserved", "notes",
				},
				"properties": map[string]interface{}{
					"description":   map[string]interface{}{"type": "string"},
					"averageAmount": map[string]interface{}{"type": []string{"number", "null"}},
					"currency":      map[string]interface{}{"type": []string{"string", "null"}},
					"dayOfMonth":    map[string]interface{}{"type": []string{"integer", "null"}},
					"accountHint":   map[string]interface{}{"type": []string{"string", "null"}},
					"monthsObserved": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"notes": map[string]interface{}{"type": []string{"string", "null"}},
				},
			},
		},
		"statementSettlements": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required": []string{
					"description", "amount", "currency", "settledOn",
					"documentIdHint", "expenseIdHint", "supplierName", "supplierTaxId",
				},
				"properties": map[string]interface{}{
					"description":    map[string]interface{}{"type": []string{"string", "null"}},
					"amount":         map[string]interface{}{"type": []string{"number", "null"}},
					"currency":       map[string]interface{}{"type": []string{"string", "null"}},
					"settledOn":      map[string]interface{}{"type": []string{"string", "null"}},
					"documentIdHint": map[string]interface{}{"type": []string{"string", "null"}},
					"expenseIdHint":  map[string]interface{}{"type": []string{"string", "null"}},
					"supplierName":   map[string]interface{}{"type": []string{"string", "null"}},
					"supplierTaxId":  map[string]interface{}{"type": []string{"string", "null"}},
				},
			},
		},
	},
}

func buildExtractionPrompt(accountContextHint string) string {
	prompt := `És um extrator de metadados de documentos financeiros portugueses (faturas, recibos, extractos bancários).

Analisa o documento anexado e preenche todos os campos do esquema:
- "sourceType": "fatura", "recibo" ou "extracto"; null se não for claro.
- "amount": valor total a pagar (número, sem símbolo de moeda).
- "dueDate": data limite de pagamento em formato "YYYY-MM-DD".
- "accountHint": IBAN ou fragmento de conta visível no documento.
- "companyName": nome do fornecedor/emissor.
- "expenseType": categoria da despesa (ex.: "Eletricidade", "Água", "Telecomunicações").
- "supplierTaxId": NIF do fornecedor.
- Para extractos: "statementAccountIban" é o IBAN da conta do extracto;
  "recurringExpenses" são débitos fixos que se repetem em vários meses
  ("monthsObserved" em formato "YYYY-MM", ordenado);
  "statementSettlements" são pagamentos já efetuados que podem corresponder a
  despesas existentes.
- Usa null para qualquer campo que não consigas determinar. Não inventes valores.`

	if accountContextHint != "" {
		prompt += "\n\nContexto: contas conhecidas do utilizador: " + accountContextHint
	}
	return prompt
}

// ExtractDocument uploads the file, runs one structured-output generation
// constrained by the extraction schema, validates and normalizes the result,
// and schedules deletion of the uploaded remote file. Cleanup runs after the
// result or error is returned and its failure never reaches the caller.
func (s *OpenAIService) ExtractDocument(ctx context.Context, file io.Reader, fileName, accountContextHint string) (*models.DocumentExtraction, error) {
	fileID, err := s.UploadFile(ctx, file, fileName)
	if err != nil {
		return nil, err
	}
	defer s.scheduleFileCleanup(fileID)

	raw, err := s.generateStructured(ctx, fileID, buildExtractionPrompt(accountContextHint))
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("extraction result is not valid JSON: %w", err)
	}

	extraction := decodeExtraction(payload)
	normalizeExtraction(extraction)

	s.logger.Info("Document extracted",
		zap.String("file", fileName),
		zap.Int("recurring", len(extraction.RecurringExpenses)),
		zap.Int("settlements", len(extraction.StatementSettlements)),
	)
	return extraction, nil
}

// generateStructured issues the POST /responses call with a strict
// schema-constrained text format and returns the generated text.
func (s *OpenAIService) generateStructured(ctx context.Context, fileID, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": s.model,
		"input": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "input_text", "text": prompt},
					{"type": "input_file", "file_id": fileID},
				},
			},
		},
		"text": map[string]interface{}{
			"format": map[string]interface{}{
				"type":   "json_schema",
				"name":   extractionSchemaName,
				"strict": true,
				"schema": extractionSchema,
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/responses", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var genResp struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	if genResp.OutputText != "" {
		return genResp.OutputText, nil
	}
	for _, item := range genResp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" && content.Text != "" {
				return content.Text, nil
			}
		}
	}
	return "", fmt.Errorf("generation response carries no output text")
}

// cleanModelJSON strips markdown fences and surrounding junk in case the
// model ignored the structured-output constraint.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}

// decodeExtraction reads the untyped payload field by field. Every access
// checks the value's type and defaults to absent on mismatch; the schema is
// requested strict but never trusted blindly.
func decodeExtraction(payload map[string]interface{}) *models.DocumentExtraction {
	extraction := &models.DocumentExtraction{
		SourceType:           optString(payload, "sourceType"),
		Amount:               optNumber(payload, "amount"),
		Currency:             optString(payload, "currency"),
		DueDate:              optString(payload, "dueDate"),
		AccountHint:          optString(payload, "accountHint"),
		CompanyName:          optString(payload, "companyName"),
		ExpenseType:          optString(payload, "expenseType"),
		Notes:                optString(payload, "notes"),
		SupplierTaxID:        optString(payload, "supplierTaxId"),
		StatementAccountIBAN: optString(payload, "statementAccountIban"),
	}

	if extraction.SourceType != nil {
		switch *extraction.SourceType {
		case models.SourceTypeFatura, models.SourceTypeRecibo, models.SourceTypeExtracto:
		default:
			extraction.SourceType = nil
		}
	}

	for _, item := range optObjectSlice(payload, "recurringExpenses") {
		description := optString(item, "description")
		if description == nil {
			continue
		}
		extraction.RecurringExpenses = append(extraction.RecurringExpenses, models.RecurringExpenseCandidate{
			Description:    *description,
			AverageAmount:  optNumber(item, "averageAmount"),
			Currency:       optString(item, "currency"),
			DayOfMonth:     optInt(item, "dayOfMonth"),
			AccountHint:    optString(item, "accountHint"),
			MonthsObserved: optStringSlice(item, "monthsObserved"),
			Notes:          optString(item, "notes"),
		})
	}

	for _, item := range optObjectSlice(payload, "statementSettlements") {
		extraction.StatementSettlements = append(extraction.StatementSettlements, models.StatementSettlement{
			Description:    optString(item, "description"),
			Amount:         optNumber(item, "amount"),
			Currency:       optString(item, "currency"),
			SettledOn:      optString(item, "settledOn"),
			DocumentIDHint: optString(item, "documentIdHint"),
			ExpenseIDHint:  optString(item, "expenseIdHint"),
			SupplierName:   optString(item, "supplierName"),
			SupplierTaxID:  optString(item, "supplierTaxId"),
		})
	}

	return extraction
}

// normalizeExtraction applies field-level cleanup the derivation layer relies
// on: IBAN-aware account hint reduction and deduplication keys for the
// recurring candidates.
func normalizeExtraction(extraction *models.DocumentExtraction) {
	if extraction.AccountHint != nil {
		hint := normalizeAccountHint(*extraction.AccountHint)
		if hint == "" {
			extraction.AccountHint = nil
		} else {
			extraction.AccountHint = &hint
		}
	}
	for i := range extraction.RecurringExpenses {
		cand := &extraction.RecurringExpenses[i]
		if cand.AccountHint != nil {
			hint := normalizeAccountHint(*cand.AccountHint)
			if hint == "" {
				cand.AccountHint = nil
			} else {
				cand.AccountHint = &hint
			}
		}
		cand.DeduplicationKey = RecurringDedupKey(extraction.SourceType, extraction.StatementAccountIBAN, cand)
	}
}

var (
	fullIBANPattern    = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}$`)
	partialIBANPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}`)
	// A single X is a normal letter (Caixa, Expresso); masking needs at
	// least two in a row, or a dedicated mask rune.
	maskedRunePattern = regexp.MustCompile(`[*•#]|[Xx]{2}`)
)

// maxGenericHintLen bounds hints that are not IBAN-shaped at all.
const maxGenericHintLen = 24

// normalizeAccountHint reduces a free-text account hint to a short stable
// form. A full IBAN is kept verbatim (spaces removed); a partial or masked
// IBAN is reduced to its 4-character prefix plus the last 4–8 digits;
// anything else is truncated.
func normalizeAccountHint(hint string) string {
	squeezed := strings.ToUpper(strings.Join(strings.Fields(hint), ""))
	if squeezed == "" {
		return ""
	}
	if fullIBANPattern.MatchString(squeezed) {
		return squeezed
	}

	if len(squeezed) >= 4 && (partialIBANPattern.MatchString(squeezed) || maskedRunePattern.MatchString(squeezed)) {
		digits := make([]rune, 0, len(squeezed))
		for _, r := range squeezed {
			if r >= '0' && r <= '9' {
				digits = append(digits, r)
			}
		}
		if len(digits) >= 4 {
			tail := digits
			if len(tail) > 8 {
				tail = tail[len(tail)-8:]
			}
			return squeezed[:4] + string(tail)
		}
	}

	if len(squeezed) > maxGenericHintLen {
		cut := maxGenericHintLen
		// Back off to a rune boundary so the cut never leaves invalid UTF-8.
		for cut > 0 && !utf8.RuneStart(squeezed[cut]) {
			cut--
		}
		return squeezed[:cut]
	}
	return squeezed
}

// Typed accessors over an untyped JSON object. A missing key, a JSON null or
// a wrong type all read as absent.

func optString(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optNumber(m map[string]interface{}, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func optInt(m map[string]interface{}, key string) *int {
	f := optNumber(m, key)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func optStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func optObjectSlice(m map[string]interface{}, key string) []map[string]interface{} {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []map[string]interface{}
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

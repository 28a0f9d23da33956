package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"contaflow/internal/dto"
	"contaflow/internal/models"
	"contaflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DocumentService struct {
	docRepo       *repository.DocumentRepository
	accountRepo   *repository.AccountRepository
	expenseRepo   *repository.ExpenseRepository
	timelineRepo  *repository.TimelineRepository
	pdfService    *PDFService
	openaiService *OpenAIService
	activityLog   *ActivityLog
	uploadDir     string
	logger        *zap.Logger
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	accountRepo *repository.AccountRepository,
	expenseRepo *repository.ExpenseRepository,
	timelineRepo *repository.TimelineRepository,
	pdfService *PDFService,
	openaiService *OpenAIService,
	activityLog *ActivityLog,
	uploadDir string,
	logger *zap.Logger,
) *DocumentService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &DocumentService{
		docRepo:       docRepo,
		accountRepo:   accountRepo,
		expenseRepo:   expenseRepo,
		timelineRepo:  timelineRepo,
		pdfService:    pdfService,
		openaiService: openaiService,
		activityLog:   activityLog,
		uploadDir:     uploadDir,
		logger:        logger,
	}
}

// UploadDocument saves the PDF, extracts a local text preview and creates the
// document record. Remote extraction happens separately in ProcessDocument.
func (s *DocumentService) UploadDocument(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (*dto.DocumentResponse, error) {
	docID := uuid.NewString()
	ext := filepath.Ext(fileName)
	filePath := filepath.Join(s.uploadDir, docID+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	fileSize, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	preview := ""
	if text, err := s.pdfService.ExtractText(filePath); err != nil {
		s.logger.Warn("Local text preview failed", zap.String("file", fileName), zap.Error(err))
	} else {
		preview = sanitizeUTF8(text)
	}

	now := time.Now()
	doc := &models.DocumentMetadata{
		ID:            docID,
		UserID:        userID,
		OriginalName:  fileName,
		FileSize:      fileSize,
		FileURL:       "/uploads/" + docID + ext,
		UploadDate:    now,
		ExtractedText: preview,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.activityLog.Record(ctx, userID, "info", "Documento carregado", fileName)

	return documentToResponse(doc), nil
}

// ProcessDocument runs the full pipeline for one document: remote extraction,
// metadata refresh, account resolution, expense derivation and timeline
// projection. Derivation declining to produce an expense is not an error.
func (s *DocumentService) ProcessDocument(ctx context.Context, userID uuid.UUID, documentID, accountContextHint string) (*dto.ProcessDocumentResponse, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("unauthorized")
	}

	filePath := filepath.Join(s.uploadDir, filepath.Base(doc.FileURL))
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	defer file.Close()

	extraction, err := s.openaiService.ExtractDocument(ctx, file, doc.OriginalName, accountContextHint)
	if err != nil {
		s.activityLog.Record(ctx, userID, "error", "Extração falhou", doc.OriginalName)
		return nil, err
	}

	applyExtraction(doc, extraction)
	if err := s.docRepo.UpdateExtraction(ctx, doc.ID, extraction, doc.SupplierID); err != nil {
		return nil, fmt.Errorf("failed to store extraction: %w", err)
	}

	accounts, err := s.accountRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	existing, err := s.expenseRepo.FindExisting(ctx, userID, DocumentDedupKey(doc), doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing expense: %w", err)
	}

	resp := &dto.ProcessDocumentResponse{
		Document:   *documentToResponse(doc),
		Extraction: extraction,
	}

	expense := DeriveExpense(doc, accounts, existing, nil)
	if expense == nil {
		s.activityLog.Record(ctx, userID, "warn", "Documento sem dados suficientes para despesa", doc.OriginalName)
		return resp, nil
	}

	if err := s.expenseRepo.Upsert(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to store expense: %w", err)
	}
	resp.Expense = expenseToResponse(expense)

	existingEntry, err := s.timelineRepo.GetByExpenseID(ctx, userID, expense.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up timeline entry: %w", err)
	}
	entry := DeriveTimelineEntry(expense, existingEntry)
	if entry != nil {
		if err := s.timelineRepo.Upsert(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to store timeline entry: %w", err)
		}
		resp.Timeline = timelineToResponse(entry)
	}

	s.activityLog.Record(ctx, userID, "info", "Documento processado", doc.OriginalName)
	return resp, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.DocumentResponse, error) {
	docs, err := s.docRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = documentToResponse(doc)
	}
	return responses, nil
}

// applyExtraction overwrites the document's extraction-owned fields; sticky
// fields (supplier id assigned earlier) are only set when still empty.
func applyExtraction(doc *models.DocumentMetadata, extraction *models.DocumentExtraction) {
	doc.SourceType = extraction.SourceType
	doc.Amount = extraction.Amount
	doc.Currency = extraction.Currency
	doc.DueDate = extraction.DueDate
	doc.AccountHint = sanitizeUTF8Ptr(extraction.AccountHint)
	doc.CompanyName = sanitizeUTF8Ptr(extraction.CompanyName)
	doc.ExpenseType = sanitizeUTF8Ptr(extraction.ExpenseType)
	doc.Notes = sanitizeUTF8Ptr(extraction.Notes)
	doc.SupplierTaxID = extraction.SupplierTaxID
	doc.StatementAccountIBAN = extraction.StatementAccountIBAN
	doc.UpdatedAt = time.Now()
}

func documentToResponse(doc *models.DocumentMetadata) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:            doc.ID,
		OriginalName:  doc.OriginalName,
		FileSize:      doc.FileSize,
		FileURL:       doc.FileURL,
		UploadDate:    doc.UploadDate.Format(time.RFC3339),
		ExtractedText: doc.ExtractedText,
		SourceType:    doc.SourceType,
		Amount:        doc.Amount,
		Currency:      doc.Currency,
		DueDate:       doc.DueDate,
		CompanyName:   doc.CompanyName,
		ExpenseType:   doc.ExpenseType,
	}
}

func expenseToResponse(exp *models.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:               exp.ID,
		DocumentID:       exp.DocumentID,
		AccountID:        exp.AccountID,
		Description:      exp.Description,
		Category:         exp.Category,
		Amount:           exp.Amount,
		Currency:         exp.Currency,
		DueDate:          exp.DueDate,
		Recurrence:       exp.Recurrence,
		Fixed:            exp.Fixed,
		Status:           string(exp.Status),
		SupplierID:       exp.SupplierID,
		DeduplicationKey: exp.DeduplicationKey,
	}
}

func timelineToResponse(entry *models.TimelineEntry) *dto.TimelineEntryResponse {
	return &dto.TimelineEntryResponse{
		ID:              entry.ID,
		Date:            entry.Date,
		Type:            entry.Type,
		Description:     entry.Description,
		Amount:          entry.Amount,
		Currency:        entry.Currency,
		LinkedExpenseID: entry.LinkedExpenseID,
	}
}

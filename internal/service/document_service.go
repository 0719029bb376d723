package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/auth"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/filestore"
	"github.com/castlemilk/taxpilot/backend/internal/jobs"
	"github.com/google/uuid"
)

// MaxUploadSize bounds a single receipt or tax card upload.
const MaxUploadSize = 10 << 20

var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
}

// validateUpload checks an upload and returns its content type, sniffing it
// when the client sent none.
func validateUpload(msg *api.UploadDocumentRequest) (string, error) {
	if strings.TrimSpace(msg.Filename) == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("filename is required"))
	}
	if len(msg.Data) == 0 {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("document data is required"))
	}
	if len(msg.Data) > MaxUploadSize {
		return "", connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("document exceeds %d MB limit", MaxUploadSize>>20))
	}

	contentType := msg.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(msg.Data)
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !allowedUploadTypes[contentType] {
		return "", connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("unsupported content type %q", contentType))
	}
	return contentType, nil
}

func (s *TaxService) requireDocumentPipeline() error {
	if s.files == nil {
		return connect.NewError(connect.CodeUnavailable, fmt.Errorf("storage service is not configured"))
	}
	if s.jobs == nil {
		return connect.NewError(connect.CodeUnavailable, fmt.Errorf("job runner is not configured"))
	}
	return nil
}

// UploadReceipt stores a receipt file and queues OCR for it.
func (s *TaxService) UploadReceipt(ctx context.Context, req *connect.Request[api.UploadDocumentRequest]) (*connect.Response[api.UploadReceiptResponse], error) {
	claims, account, err := s.requireAccountAccess(ctx, req.Msg.AccountID, true)
	if err != nil {
		return nil, err
	}
	contentType, err := validateUpload(req.Msg)
	if err != nil {
		return nil, err
	}
	if err := s.requireDocumentPipeline(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	storagePath := filestore.ObjectPath("receipts", account.ID, id, req.Msg.Filename)
	if err := s.files.Put(ctx, storagePath, contentType, req.Msg.Data); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("store receipt file: %w", err))
	}

	receipt := &domain.Receipt{
		ID:          id,
		AccountID:   account.ID,
		UserID:      claims.UID,
		Filename:    path.Base(req.Msg.Filename),
		ContentType: contentType,
		StoragePath: storagePath,
		Status:      domain.ProcessingPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, storeError("create receipt", err)
	}

	job, err := s.jobs.Submit(ctx, domain.JobReceiptOCR, account.ID, claims.UID, receipt.ID)
	if err != nil {
		receipt.Status = domain.ProcessingFailed
		receipt.Error = "could not queue processing"
		if uerr := s.store.UpdateReceipt(ctx, receipt); uerr != nil {
			log.Printf("[Documents] failed to mark receipt %s failed: %v", receipt.ID, uerr)
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to queue receipt processing: %w", err))
	}

	return connect.NewResponse(&api.UploadReceiptResponse{Receipt: receipt, Job: job}), nil
}

// GetReceipt returns a receipt and its processing state.
func (s *TaxService) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	if req.Msg.ReceiptID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("receipt_id is required"))
	}

	receipt, err := s.store.GetReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, storeError("get receipt", err)
	}
	if _, _, err := s.requireAccountAccess(ctx, receipt.AccountID, false); err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetReceiptResponse{Receipt: receipt}), nil
}

// ExportReceipts bundles the receipt files behind a calendar year's expenses
// into a ZIP archive, one folder per expense category.
func (s *TaxService) ExportReceipts(ctx context.Context, req *connect.Request[api.ExportReceiptsRequest]) (*connect.Response[api.ExportReceiptsResponse], error) {
	if _, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false); err != nil {
		return nil, err
	}

	year := req.Msg.Year
	if year == 0 {
		year = s.now().UTC().Year()
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	var withReceipts []*domain.Expense
	pageToken := ""
	for {
		expenses, nextToken, err := s.store.ListExpenses(ctx, req.Msg.AccountID, &start, &end, 500, pageToken)
		if err != nil {
			return nil, storeError("list expenses", err)
		}
		for _, e := range expenses {
			if e.ReceiptID != "" {
				withReceipts = append(withReceipts, e)
			}
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	if len(withReceipts) == 0 {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("no expenses with receipts found for %d", year))
	}
	if s.files == nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("storage service is not configured"))
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	receiptCount := int32(0)
	for _, expense := range withReceipts {
		receipt, err := s.store.GetReceipt(ctx, expense.ReceiptID)
		if err != nil {
			log.Printf("[Documents] export: skipping expense %s: %v", expense.ID, err)
			continue
		}
		data, err := s.files.Get(ctx, receipt.StoragePath)
		if err != nil {
			if !errors.Is(err, filestore.ErrNotFound) {
				log.Printf("[Documents] export: read %s: %v", receipt.StoragePath, err)
			}
			continue
		}

		desc := sanitizeFilename(expense.Description)
		if desc == "" {
			desc = "receipt"
		}
		filename := fmt.Sprintf("%s/%s_%s_%s%s",
			categoryFolder(expense.Category), desc, expense.Date.Format("2006-01-02"),
			expense.Amount.StringFixed(2), extensionFromPath(receipt.StoragePath))

		w, err := zipWriter.Create(filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(data); err != nil {
			continue
		}
		receiptCount++
	}

	if err := zipWriter.Close(); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("create zip: %w", err))
	}

	return connect.NewResponse(&api.ExportReceiptsResponse{
		Data:         buf.Bytes(),
		Filename:     fmt.Sprintf("taxpilot-receipts-%d.zip", year),
		ContentType:  "application/zip",
		ReceiptCount: receiptCount,
	}), nil
}

// categoryFolder names the archive folder for an expense category.
func categoryFolder(category string) string {
	if category == "" {
		return "other"
	}
	return strings.ReplaceAll(sanitizeFilename(category), "_", "-")
}

// sanitizeFilename removes or replaces characters unsafe for filenames.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")
	result := []rune(strings.TrimSpace(replacer.Replace(s)))
	if len(result) > 50 {
		result = result[:50]
	}
	return string(result)
}

// extensionFromPath extracts the file extension from a storage path.
func extensionFromPath(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return ".bin"
	}
	return ext
}

// UploadTaxCard stores a tax card and queues parsing of its withholding fields.
func (s *TaxService) UploadTaxCard(ctx context.Context, req *connect.Request[api.UploadDocumentRequest]) (*connect.Response[api.UploadTaxCardResponse], error) {
	claims, account, err := s.requireAccountAccess(ctx, req.Msg.AccountID, true)
	if err != nil {
		return nil, err
	}
	contentType, err := validateUpload(req.Msg)
	if err != nil {
		return nil, err
	}
	if err := s.requireDocumentPipeline(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	storagePath := filestore.ObjectPath("taxcards", account.ID, id, req.Msg.Filename)
	if err := s.files.Put(ctx, storagePath, contentType, req.Msg.Data); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("store tax card file: %w", err))
	}

	card := &domain.TaxCard{
		ID:          id,
		AccountID:   account.ID,
		UserID:      claims.UID,
		Filename:    path.Base(req.Msg.Filename),
		ContentType: contentType,
		StoragePath: storagePath,
		Status:      domain.ProcessingPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateTaxCard(ctx, card); err != nil {
		return nil, storeError("create tax card", err)
	}

	job, err := s.jobs.Submit(ctx, domain.JobTaxCardParse, account.ID, claims.UID, card.ID)
	if err != nil {
		card.Status = domain.ProcessingFailed
		card.Error = "could not queue processing"
		if uerr := s.store.UpdateTaxCard(ctx, card); uerr != nil {
			log.Printf("[Documents] failed to mark tax card %s failed: %v", card.ID, uerr)
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to queue tax card processing: %w", err))
	}

	return connect.NewResponse(&api.UploadTaxCardResponse{TaxCard: card, Job: job}), nil
}

// ListTaxCards lists an account's tax cards, oldest first.
func (s *TaxService) ListTaxCards(ctx context.Context, req *connect.Request[api.ListTaxCardsRequest]) (*connect.Response[api.ListTaxCardsResponse], error) {
	if _, _, err := s.requireAccountAccess(ctx, req.Msg.AccountID, false); err != nil {
		return nil, err
	}

	cards, err := s.store.ListTaxCards(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, storeError("list tax cards", err)
	}
	return connect.NewResponse(&api.ListTaxCardsResponse{TaxCards: cards}), nil
}

// GetJob reports the state of one of the caller's background jobs.
func (s *TaxService) GetJob(ctx context.Context, req *connect.Request[api.GetJobRequest]) (*connect.Response[api.GetJobResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.JobID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("job_id is required"))
	}
	if s.jobs == nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("job runner is not configured"))
	}

	job, err := s.jobs.Get(ctx, req.Msg.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("job %s not found", req.Msg.JobID))
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to get job: %w", err))
	}
	if job.UserID != claims.UID {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("job %s not found", req.Msg.JobID))
	}

	return connect.NewResponse(&api.GetJobResponse{Job: job}), nil
}

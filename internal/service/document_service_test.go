package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/taxpilot/backend/internal/api"
	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/filestore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func newDocumentService(t *testing.T) (*TaxService, *fakeJobs, *filestore.LocalStore) {
	t.Helper()
	svc, _ := newTestService(t)
	files, err := filestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	runner := newFakeJobs()
	svc.SetFileStore(files)
	svc.SetJobRunner(runner)
	return svc, runner, files
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		msg      *api.UploadDocumentRequest
		wantType string
		wantErr  bool
	}{
		{"pdf with declared type", &api.UploadDocumentRequest{Filename: "card.pdf", ContentType: "application/pdf", Data: pdfBytes}, "application/pdf", false},
		{"sniffed pdf", &api.UploadDocumentRequest{Filename: "card.pdf", Data: pdfBytes}, "application/pdf", false},
		{"type parameters stripped", &api.UploadDocumentRequest{Filename: "r.png", ContentType: "image/png; q=1", Data: []byte{1}}, "image/png", false},
		{"missing filename", &api.UploadDocumentRequest{Data: pdfBytes}, "", true},
		{"empty data", &api.UploadDocumentRequest{Filename: "r.pdf"}, "", true},
		{"unsupported type", &api.UploadDocumentRequest{Filename: "r.txt", Data: []byte("plain text")}, "", true},
		{"too large", &api.UploadDocumentRequest{Filename: "r.pdf", ContentType: "application/pdf", Data: make([]byte, MaxUploadSize+1)}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateUpload(tt.msg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got)
		})
	}
}

func TestUploadReceipt(t *testing.T) {
	svc, runner, files := newDocumentService(t)
	ctx := testContextWithUser("member")

	resp, err := svc.UploadReceipt(ctx, connect.NewRequest(&api.UploadDocumentRequest{
		AccountID:   "acct-1",
		Filename:    "scans/K-Market.PDF",
		ContentType: "application/pdf",
		Data:        pdfBytes,
	}))
	require.NoError(t, err)

	receipt := resp.Msg.Receipt
	assert.Equal(t, domain.ProcessingPending, receipt.Status)
	assert.Equal(t, "K-Market.PDF", receipt.Filename)
	assert.Equal(t, "receipts/acct-1/"+receipt.ID+".pdf", receipt.StoragePath)

	stored, err := files.Get(context.Background(), receipt.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, stored)

	assert.Equal(t, domain.JobReceiptOCR, resp.Msg.Job.Type)
	assert.Equal(t, receipt.ID, resp.Msg.Job.SubjectID)
	assert.Len(t, runner.jobs, 1)

	got, err := svc.GetReceipt(testContextWithUser("viewer"), connect.NewRequest(&api.GetReceiptRequest{ReceiptID: receipt.ID}))
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, got.Msg.Receipt.ID)

	_, err = svc.GetReceipt(testContextWithUser("stranger"), connect.NewRequest(&api.GetReceiptRequest{ReceiptID: receipt.ID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestUploadReceipt_Failures(t *testing.T) {
	t.Run("viewer cannot upload", func(t *testing.T) {
		svc, _, _ := newDocumentService(t)
		_, err := svc.UploadReceipt(testContextWithUser("viewer"), connect.NewRequest(&api.UploadDocumentRequest{
			AccountID: "acct-1", Filename: "r.pdf", Data: pdfBytes,
		}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.UploadReceipt(testContextWithUser("member"), connect.NewRequest(&api.UploadDocumentRequest{
			AccountID: "acct-1", Filename: "r.pdf", Data: pdfBytes,
		}))
		assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	})

	t.Run("queue failure marks receipt failed", func(t *testing.T) {
		svc, runner, _ := newDocumentService(t)
		runner.submitErr = errors.New("redis down")

		_, err := svc.UploadReceipt(testContextWithUser("member"), connect.NewRequest(&api.UploadDocumentRequest{
			AccountID: "acct-1", Filename: "r.pdf", Data: pdfBytes,
		}))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	})
}

func TestUploadTaxCardAndList(t *testing.T) {
	svc, _, _ := newDocumentService(t)
	ctx := testContextWithUser("owner")

	resp, err := svc.UploadTaxCard(ctx, connect.NewRequest(&api.UploadDocumentRequest{
		AccountID: "acct-1",
		Filename:  "verokortti-2024.pdf",
		Data:      pdfBytes,
	}))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", resp.Msg.TaxCard.ContentType)
	assert.Equal(t, domain.JobTaxCardParse, resp.Msg.Job.Type)

	list, err := svc.ListTaxCards(testContextWithUser("viewer"), connect.NewRequest(&api.ListTaxCardsRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	require.Len(t, list.Msg.TaxCards, 1)
	assert.Equal(t, resp.Msg.TaxCard.ID, list.Msg.TaxCards[0].ID)
}

func TestExportReceipts(t *testing.T) {
	svc, _, files := newDocumentService(t)
	ms := svc.store
	bg := context.Background()

	require.NoError(t, files.Put(bg, "receipts/acct-1/r1.jpg", "image/jpeg", []byte("jpeg-bytes")))
	require.NoError(t, ms.CreateReceipt(bg, &domain.Receipt{ID: "r1", AccountID: "acct-1", StoragePath: "receipts/acct-1/r1.jpg"}))
	require.NoError(t, ms.CreateReceipt(bg, &domain.Receipt{ID: "r2", AccountID: "acct-1", StoragePath: "receipts/acct-1/missing.pdf"}))

	require.NoError(t, ms.CreateExpense(bg, &domain.Expense{
		ID: "e1", AccountID: "acct-1", Description: "Desk: standing", Category: "work_equipment",
		Amount: decimal.RequireFromString("249.9"), Date: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), ReceiptID: "r1",
	}))
	require.NoError(t, ms.CreateExpense(bg, &domain.Expense{
		ID: "e2", AccountID: "acct-1", Description: "Lost file",
		Amount: decimal.NewFromInt(5), Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), ReceiptID: "r2",
	}))
	require.NoError(t, ms.CreateExpense(bg, &domain.Expense{
		ID: "e3", AccountID: "acct-1", Description: "No receipt",
		Amount: decimal.NewFromInt(5), Date: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC),
	}))

	resp, err := svc.ExportReceipts(testContextWithUser("viewer"), connect.NewRequest(&api.ExportReceiptsRequest{AccountID: "acct-1"}))
	require.NoError(t, err)
	assert.Equal(t, "taxpilot-receipts-2024.zip", resp.Msg.Filename)
	assert.Equal(t, "application/zip", resp.Msg.ContentType)
	assert.Equal(t, int32(1), resp.Msg.ReceiptCount)

	zr, err := zip.NewReader(bytes.NewReader(resp.Msg.Data), int64(len(resp.Msg.Data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "work-equipment/Desk- standing_2024-05-02_249.90.jpg", zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(content))

	_, err = svc.ExportReceipts(testContextWithUser("viewer"), connect.NewRequest(&api.ExportReceiptsRequest{AccountID: "acct-1", Year: 2023}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestGetJob(t *testing.T) {
	svc, runner, _ := newDocumentService(t)
	job, err := runner.Submit(context.Background(), domain.JobReceiptOCR, "acct-1", "member", "r1")
	require.NoError(t, err)

	resp, err := svc.GetJob(testContextWithUser("member"), connect.NewRequest(&api.GetJobRequest{JobID: job.ID}))
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, resp.Msg.Job.Status)

	_, err = svc.GetJob(testContextWithUser("owner"), connect.NewRequest(&api.GetJobRequest{JobID: job.ID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = svc.GetJob(testContextWithUser("member"), connect.NewRequest(&api.GetJobRequest{JobID: "job-404"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = svc.GetJob(testContextWithUser("member"), connect.NewRequest(&api.GetJobRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

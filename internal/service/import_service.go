package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/fooddept/fdbms/internal/importer"
	"github.com/fooddept/fdbms/internal/storage"
)

// readUpload parses an uploaded spreadsheet into rows.
func readUpload(fileName string, data []byte) ([]importer.Row, error) {
	if len(data) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("uploaded file is empty"))
	}
	format, err := importer.FormatOf(fileName)
	if err != nil {
		return nil, toConnectError(err)
	}
	rows, err := importer.ReadRows(format, bytes.NewReader(data))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("failed to read %s: %w", fileName, err))
	}
	return rows, nil
}

// importRows merges or replaces a collection according to mode.
func importRows[T any](k importer.Kind[T], existing []T, rows []importer.Row, mode, confirmation string) (importer.Result[T], error) {
	switch mode {
	case "", ImportMerge:
		return importer.Merge(k, existing, rows), nil
	case ImportReplace:
		return importer.ReplaceAll(k, existing, rows, confirmation)
	default:
		return importer.Result[T]{}, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("import mode must be %q or %q, got %q", ImportMerge, ImportReplace, mode))
	}
}

// ImportContracts merges or replaces contracts from a CSV, JSON or Excel
// file.
func (s *BillingService) ImportContracts(
	ctx context.Context,
	req *connect.Request[ImportRequest],
) (*connect.Response[ImportResponse], error) {
	rows, err := readUpload(req.Msg.FileName, req.Msg.Data)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListContracts(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	result, err := importRows(importer.Contracts, existing, rows, req.Msg.Mode, req.Msg.Confirmation)
	if err != nil {
		s.metrics.Rejected("import_contracts", 1)
		return nil, toConnectError(err)
	}
	if err := s.store.ReplaceContracts(ctx, result.Records); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to save contracts: %w", err))
	}
	s.metrics.Imported("contracts", result.Added, result.Updated, result.Removed, result.Skipped)

	s.logger.Info("Contracts imported",
		"file", req.Msg.FileName,
		"mode", req.Msg.Mode,
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
		"skipped", result.Skipped,
	)
	return connect.NewResponse(&ImportResponse{Summary: summarize(result)}), nil
}

// ImportUsers merges or replaces user accounts from a CSV, JSON or Excel
// file. Passwords are stored hashed.
func (s *BillingService) ImportUsers(
	ctx context.Context,
	req *connect.Request[ImportRequest],
) (*connect.Response[ImportResponse], error) {
	rows, err := readUpload(req.Msg.FileName, req.Msg.Data)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	result, err := importRows(importer.Users, existing, rows, req.Msg.Mode, req.Msg.Confirmation)
	if err != nil {
		s.metrics.Rejected("import_users", 1)
		return nil, toConnectError(err)
	}
	if err := s.store.ReplaceUsers(ctx, result.Records); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to save users: %w", err))
	}
	s.metrics.Imported("users", result.Added, result.Updated, result.Removed, result.Skipped)

	s.logger.Info("Users imported",
		"file", req.Msg.FileName,
		"mode", req.Msg.Mode,
		"added", result.Added,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return connect.NewResponse(&ImportResponse{Summary: summarize(result)}), nil
}

// RestoreBackup applies a backup workbook: bills merge on bill number,
// contracts are replaced and users merge on username. Everything is
// written in one transaction.
func (s *BillingService) RestoreBackup(
	ctx context.Context,
	req *connect.Request[RestoreBackupRequest],
) (*connect.Response[RestoreBackupResponse], error) {
	if len(req.Msg.Data) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("uploaded file is empty"))
	}
	book, err := importer.ReadWorkbook(bytes.NewReader(req.Msg.Data))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	current, err := s.dataset(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	result, err := importer.Restore(current, book, req.Msg.Confirmation)
	if err != nil {
		s.metrics.Rejected("restore", 1)
		return nil, toConnectError(err)
	}

	err = s.store.Restore(ctx, storage.Snapshot{
		TransportBills: result.Bills.Records,
		Contracts:      result.Contracts.Records,
		Users:          result.Users.Records,
	})
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to restore backup: %w", err))
	}
	s.metrics.Imported("bills", result.Bills.Added, result.Bills.Updated, 0, result.Bills.Skipped+result.Discarded)
	s.metrics.Imported("contracts", result.Contracts.Added, result.Contracts.Updated, result.Contracts.Removed, result.Contracts.Skipped)
	s.metrics.Imported("users", result.Users.Added, result.Users.Updated, 0, result.Users.Skipped)

	s.logger.Info("Backup restored",
		"bills", len(result.Bills.Records),
		"discarded", result.Discarded,
		"contracts", len(result.Contracts.Records),
		"users", len(result.Users.Records),
	)
	return connect.NewResponse(&RestoreBackupResponse{
		Bills:     summarize(result.Bills),
		Discarded: result.Discarded,
		Contracts: summarize(result.Contracts),
		Users:     summarize(result.Users),
	}), nil
}

func (s *BillingService) dataset(ctx context.Context) (importer.Dataset, error) {
	bills, err := s.store.ListTransportBills(ctx)
	if err != nil {
		return importer.Dataset{}, err
	}
	contracts, err := s.store.ListContracts(ctx)
	if err != nil {
		return importer.Dataset{}, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return importer.Dataset{}, err
	}
	return importer.Dataset{Bills: bills, Contracts: contracts, Users: users}, nil
}

// BackupHandler serves the current data as a backup workbook that
// RestoreBackup accepts.
func (s *BillingService) BackupHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := s.dataset(r.Context())
		if err != nil {
			s.logger.Error("Failed to load backup data", "error", err)
			http.Error(w, "failed to load data", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := importer.WriteBackup(&buf, data); err != nil {
			s.logger.Error("Failed to write backup", "error", err)
			http.Error(w, "failed to write backup", http.StatusInternalServerError)
			return
		}

		name := fmt.Sprintf("fdbms-backup-%s.xlsx", s.now().Format(dateLayout))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.logger.Warn("Failed to send backup", "error", err)
			return
		}
		s.logger.Info("Backup exported",
			"bills", len(data.Bills),
			"contracts", len(data.Contracts),
			"users", len(data.Users),
			"bytes", buf.Len(),
		)
	})
}

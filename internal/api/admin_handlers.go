package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dominopro/dominopro-server/internal/backup"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

const adminPinHeader = "X-Admin-Pin"

var adminSecurity = []map[string][]string{{"adminPin": {}}}

// requireAdmin checks the admin PIN header.
func (s *Server) requireAdmin(pin string) error {
	if pin == "" || !s.services.League.VerifyPin(pin) {
		return toHumaError(domainerrors.Unauthorized("a valid admin PIN is required"))
	}
	return nil
}

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "verifyAdminPin",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/verify",
		Summary:     "Verify admin PIN",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleVerifyPin)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAdminPin",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/pin",
		Summary:     "Change admin PIN",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleUpdatePin)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetLeague",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/reset",
		Summary:     "Reset league",
		Description: "Deletes every player, game and session",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "importLeague",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/import",
		Summary:     "Import league",
		Description: "Replaces the league with an exported document",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportLeague",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/export",
		Summary:     "Export league",
		Description: "Returns the full league document, admin PIN included",
		Tags:        []string{"Admin"},
		Security:    adminSecurity,
	}, s.handleExport)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List backups",
		Tags:        []string{"Admin", "Backups"},
		Security:    adminSecurity,
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/backups",
		Summary:       "Create backup",
		Tags:          []string{"Admin", "Backups"},
		Security:      adminSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/{name}/restore",
		Summary:     "Restore backup",
		Tags:        []string{"Admin", "Backups"},
		Security:    adminSecurity,
	}, s.handleRestoreBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBackup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/backups/{name}",
		Summary:     "Delete backup",
		Tags:        []string{"Admin", "Backups"},
		Security:    adminSecurity,
	}, s.handleDeleteBackup)
}

// === DTOs ===

// AdminInput carries only the admin PIN.
type AdminInput struct {
	AdminPin string `header:"X-Admin-Pin" doc:"Admin PIN"`
}

// VerifyPinResponse confirms a PIN.
type VerifyPinResponse struct {
	Valid bool `json:"valid"`
}

// VerifyPinOutput wraps the confirmation for Huma.
type VerifyPinOutput struct {
	Body VerifyPinResponse
}

// UpdatePinRequest is the request body for a PIN change.
type UpdatePinRequest struct {
	Pin string `json:"pin" validate:"required,pin" doc:"New four-digit PIN"`
}

// UpdatePinInput wraps the PIN change for Huma.
type UpdatePinInput struct {
	AdminPin string `header:"X-Admin-Pin" doc:"Current admin PIN"`
	Body     UpdatePinRequest
}

// ImportInput carries a raw league document.
type ImportInput struct {
	AdminPin string `header:"X-Admin-Pin" doc:"Admin PIN"`
	RawBody  []byte `contentType:"application/json"`
}

// ImportResponse summarizes an imported document.
type ImportResponse struct {
	Counts backup.Counts `json:"counts"`
}

// ImportOutput wraps the import summary for Huma.
type ImportOutput struct {
	Body ImportResponse
}

// ExportOutput carries the full document as a download.
type ExportOutput struct {
	ContentDisposition string `header:"Content-Disposition"`
	Body               json.RawMessage
}

// BackupListResponse lists backup files, newest first.
type BackupListResponse struct {
	Backups []backup.Info `json:"backups"`
}

// BackupListOutput wraps the list for Huma.
type BackupListOutput struct {
	Body BackupListResponse
}

// BackupOutput wraps a created backup for Huma.
type BackupOutput struct {
	Body *backup.Result
}

// BackupNameInput addresses one backup file.
type BackupNameInput struct {
	AdminPin string `header:"X-Admin-Pin" doc:"Admin PIN"`
	Name     string `path:"name" doc:"Backup file name"`
}

// === Handlers ===

func (s *Server) handleVerifyPin(_ context.Context, input *AdminInput) (*VerifyPinOutput, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	return &VerifyPinOutput{Body: VerifyPinResponse{Valid: true}}, nil
}

func (s *Server) handleUpdatePin(ctx context.Context, input *UpdatePinInput) (*struct{}, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, toHumaError(err)
	}
	if err := s.services.League.UpdateAdminPin(ctx, input.Body.Pin); err != nil {
		return nil, toHumaError(err)
	}
	s.logger.Info("admin PIN changed")
	return nil, nil
}

func (s *Server) handleReset(ctx context.Context, input *AdminInput) (*StateOutput, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	if err := s.services.League.ResetData(ctx); err != nil {
		return nil, toHumaError(err)
	}
	s.logger.Warn("league reset")
	return &StateOutput{Body: s.services.League.Snapshot().Public()}, nil
}

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	return s.importDocument(ctx, unwrapEnvelope(input.RawBody), "upload")
}

func (s *Server) importDocument(ctx context.Context, raw []byte, source string) (*ImportOutput, error) {
	state, err := s.services.League.ImportData(ctx, raw)
	if err != nil {
		return nil, toHumaError(err)
	}
	counts := backup.CountsOf(state)
	s.logger.Info("league imported",
		slog.String("source", source),
		slog.Int("players", counts.Players),
		slog.Int("games", counts.Games))
	return &ImportOutput{Body: ImportResponse{Counts: counts}}, nil
}

func (s *Server) handleExport(_ context.Context, input *AdminInput) (*ExportOutput, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	data, err := s.services.League.ExportData()
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ExportOutput{
		ContentDisposition: fmt.Sprintf(`attachment; filename="domino-pro-%d.json"`, time.Now().UnixMilli()),
		Body:               data,
	}, nil
}

func (s *Server) handleListBackups(_ context.Context, input *AdminInput) (*BackupListOutput, error) {
	if err := s.requireBackups(input.AdminPin); err != nil {
		return nil, err
	}
	list, err := s.services.Backups.List()
	if err != nil {
		return nil, toHumaError(err)
	}
	if list == nil {
		list = []backup.Info{}
	}
	return &BackupListOutput{Body: BackupListResponse{Backups: list}}, nil
}

func (s *Server) handleCreateBackup(_ context.Context, input *AdminInput) (*BackupOutput, error) {
	if err := s.requireBackups(input.AdminPin); err != nil {
		return nil, err
	}
	res, err := s.services.Backups.Export(s.services.League.Snapshot())
	if err != nil {
		return nil, toHumaError(err)
	}
	return &BackupOutput{Body: res}, nil
}

func (s *Server) handleRestoreBackup(ctx context.Context, input *BackupNameInput) (*ImportOutput, error) {
	if err := s.requireBackups(input.AdminPin); err != nil {
		return nil, err
	}
	raw, err := s.services.Backups.Read(input.Name)
	if err != nil {
		return nil, toHumaError(err)
	}
	return s.importDocument(ctx, raw, input.Name)
}

func (s *Server) handleDeleteBackup(_ context.Context, input *BackupNameInput) (*struct{}, error) {
	if err := s.requireBackups(input.AdminPin); err != nil {
		return nil, err
	}
	if err := s.services.Backups.Delete(input.Name); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

func (s *Server) requireBackups(pin string) error {
	if err := s.requireAdmin(pin); err != nil {
		return err
	}
	if s.services.Backups == nil {
		return huma.Error503ServiceUnavailable("backups are not configured")
	}
	return nil
}

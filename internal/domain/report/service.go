package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/simrs/bap/internal/platform/auth"
)

// ErrForbidden is returned when a non-admin actor attempts an admin-only
// operation.
var ErrForbidden = errors.New("admin role required")

// ErrInvalid marks a rejected submission. Messages wrapping it are safe to
// return to the client; anything else coming out of the service is a storage
// failure and must stay server-side.
var ErrInvalid = errors.New("invalid input")

// FileStore is the evidence-file storage the service depends on. Satisfied
// by *filestore.Store.
type FileStore interface {
	Save(name string, content io.Reader) (string, error)
	Delete(name string) error
}

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// CreateInput carries a report submission. Evidence is optional; when set,
// EvidenceName must carry the original filename.
type CreateInput struct {
	Unit           string
	Pelapor        string
	ModulSIMRS     string
	JenisKesalahan string
	Deskripsi      string
	TglKejadian    time.Time
	EvidenceName   string
	Evidence       io.Reader
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, in CreateInput) (*Laporan, error) {
	if in.Unit == "" {
		return nil, fmt.Errorf("%w: unit is required", ErrInvalid)
	}
	if in.Pelapor == "" {
		return nil, fmt.Errorf("%w: pelapor is required", ErrInvalid)
	}
	if in.Deskripsi == "" {
		return nil, fmt.Errorf("%w: deskripsi is required", ErrInvalid)
	}
	if in.TglKejadian.IsZero() {
		return nil, fmt.Errorf("%w: tgl_kejadian is required", ErrInvalid)
	}
	if !ValidJenis(in.JenisKesalahan) {
		return nil, fmt.Errorf("%w: unknown jenis_kesalahan %q", ErrInvalid, in.JenisKesalahan)
	}

	lap := &Laporan{
		Unit:           in.Unit,
		Pelapor:        in.Pelapor,
		JenisKesalahan: in.JenisKesalahan,
		Deskripsi:      in.Deskripsi,
		TglKejadian:    in.TglKejadian,
		Status:         StatusPending,
	}
	if in.ModulSIMRS != "" {
		lap.ModulSIMRS = &in.ModulSIMRS
	}
	if actor != nil && actor.ID != 0 {
		lap.CreatedBy = &actor.ID
	}

	if in.Evidence != nil {
		stored, err := s.files.Save(in.EvidenceName, in.Evidence)
		if err != nil {
			return nil, fmt.Errorf("store evidence file: %w", err)
		}
		lap.BuktiFile = &stored
	}

	if err := s.repo.Create(ctx, lap); err != nil {
		return nil, err
	}
	return lap, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Laporan, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus sets the report's triage status. Status is a closed enum with
// free transitions: any of the three values is accepted regardless of the
// current one. Only admin actors may change the assignee; a non-admin's
// assignment request is ignored, not rejected.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Actor, id int64, status string, assignedTo *int64) (*Laporan, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	lap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lap.Status = status
	if actor.IsAdmin() {
		lap.AssignedTo = assignedTo
	}

	if err := s.repo.Update(ctx, lap); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a report and its stored evidence file. Admin only. A
// missing or undeletable file does not block the row delete: the failure is
// logged and the delete proceeds.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	lap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if lap.BuktiFile != nil {
		if err := s.files.Delete(*lap.BuktiFile); err != nil {
			log.Error().Err(err).Int64("laporan_id", id).Str("file", *lap.BuktiFile).
				Msg("failed to delete evidence file")
		}
	}

	return s.repo.Delete(ctx, id)
}

// Search returns one page of the filtered set together with statistics over
// the whole filtered set.
func (s *Service) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Laporan, *SearchStats, error) {
	reports, err := s.repo.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.repo.Stats(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return reports, stats, nil
}

// Export materializes the full filtered set and renders it in the requested
// format.
func (s *Service) Export(ctx context.Context, params SearchParams, format string) (*ExportFile, error) {
	reports, err := s.repo.SearchAll(ctx, params)
	if err != nil {
		return nil, err
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		data, err = ExportCSV(reports)
		contentType = "text/csv"
	case FormatExcel:
		data, err = ExportXLSX(reports)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Name:        ExportFileName(format, time.Now()),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *Service) Units(ctx context.Context) ([]string, error) {
	return s.repo.DistinctUnits(ctx)
}

func (s *Service) Statistics(ctx context.Context) (*GlobalStats, error) {
	return s.repo.GlobalStats(ctx)
}

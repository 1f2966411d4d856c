package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/metrics"
	"github.com/shashiranjanraj/medcart/pkg/storage"
)

const prescriptionKeyPrefix = "prescriptions/"

// allowedUploads maps accepted content types to the stored extension.
var allowedUploads = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// UploadInput is a prescription file plus its metadata. File is nil when
// the request carried no file.
type UploadInput struct {
	File          io.Reader
	Pharmacy      string `json:"pharmacy"      validate:"notblank"`
	CustomerEmail string `json:"customerEmail" validate:"notblank"`
	CustomerName  string `json:"customerName"  validate:"notblank"`
}

type PrescriptionService struct {
	prescriptions repositories.PrescriptionRepository
	disk          storage.Disk
	events        *event.Bus
	maxBytes      int64
}

func NewPrescriptionService(prescriptions repositories.PrescriptionRepository, disk storage.Disk,
	events *event.Bus, maxBytes int64) *PrescriptionService {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &PrescriptionService{prescriptions: prescriptions, disk: disk, events: events, maxBytes: maxBytes}
}

// Upload validates and stores a prescription. Nothing is written to the disk
// until validation has passed, and the file is removed again if the record
// cannot be saved.
func (s *PrescriptionService) Upload(ctx context.Context, in UploadInput) (models.Prescription, error) {
	if in.File == nil {
		return models.Prescription{}, apperr.ValidationFields("No prescription file uploaded", map[string]string{
			"prescription": "The prescription file is required.",
		})
	}
	in.Pharmacy = strings.TrimSpace(in.Pharmacy)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if err := invalid(in, "All fields are required"); err != nil {
		return models.Prescription{}, err
	}

	data, err := io.ReadAll(io.LimitReader(in.File, s.maxBytes+1))
	if err != nil {
		return models.Prescription{}, apperr.Internal("Failed to upload prescription", err)
	}
	if int64(len(data)) > s.maxBytes {
		return models.Prescription{}, apperr.ValidationFields("File is too large", map[string]string{
			"prescription": fmt.Sprintf("The prescription may not be greater than %d bytes.", s.maxBytes),
		})
	}
	if len(data) == 0 {
		return models.Prescription{}, apperr.ValidationFields("No prescription file uploaded", map[string]string{
			"prescription": "The prescription file is empty.",
		})
	}

	mt := mimetype.Detect(data)
	ext, ok := allowedUploads[mt.String()]
	if !ok {
		ext, ok = allowedUploads[baseType(mt.String())]
	}
	if !ok {
		return models.Prescription{}, apperr.ValidationFields("Unsupported file type", map[string]string{
			"prescription": "The prescription must be a JPEG, PNG, WebP or PDF file.",
		})
	}

	key := prescriptionKeyPrefix + uuid.NewString() + ext
	if err := s.disk.Put(ctx, key, bytes.NewReader(data), baseType(mt.String())); err != nil {
		return models.Prescription{}, apperr.Internal("Failed to upload prescription", err)
	}

	p := models.Prescription{
		Pharmacy:      in.Pharmacy,
		CustomerEmail: in.CustomerEmail,
		CustomerName:  in.CustomerName,
		File:          key,
		Status:        models.PrescriptionPending,
	}
	if err := s.prescriptions.Create(ctx, &p); err != nil {
		if derr := s.disk.Delete(ctx, key); derr != nil {
			logger.WithCtx(ctx).Error("orphaned prescription file", "key", key, "error", derr)
			return models.Prescription{}, apperr.Internal("Failed to upload prescription",
				errors.Join(err, fmt.Errorf("remove %s: %w", key, derr)))
		}
		return models.Prescription{}, apperr.Internal("Failed to upload prescription", err)
	}

	p.FileURL = s.disk.URL(key)
	metrics.PrescriptionsUploaded.Inc()
	s.events.Fire(event.PrescriptionUploaded, p.Pharmacy, p)
	return p, nil
}

// ListByPharmacy matches name as a literal, case-insensitive substring of
// the pharmacy, newest first, with each file resolved to its public URL.
func (s *PrescriptionService) ListByPharmacy(ctx context.Context, name string) ([]models.Prescription, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Pharmacy name is required")
	}

	out, err := s.prescriptions.SearchByPharmacy(ctx, name)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch prescriptions", err)
	}
	for i := range out {
		if key := storage.NormalizeKey(out[i].File); key != "" {
			out[i].FileURL = s.disk.URL(key)
		}
	}
	return out, nil
}

// baseType strips parameters such as "; charset=utf-8".
func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(t)
}

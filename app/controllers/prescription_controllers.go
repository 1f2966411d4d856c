package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/ctx"
	"github.com/shashiranjanraj/medcart/pkg/logger"
)

// multipartMemory is how much of a form is kept in memory before spilling
// to temp files.
const multipartMemory = 1 << 20

type PrescriptionController struct {
	svc      *services.PrescriptionService
	maxBytes int64
}

func NewPrescriptionController(svc *services.PrescriptionService, maxBytes int64) *PrescriptionController {
	return &PrescriptionController{svc: svc, maxBytes: maxBytes}
}

// Store handles the multipart upload; the file is in the "prescription" field.
func (pc *PrescriptionController) Store(c *ctx.Context) {
	// Leave room for the text fields and part headers.
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, pc.maxBytes+multipartMemory)

	err := c.R.ParseMultipartForm(multipartMemory)
	if c.R.MultipartForm != nil {
		defer func() {
			if err := c.R.MultipartForm.RemoveAll(); err != nil {
				logger.WithCtx(c.Context()).Warn("multipart cleanup failed", "error", err)
			}
		}()
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		c.Fail(apperr.ValidationFields("File is too large", map[string]string{
			"prescription": fmt.Sprintf("The prescription may not be greater than %d bytes.", pc.maxBytes),
		}))
		return
	case err != nil && !errors.Is(err, http.ErrNotMultipart):
		c.Error(http.StatusBadRequest, "Invalid multipart form")
		return
	}

	input := services.UploadInput{
		Pharmacy:      c.R.FormValue("pharmacy"),
		CustomerEmail: c.R.FormValue("customerEmail"),
		CustomerName:  c.R.FormValue("customerName"),
	}

	if c.R.MultipartForm != nil {
		if f, _, ferr := c.R.FormFile("prescription"); ferr == nil {
			defer f.Close()
			input.File = f
		}
	}

	p, err := pc.svc.Upload(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Prescription uploaded successfully", p)
}

// ByPharmacy handles GET /api/prescriptions/pharmacy/{name}.
func (pc *PrescriptionController) ByPharmacy(c *ctx.Context) {
	list, err := pc.svc.ListByPharmacy(c.Context(), c.Param("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(list, len(list))
}

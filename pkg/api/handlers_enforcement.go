package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/ethpandaops/parkoor/pkg/store"
	"github.com/ethpandaops/parkoor/pkg/verdict"
	"github.com/sirupsen/logrus"
)

const (
	adminVehicleLimit   = 200
	adminViolationLimit = 100

	// multipartMemory is how much of an upload is buffered in memory
	// before spilling to temporary files.
	multipartMemory = 8 << 20
)

type adminResponse struct {
	SiteCode   string            `json:"site_code"`
	Vehicles   []store.Vehicle   `json:"vehicles"`
	Violations []store.Violation `json:"violations"`
}

// handleCheckPlate evaluates a plate against the site's registrations.
func (s *server) handleCheckPlate(w http.ResponseWriter, r *http.Request) {
	plate := verdict.NormalizePlate(r.URL.Query().Get("plate"))
	if plate == "" {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"plate is required"})

		return
	}

	siteCode := s.resolveSite(r)

	vehicle, err := s.store.GetVehicle(r.Context(), siteCode, plate)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.writeError(w, err)

			return
		}

		vehicle = nil
	}

	result := verdict.Evaluate(plate, vehicle, verdict.Today(s.now(), s.loc))
	s.metrics.observeCheck(result.Verdict)

	s.log.WithFields(logrus.Fields{
		"site":    siteCode,
		"verdict": result.Verdict,
	}).Debug("Plate checked")

	writeJSON(w, http.StatusOK, result)
}

// handleUploadViolation stores an evidence photo and appends a violation
// record pointing at it. The photo is fully written before the row is
// inserted.
func (s *server) handleUploadViolation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				errorResponse{"upload too large"})

			return
		}

		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid multipart form"})

		return
	}

	defer func() { _ = r.MultipartForm.RemoveAll() }()

	v, err := violationFromForm(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	photo, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"photo is required"})

		return
	}

	defer func() { _ = photo.Close() }()

	photoPath, err := s.evidence.Put(r.Context(), header.Filename, photo)
	if err != nil {
		s.writeError(w, err)

		return
	}

	v.SiteCode = s.resolveSite(r)
	v.PhotoPath = &photoPath

	if err := s.store.CreateViolation(r.Context(), v); err != nil {
		s.log.WithField("photo_path", photoPath).
			Warn("Violation insert failed after photo was stored")
		s.writeError(w, err)

		return
	}

	s.metrics.observeViolation(verdict.Verdict(v.Verdict))

	s.log.WithFields(logrus.Fields{
		"site":    v.SiteCode,
		"id":      v.ID,
		"verdict": v.Verdict,
	}).Info("Violation recorded")

	writeJSON(w, http.StatusOK, v)
}

// violationFromForm reads the free-form violation fields. Empty optional
// fields are stored as NULL.
func violationFromForm(r *http.Request) (*store.Violation, error) {
	plate := verdict.NormalizePlate(r.FormValue("plate"))
	if plate == "" {
		return nil, invalidInput("plate is required")
	}

	vd, err := verdict.Parse(r.FormValue("verdict"))
	if err != nil {
		return nil, invalidInput(err.Error())
	}

	lat, err := optionalFloat(r.FormValue("lat"))
	if err != nil {
		return nil, invalidInput("lat must be a number")
	}

	lng, err := optionalFloat(r.FormValue("lng"))
	if err != nil {
		return nil, invalidInput("lng must be a number")
	}

	return &store.Violation{
		Plate:     plate,
		Verdict:   string(vd),
		RuleCode:  optionalString(r.FormValue("rule_code")),
		Location:  optionalString(r.FormValue("location")),
		Memo:      optionalString(r.FormValue("memo")),
		Inspector: optionalString(r.FormValue("inspector")),
		Lat:       lat,
		Lng:       lng,
	}, nil
}

// handleAdmin returns the current site's most recent vehicles and
// violations.
func (s *server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	siteCode := s.resolveSite(r)

	vehicles, err := s.store.ListRecentVehicles(r.Context(), siteCode, adminVehicleLimit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	violations, err := s.store.ListRecentViolations(r.Context(), siteCode, adminViolationLimit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, adminResponse{
		SiteCode:   siteCode,
		Vehicles:   vehicles,
		Violations: violations,
	})
}

func invalidInput(msg string) error {
	return &inputError{msg: msg}
}

// inputError is a client mistake reported back verbatim.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return auth.ErrInvalidInput }

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	return &v
}

func optionalFloat(v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}

	// ParseFloat accepts NaN and Inf, which cannot be encoded as JSON.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite value %q", v)
	}

	return &f, nil
}

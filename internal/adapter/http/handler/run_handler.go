package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/adapter/http/dto"
	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
)

const maxRequestBytes = 1 << 20

// RunService defines the behavior needed by RunHandler.
type RunService interface {
	CreateRun(ctx context.Context, opts usecase.GenerateOptions) (*domain.Dataset, error)
	GetRun(ctx context.Context, runID string) (*domain.Dataset, error)
	ListEntries(ctx context.Context, runID string, f usecase.EntryFilter) ([]domain.LedgerEntry, error)
	ListAccounts(ctx context.Context, runID string) ([]*domain.Account, error)
}

// RunHandler handles generation run requests.
type RunHandler struct {
	runUC    RunService
	defaults usecase.GenerateOptions
	logger   zerolog.Logger
}

// NewRunHandler creates a new RunHandler. Fields omitted from a request take
// their value from defaults.
func NewRunHandler(runUC RunService, defaults usecase.GenerateOptions, logger zerolog.Logger) *RunHandler {
	return &RunHandler{runUC: runUC, defaults: defaults, logger: logger}
}

// Create generates a new dataset.
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRunRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	ds, err := h.runUC.CreateRun(r.Context(), req.ToUseCaseInput(h.defaults))
	if err != nil {
		status := mapDomainError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("generation failed")
		}
		writeError(w, status, "failed to generate dataset", err.Error())
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+ds.RunID)
	writeJSON(w, http.StatusCreated, dto.RunFromDomain(ds))
}

// Get returns the summary of a run.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	ds, err := h.runUC.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get run", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(ds))
}

// ListEntries lists the ledger entries of a run. It accepts laundering,
// account, limit and offset query parameters.
func (h *RunHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	filter := usecase.EntryFilter{
		Laundering: parseBoolQuery(r, "laundering"),
		AccountID:  r.URL.Query().Get("account"),
		Limit:      parseIntQuery(r, "limit", usecase.DefaultEntryLimit),
		Offset:     parseIntQuery(r, "offset", 0),
	}.Normalize()

	entries, err := h.runUC.ListEntries(r.Context(), runID, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryListResponse{
		RunID:   runID,
		Entries: entries,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// ListAccounts lists the accounts of a run. flagged=true keeps launderers
// only.
func (h *RunHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.runUC.ListAccounts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	if flagged := parseBoolQuery(r, "flagged"); flagged != nil {
		kept := make([]*domain.Account, 0, len(accounts))
		for _, a := range accounts {
			if a.Launderer == *flagged {
				kept = append(kept, a)
			}
		}
		accounts = kept
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

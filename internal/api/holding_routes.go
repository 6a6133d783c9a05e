package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kjannette/holdings-tracker/internal/models"
	"github.com/kjannette/holdings-tracker/internal/repository"
)

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var in models.HoldingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h, err := s.holdings.Insert(r.Context(), in)
	if err != nil {
		s.log.Error("add holding", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add holding")
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.holdings.ListAll(r.Context())
	if err != nil {
		s.log.Error("list holdings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch holdings")
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	writeJSON(w, http.StatusOK, holdings)
}

func (s *Server) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch models.HoldingPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h, err := s.holdings.UpdateByID(r.Context(), id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	if err != nil {
		s.log.Error("update holding", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update holding")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.holdings.DeleteByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	if err != nil {
		s.log.Error("delete holding", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete holding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

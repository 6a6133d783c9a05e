package api

import (
	"net/http"

	"go.uber.org/zap"
)

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	v, err := s.valuator.Valuate(r.Context())
	if err != nil {
		s.log.Error("fetch stock prices", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch stock prices")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

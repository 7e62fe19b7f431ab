package main

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/api"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/db"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/loyalty"
)

// Service is the business registry: the metadata store that decorates
// ledger party ids with display names and categories. Reads only; rows
// are written by the business service during onboarding.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

func (s *Service) ListBusinessesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`SELECT canton_party_id, business_name, category FROM business_db.businesses ORDER BY created_at`)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query businesses")
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list businesses", "")
		return
	}
	defer rows.Close()

	businesses := make([]loyalty.BusinessMetadata, 0)
	for rows.Next() {
		var b loyalty.BusinessMetadata
		if err := rows.Scan(&b.CantonPartyID, &b.BusinessName, &b.Category); err != nil {
			s.logger.Error().Err(err).Msg("failed to scan business row")
			continue
		}
		businesses = append(businesses, b)
	}

	api.WriteSuccess(w, http.StatusOK, businesses)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger("registry-service", cfg.Env)

	database, err := db.Connect(cfg.DB, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	svc := &Service{db: database, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/health", svc.HealthHandler).Methods("GET")
	r.HandleFunc("/businesses", svc.ListBusinessesHandler).Methods("GET")

	logger.Info().Str("port", cfg.Port).Msg("registry service running")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

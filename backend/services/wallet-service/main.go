package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/cantonclient"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/api"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/db"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/migrations"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/loyalty"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/services/wallet-service/models"
)

const sessionTTL = 24 * time.Hour

// Service is the customer wallet backend. All balance state lives on
// the ledger; here a session is just a signed claim to act as the
// phone-derived customer party.
type Service struct {
	canton *cantonclient.Client
	ops    *loyalty.Ops
	views  *loyalty.Views
	signer *loyalty.VoucherSigner
	db     *sql.DB
	secret []byte
	logger zerolog.Logger
}

func (s *Service) SessionHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.Phone == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "phone is required", "")
		return
	}

	hint := cantonclient.PhonePartyHint(req.Phone)
	party := hint
	if allocated, err := s.canton.AllocateParty(r.Context(), req.Phone, hint); err != nil {
		// Already-allocated parties fail here; the deterministic hint
		// identifies them regardless.
		s.logger.Warn().Err(err).Str("hint", hint).Msg("party allocation failed, assuming existing party")
	} else {
		party = allocated.Party
	}

	token, expiresAt, err := common.NewSessionToken(s.secret, party, "customer", sessionTTL)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to create session", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, models.SessionResponse{Party: party, Token: token, ExpiresAt: expiresAt})
}

func (s *Service) GetTokensHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	tokens, err := s.views.CustomerTokens(r.Context(), claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Str("customer", claims.Party).Msg("customer tokens failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to load wallet", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, tokens)
}

func (s *Service) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	summary, err := s.views.Summary(r.Context(), claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Str("customer", claims.Party).Msg("wallet summary failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to load wallet summary", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, summary)
}

func (s *Service) GetRewardsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	rewards, err := s.views.AvailableRewards(r.Context(), claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Str("customer", claims.Party).Msg("available rewards failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to load rewards", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, rewards)
}

func (s *Service) RedeemHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	var req models.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.TokenContractID == "" || req.RewardID == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "token_contract_id and reward_id are required", "")
		return
	}

	// No client-side balance check: the ledger decides sufficiency.
	result, err := s.ops.RedeemReward(r.Context(), loyalty.RedeemRewardInput{
		CustomerParty:   claims.Party,
		TokenContractID: req.TokenContractID,
		RewardID:        req.RewardID,
		RewardName:      req.RewardName,
		TokenCost:       req.TokenCost,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("customer", claims.Party).Str("reward", req.RewardID).Msg("redeem failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Redemption rejected by ledger", "")
		return
	}

	if _, err := s.db.Exec(`
		INSERT INTO wallet_db.redemptions (customer_party, business_party, reward_id, reward_name, token_cost)
		VALUES ($1, $2, $3, $4, $5)`,
		claims.Party, req.BusinessParty, req.RewardID, req.RewardName, req.TokenCost); err != nil {
		s.logger.Error().Err(err).Msg("failed to record redemption")
	}

	api.WriteSuccess(w, http.StatusOK, result)
}

func (s *Service) TransferHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.TokenContractID == "" || req.RecipientParty == "" || req.Amount <= 0 {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "token_contract_id, recipient_party and a positive amount are required", "")
		return
	}

	result, err := s.ops.TransferTokens(r.Context(), loyalty.TransferTokensInput{
		CustomerParty:   claims.Party,
		TokenContractID: req.TokenContractID,
		RecipientParty:  req.RecipientParty,
		Amount:          req.Amount,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("customer", claims.Party).Msg("transfer failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Transfer rejected by ledger", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, result)
}

func (s *Service) ScanHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.Phone == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "phone is required", "")
		return
	}

	if err := s.signer.Verify(req.Voucher, time.Now()); err != nil {
		s.logger.Warn().Err(err).Msg("voucher rejected")
		api.WriteError(w, http.StatusUnauthorized, "invalid_voucher", "Voucher rejected", "")
		return
	}

	voucher := req.Voucher.Voucher
	result, err := s.ops.IssueTokens(r.Context(), loyalty.IssueTokensInput{
		BusinessParty:     voucher.BusinessParty,
		ProgramContractID: voucher.ProgramContractID,
		CustomerPhone:     req.Phone,
		Amount:            voucher.Amount,
		Reason:            voucher.Reason,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("reference", voucher.Reference).Msg("voucher issuance failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to issue tokens", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, result)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger("wallet-service", cfg.Env)

	database, err := db.Connect(cfg.DB, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	migrationsDir := cfg.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "backend/migrations/wallet"
	}
	if err := migrations.RunMigrations(database, migrationsDir, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	canton, err := cantonclient.New(cantonclient.Config{
		BaseURL: cfg.CantonURL,
		Token:   cfg.CantonToken,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build canton client")
	}

	signer, err := loyalty.NewVoucherSigner(cfg.VoucherSeed)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build voucher signer")
	}

	svc := &Service{
		canton: canton,
		ops:    loyalty.NewOps(canton, logger),
		views:  loyalty.NewViews(canton, loyalty.NewMetadataClient(cfg.RegistryURL)),
		signer: signer,
		db:     database,
		secret: []byte(cfg.JWTSecret),
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", svc.HealthHandler).Methods("GET")
	r.HandleFunc("/auth/session", svc.SessionHandler).Methods("POST")

	authed := r.NewRoute().Subrouter()
	authed.Use(common.AuthMiddleware(svc.secret))
	authed.HandleFunc("/wallet/tokens", common.RequireRole("customer", svc.GetTokensHandler)).Methods("GET")
	authed.HandleFunc("/wallet/summary", common.RequireRole("customer", svc.GetSummaryHandler)).Methods("GET")
	authed.HandleFunc("/wallet/rewards", common.RequireRole("customer", svc.GetRewardsHandler)).Methods("GET")
	authed.HandleFunc("/wallet/redeem", common.RequireRole("customer", svc.RedeemHandler)).Methods("POST")
	authed.HandleFunc("/wallet/transfer", common.RequireRole("customer", svc.TransferHandler)).Methods("POST")
	authed.HandleFunc("/wallet/scan", common.RequireRole("customer", svc.ScanHandler)).Methods("POST")

	logger.Info().Str("port", cfg.Port).Msg("wallet service running")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

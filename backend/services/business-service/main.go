package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/cantonclient"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/api"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/db"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/common/migrations"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/pkg/loyalty"
	"github.com/kanaiyathacker1980/CantonNetwork/backend/services/business-service/models"
)

const sessionTTL = 24 * time.Hour

// Service is the dashboard backend: it runs the business workflows
// against the ledger and records off-ledger bookkeeping rows as a side
// channel. Bookkeeping failures never roll back a committed ledger
// operation.
type Service struct {
	ops    *loyalty.Ops
	views  *loyalty.Views
	signer *loyalty.VoucherSigner
	db     *sql.DB
	secret []byte
	logger zerolog.Logger
}

func (s *Service) RegisterBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.BusinessName == "" || req.Email == "" || req.ProgramName == "" {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "business_name, email and program_name are required", "")
		return
	}

	result, err := s.ops.RegisterBusiness(r.Context(), loyalty.RegisterBusinessInput{
		BusinessName: req.BusinessName,
		Category:     req.Category,
		Location:     req.Location,
		Email:        req.Email,
		Phone:        req.Phone,
		ProgramName:  req.ProgramName,
		TokenName:    req.TokenName,
		TokenSymbol:  req.TokenSymbol,
		Description:  req.Description,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("business", req.BusinessName).Msg("register business failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to register business on ledger", "")
		return
	}
	if result.ProgramID == "" {
		s.logger.Warn().Str("party", result.BusinessParty).Msg("registration incomplete: program contract not located")
	}

	// Bookkeeping side channel; the ledger operation already committed.
	if _, err := s.db.Exec(`
		INSERT INTO business_db.businesses (
			canton_party_id, business_name, category, location, email, phone,
			program_name, token_name, token_symbol, description, canton_program_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		result.BusinessParty, req.BusinessName, req.Category, req.Location, req.Email, req.Phone,
		req.ProgramName, req.TokenName, req.TokenSymbol, req.Description, result.ProgramID); err != nil {
		s.logger.Error().Err(err).Str("party", result.BusinessParty).Msg("failed to record business")
	}

	token, expiresAt, err := common.NewSessionToken(s.secret, result.BusinessParty, "business", sessionTTL)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to create session", "")
		return
	}

	api.WriteSuccess(w, http.StatusCreated, models.RegisterBusinessResponse{
		BusinessParty:     result.BusinessParty,
		BusinessProfileID: result.BusinessProfileID,
		ProgramID:         result.ProgramID,
		Token:             token,
		ExpiresAt:         expiresAt,
	})
}

func (s *Service) IssueTokensHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	var req models.IssueTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.ProgramContractID == "" || req.CustomerPhone == "" || req.Amount <= 0 {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "program_contract_id, customer_phone and a positive amount are required", "")
		return
	}

	result, err := s.ops.IssueTokens(r.Context(), loyalty.IssueTokensInput{
		BusinessParty:     claims.Party,
		ProgramContractID: req.ProgramContractID,
		CustomerPhone:     req.CustomerPhone,
		Amount:            req.Amount,
		Reason:            req.Reason,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("business", claims.Party).Msg("issue tokens failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to issue tokens", "")
		return
	}

	if _, err := s.db.Exec(`
		INSERT INTO business_db.issuances (business_party, customer_party, amount, reason, token_contract_id)
		VALUES ($1, $2, $3, $4, $5)`,
		claims.Party, result.CustomerParty, req.Amount, req.Reason, result.TokenContractID); err != nil {
		s.logger.Error().Err(err).Msg("failed to record issuance")
	}
	if req.CustomerName != "" {
		if _, err := s.db.Exec(`
			INSERT INTO business_db.customers (canton_party_id, business_party, full_name, phone)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (canton_party_id) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone`,
			result.CustomerParty, claims.Party, req.CustomerName, req.CustomerPhone); err != nil {
			s.logger.Error().Err(err).Msg("failed to record customer")
		}
	}

	api.WriteSuccess(w, http.StatusOK, result)
}

func (s *Service) CreateRewardHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	var req models.CreateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.Name == "" || req.TokenCost <= 0 {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "name and a positive token_cost are required", "")
		return
	}
	if req.RewardID == "" {
		req.RewardID = "reward-" + uuid.NewString()
	}

	contractID, err := s.ops.CreateReward(r.Context(), loyalty.CreateRewardInput{
		BusinessParty: claims.Party,
		RewardID:      req.RewardID,
		Name:          req.Name,
		Description:   req.Description,
		TokenCost:     req.TokenCost,
		Category:      req.Category,
		Inventory:     req.Inventory,
		ImageURL:      req.ImageURL,
		Terms:         req.Terms,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("business", claims.Party).Msg("create reward failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to create reward", "")
		return
	}

	if _, err := s.db.Exec(`
		INSERT INTO business_db.rewards (reward_id, business_party, canton_contract_id, name, description, token_cost, category, inventory)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.RewardID, claims.Party, contractID, req.Name, req.Description, req.TokenCost, req.Category, req.Inventory); err != nil {
		s.logger.Error().Err(err).Msg("failed to record reward")
	}

	api.WriteSuccess(w, http.StatusCreated, models.CreateRewardResponse{ContractID: contractID, RewardID: req.RewardID})
}

func (s *Service) UpdateRewardHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())
	contractID := mux.Vars(r)["contractId"]

	var req models.UpdateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}

	result, err := s.ops.UpdateReward(r.Context(), claims.Party, contractID, loyalty.RewardUpdates{
		Name:        req.Name,
		Description: req.Description,
		TokenCost:   req.TokenCost,
		Inventory:   req.Inventory,
		IsActive:    req.IsActive,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("contract", contractID).Msg("update reward failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to update reward", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, result)
}

func (s *Service) GetRewardsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	contracts, err := s.views.BusinessRewards(r.Context(), claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Msg("query rewards failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to query rewards", "")
		return
	}

	type reward struct {
		ContractID string `json:"contract_id"`
		loyalty.RewardPayload
	}
	rewards := make([]reward, 0, len(contracts))
	for _, contract := range contracts {
		var payload loyalty.RewardPayload
		if err := json.Unmarshal(contract.Payload, &payload); err != nil {
			s.logger.Error().Err(err).Str("contract", contract.ContractID).Msg("bad reward payload")
			continue
		}
		rewards = append(rewards, reward{ContractID: contract.ContractID, RewardPayload: payload})
	}

	api.WriteSuccess(w, http.StatusOK, rewards)
}

func (s *Service) GetCustomersHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	contracts, err := s.views.BusinessCustomers(r.Context(), claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Msg("query customers failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to query customers", "")
		return
	}

	// Contact details live in bookkeeping, not on the ledger.
	contacts := map[string]struct{ name, phone string }{}
	rows, err := s.db.Query(`SELECT canton_party_id, full_name, phone FROM business_db.customers WHERE business_party = $1`, claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load customer contacts")
	} else {
		defer rows.Close()
		for rows.Next() {
			var party, name, phone string
			if err := rows.Scan(&party, &name, &phone); err == nil {
				contacts[party] = struct{ name, phone string }{name, phone}
			}
		}
	}

	customers := make([]models.Customer, 0, len(contracts))
	for _, contract := range contracts {
		var payload loyalty.TokenBalancePayload
		if err := json.Unmarshal(contract.Payload, &payload); err != nil {
			s.logger.Error().Err(err).Str("contract", contract.ContractID).Msg("bad balance payload")
			continue
		}
		customer := models.Customer{
			ContractID: contract.ContractID,
			Party:      payload.Customer,
			Name:       "Unknown",
			Phone:      "Unknown",
			Balance:    payload.Balance,
		}
		if contact, ok := contacts[payload.Customer]; ok {
			customer.Name = contact.name
			customer.Phone = contact.phone
		}
		customers = append(customers, customer)
	}

	api.WriteSuccess(w, http.StatusOK, customers)
}

func (s *Service) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	stats, err := s.views.Stats(r.Context(), claims.Party)
	if err != nil {
		s.logger.Error().Err(err).Msg("stats failed")
		api.WriteError(w, http.StatusBadGateway, "ledger_error", "Failed to compute stats", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, stats)
}

func (s *Service) IssueVoucherHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := common.ClaimsFromContext(r.Context())

	var req models.VoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", "")
		return
	}
	if req.ProgramContractID == "" || req.Amount <= 0 {
		api.WriteError(w, http.StatusBadRequest, "invalid_request", "program_contract_id and a positive amount are required", "")
		return
	}

	signed, err := s.signer.Sign(loyalty.IssuanceVoucher{
		BusinessParty:     claims.Party,
		ProgramContractID: req.ProgramContractID,
		Amount:            req.Amount,
		Reason:            req.Reason,
		Reference:         uuid.NewString(),
		ExpiresAt:         time.Now().Add(15 * time.Minute).UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("voucher signing failed")
		api.WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to sign voucher", "")
		return
	}

	api.WriteSuccess(w, http.StatusOK, signed)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger("business-service", cfg.Env)

	database, err := db.Connect(cfg.DB, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	migrationsDir := cfg.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "backend/migrations/business"
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
		ops:    loyalty.NewOps(canton, logger),
		views:  loyalty.NewViews(canton, loyalty.NewMetadataClient(cfg.RegistryURL)),
		signer: signer,
		db:     database,
		secret: []byte(cfg.JWTSecret),
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", svc.HealthHandler).Methods("GET")
	r.HandleFunc("/business", svc.RegisterBusinessHandler).Methods("POST")

	authed := r.NewRoute().Subrouter()
	authed.Use(common.AuthMiddleware(svc.secret))
	authed.HandleFunc("/tokens/issue", common.RequireRole("business", svc.IssueTokensHandler)).Methods("POST")
	authed.HandleFunc("/rewards", common.RequireRole("business", svc.CreateRewardHandler)).Methods("POST")
	authed.HandleFunc("/rewards", common.RequireRole("business", svc.GetRewardsHandler)).Methods("GET")
	authed.HandleFunc("/rewards/{contractId}", common.RequireRole("business", svc.UpdateRewardHandler)).Methods("PATCH")
	authed.HandleFunc("/customers", common.RequireRole("business", svc.GetCustomersHandler)).Methods("GET")
	authed.HandleFunc("/stats", common.RequireRole("business", svc.GetStatsHandler)).Methods("GET")
	authed.HandleFunc("/qr/issue", common.RequireRole("business", svc.IssueVoucherHandler)).Methods("POST")

	logger.Info().Str("port", cfg.Port).Msg("business service running")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

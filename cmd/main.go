package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/YarnBridge/api-trading/internal/auth"
	"github.com/YarnBridge/api-trading/internal/blockbooking"
	"github.com/YarnBridge/api-trading/internal/config"
	"github.com/YarnBridge/api-trading/internal/contract"
	"github.com/YarnBridge/api-trading/internal/general"
	"github.com/YarnBridge/api-trading/internal/middleware"
	"github.com/YarnBridge/api-trading/internal/notification"
	"github.com/YarnBridge/api-trading/internal/supplychainterm"
	"github.com/YarnBridge/api-trading/internal/user"
	"github.com/YarnBridge/api-trading/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("erro ao carregar configuração:", err)
	}

	var logHandler slog.Handler
	if cfg.LogFormat == "text" {
		logHandler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(logHandler))

	if cfg.JWTSecret != "" {
		auth.SetSecret([]byte(cfg.JWTSecret))
	}

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("erro ao conectar no banco:", err)
	}

	// AutoMigrate para todos os modelos
	if err := database.AutoMigrate(
		&user.User{},
		&general.Inquiry{},
		&general.Proposal{},
		&blockbooking.Inquiry{},
		&blockbooking.Proposal{},
		&contract.Contract{},
		&supplychainterm.Term{},
	); err != nil {
		log.Fatal("erro no AutoMigrate:", err)
	}

	notifier := notification.NewClient(cfg.AlertWebhookURL)

	// Services e handlers
	userHandler := user.NewHandler(database)
	generalService := general.NewService(database, notifier)
	generalHandler := general.NewHandler(generalService)
	bbService := blockbooking.NewService(database, notifier)
	bbHandler := blockbooking.NewHandler(bbService)
	contractService := contract.NewService(database, map[string]contract.ProposalBook{
		contract.TypeGeneral:      general.NewBook(),
		contract.TypeBlockBooking: blockbooking.NewBook(),
	})
	contractHandler := contract.NewHandler(contractService)
	termService := supplychainterm.NewService(database)
	termHandler := supplychainterm.NewHandler(termService)

	r := mux.NewRouter()

	// Rotas públicas
	r.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", userHandler.Login).Methods("POST")

	// Rotas autenticadas
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	api.HandleFunc("/users/me/profile", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/users/me/certificates", userHandler.AttachCertificate).Methods("POST")
	api.HandleFunc("/users/suppliers", userHandler.ListSuppliers).Methods("GET")

	// Cadeia general (inquiries nominadas)
	api.Handle("/general/inquiries",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(generalHandler.CreateInquiries))).Methods("POST")
	api.HandleFunc("/general/inquiries", generalHandler.ListInquiries).Methods("GET")
	api.HandleFunc("/general/inquiries/{id}", generalHandler.GetInquiry).Methods("GET")
	api.Handle("/general/inquiries/{id}/close",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(generalHandler.CloseInquiry))).Methods("PATCH")
	api.HandleFunc("/general/inquiries/{id}/proposals", generalHandler.ListProposalsForInquiry).Methods("GET")
	api.Handle("/general/proposals",
		auth.RequireBusinessType(auth.BusinessTypeSupplier, http.HandlerFunc(generalHandler.SubmitProposals))).Methods("POST")
	api.HandleFunc("/general/proposals", generalHandler.ListProposals).Methods("GET")
	api.Handle("/general/proposals/{id}/accept",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(generalHandler.AcceptProposal))).Methods("PATCH")
	api.Handle("/general/proposals/{id}/reject",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(generalHandler.RejectProposal))).Methods("PATCH")

	// Cadeia block booking (broadcast)
	api.Handle("/blockbooking/inquiries",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(bbHandler.CreateInquiry))).Methods("POST")
	api.HandleFunc("/blockbooking/inquiries", bbHandler.ListInquiries).Methods("GET")
	api.HandleFunc("/blockbooking/inquiries/{id}", bbHandler.GetInquiry).Methods("GET")
	api.Handle("/blockbooking/inquiries/{id}/decline",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(bbHandler.DeclineInquiry))).Methods("PATCH")
	api.HandleFunc("/blockbooking/inquiries/{id}/proposals", bbHandler.ListProposalsForInquiry).Methods("GET")
	api.Handle("/blockbooking/proposals",
		auth.RequireBusinessType(auth.BusinessTypeSupplier, http.HandlerFunc(bbHandler.SubmitProposal))).Methods("POST")
	api.HandleFunc("/blockbooking/proposals", bbHandler.ListProposals).Methods("GET")
	api.Handle("/blockbooking/proposals/{id}/accept",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(bbHandler.AcceptProposal))).Methods("PATCH")

	// Contratos
	api.Handle("/contracts",
		auth.RequireBusinessType(auth.BusinessTypeSupplier, http.HandlerFunc(contractHandler.Send))).Methods("POST")
	api.HandleFunc("/contracts", contractHandler.ListActive).Methods("GET")
	api.HandleFunc("/contracts/running", contractHandler.ListRunning).Methods("GET")
	api.HandleFunc("/contracts/new", contractHandler.ListNew).Methods("GET")
	api.HandleFunc("/contracts/new/blockbooking", contractHandler.ListNewBlockBooking).Methods("GET")
	api.HandleFunc("/contracts/completed", contractHandler.ListCompleted).Methods("GET")
	api.HandleFunc("/contracts/monthly-plans", contractHandler.CreateMonthlyPlans).Methods("POST")
	api.HandleFunc("/contracts/{id}", contractHandler.GetByID).Methods("GET")
	api.Handle("/contracts/{id}/accept",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(contractHandler.Accept))).Methods("PATCH")
	api.HandleFunc("/contracts/{id}/so-document", contractHandler.AttachSODocument).Methods("PUT")
	api.HandleFunc("/contracts/{id}/monthly-plans", contractHandler.GetMonthlyPlans).Methods("GET")
	api.Handle("/contracts/{id}/monthly-plans/{planId}/reply",
		auth.RequireBusinessType(auth.BusinessTypeSupplier, http.HandlerFunc(contractHandler.ReplyMonthlyPlan))).Methods("PATCH")
	api.Handle("/contracts/{id}/monthly-plans/{planId}/resolve",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(contractHandler.ResolveMonthlyPlan))).Methods("PATCH")

	// Supply chain terms
	api.Handle("/supply-chain-terms/general",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(termHandler.CreateGeneral))).Methods("POST")
	api.HandleFunc("/supply-chain-terms/general", termHandler.GetGeneral).Methods("GET")
	api.Handle("/supply-chain-terms/general/{id}",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(termHandler.UpdateGeneral))).Methods("PUT")
	api.Handle("/supply-chain-terms",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(termHandler.CreateNew))).Methods("POST")
	api.HandleFunc("/supply-chain-terms", termHandler.ListScoped).Methods("GET")
	api.Handle("/supply-chain-terms/{id}/renew",
		auth.RequireBusinessType(auth.BusinessTypeCustomer, http.HandlerFunc(termHandler.Renew))).Methods("PATCH")
	api.Handle("/supply-chain-terms/{id}/reply",
		auth.RequireBusinessType(auth.BusinessTypeSupplier, http.HandlerFunc(termHandler.Reply))).Methods("PATCH")
	api.HandleFunc("/supply-chain-terms/{id}/accept", termHandler.Accept).Methods("PATCH")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	})

	handler := middleware.RequestID(middleware.RequestLogger(corsHandler.Handler(r)))

	slog.Info("servidor iniciado", "address", cfg.ServerAddress)
	log.Fatal(http.ListenAndServe(cfg.ServerAddress, handler))
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intake-crm/config"
	"intake-crm/internal/handlers"
	"intake-crm/internal/repositories"
	"intake-crm/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Intake CRM API
// @version 1.0
// @description Conversational intake widget backend plus the back-office CRM (leads, kanban pipeline, admin users)
// @BasePath /api/v1
func main() {
	// Load config
	cfg := config.NewConfig()

	// Initialize database connection
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Repositórios
	leadRepo := repositories.NewMySQLLeadRepository(db)
	sessionRepo := repositories.NewMySQLSessionRepository(db)
	messageRepo := repositories.NewMySQLMessageRepository(db)
	projectRepo := repositories.NewMySQLProjectRepository(db)
	adminRepo := repositories.NewMySQLAdminRepository(db)

	// Serviços
	conversations := services.NewConversationManager()
	bridge := services.NewAutomationBridge(cfg.AutomationWebhookURL)
	intakeService := services.NewIntakeService(conversations, leadRepo, sessionRepo, messageRepo, projectRepo, bridge)
	pipelineService := services.NewPipelineService(projectRepo, leadRepo, sessionRepo, messageRepo)
	authService := services.NewAuthService(adminRepo, cfg.JWTSecret)

	// Handlers
	chatHandler := handlers.NewChatHandler(intakeService, cfg)
	adminHandler := handlers.NewAdminHandler(authService)
	pipelineHandler := handlers.NewPipelineHandler(pipelineService, leadRepo)

	router := mux.NewRouter().PathPrefix("/api/v1").Subrouter()

	// Rotas públicas do widget
	router.HandleFunc("/chat/start", chatHandler.StartChat).Methods("POST", "OPTIONS")
	router.HandleFunc("/chat/message", chatHandler.SendChatMessage).Methods("POST", "OPTIONS")
	router.HandleFunc("/chat/proxy", chatHandler.ChatProxy).Methods("POST", "OPTIONS")

	// Autenticação
	router.HandleFunc("/auth/login", adminHandler.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/auth/logout", adminHandler.Logout).Methods("POST", "OPTIONS")

	// Rota WebSocket
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	// Serve os arquivos estáticos do Swagger
	fs := http.FileServer(http.Dir("./docs"))
	router.PathPrefix("/swagger/").Handler(http.StripPrefix("/api/v1/swagger/", fs))

	// Configuração do Swagger UI
	router.PathPrefix("/swagger-ui/").Handler(httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%s/api/v1/swagger/swagger.json", cfg.Port)),
		httpSwagger.DeepLinking(true),
	))

	// Rotas protegidas do painel. O subrouter captura tudo que sobrou, então
	// precisa ser o último registro.
	admin := router.NewRoute().Subrouter()
	admin.Use(handlers.RequireAuth(authService))
	admin.HandleFunc("/auth/me", adminHandler.Me).Methods("GET", "OPTIONS")
	admin.HandleFunc("/admins", adminHandler.ListAdmins).Methods("GET", "OPTIONS")
	admin.HandleFunc("/admins", adminHandler.CreateAdmin).Methods("POST", "OPTIONS")
	admin.HandleFunc("/leads", pipelineHandler.GetLeads).Methods("GET", "OPTIONS")
	admin.HandleFunc("/leads/export", pipelineHandler.ExportLeads).Methods("GET", "OPTIONS")
	admin.HandleFunc("/sessions/{id}/transcript", pipelineHandler.GetSessionTranscript).Methods("GET", "OPTIONS")
	admin.HandleFunc("/projects", pipelineHandler.GetProjects).Methods("GET", "OPTIONS")
	admin.HandleFunc("/projects/{id}/status", pipelineHandler.UpdateProjectStatus).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/projects/{id}/advance", pipelineHandler.AdvanceProject).Methods("POST", "OPTIONS")
	admin.HandleFunc("/projects/{id}", pipelineHandler.UpdateProject).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/projects/{id}", pipelineHandler.DeleteProject).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/abandoned-carts", pipelineHandler.GetAbandonedCarts).Methods("GET", "OPTIONS")
	admin.HandleFunc("/dashboard/stats", pipelineHandler.GetDashboardStats).Methods("GET", "OPTIONS")

	mainRouter := mux.NewRouter()
	mainRouter.PathPrefix("/api/v1").Handler(router)

	// Configurar CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	handler := c.Handler(mainRouter)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	// Canal para sinais de interrupção
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Server is running on http://localhost:%s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop
	fmt.Println("\nShutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	fmt.Println("Server stopped successfully")
}

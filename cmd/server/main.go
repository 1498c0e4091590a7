package main

import (
	"log"

	"github.com/worldwideservice/agent-admin/internal/api"
	"github.com/worldwideservice/agent-admin/internal/config"
	"github.com/worldwideservice/agent-admin/internal/crm"
	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/documents"
	"github.com/worldwideservice/agent-admin/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	openai "github.com/sashabaranov/go-openai"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	database.SyncConfig(cfg)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		log.Printf("Catalog cache backed by Redis at %s", cfg.RedisAddr)
	}

	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		openaiClient = openai.NewClient(cfg.OpenAIAPIKey)
	}

	store, err := documents.NewStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Failed to init document store: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	crmClient := crm.NewClient(cfg)
	catalogs := crm.NewCatalogService(crmClient, rdb, openaiClient)

	agentHandler := api.NewAgentHandler(hub, store)
	triggerHandler := api.NewTriggerHandler(hub)
	chainHandler := api.NewChainHandler(hub)
	documentHandler := api.NewDocumentHandler(hub, store)
	catalogHandler := api.NewCatalogHandler(catalogs)
	kbHandler := api.NewKBHandler()
	logHandler := api.NewLogHandler()

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	apiGroup := r.Group("/api")
	{
		// Agent Routes
		apiGroup.GET("/agents", agentHandler.GetAgents)
		apiGroup.POST("/agents", agentHandler.CreateAgent)
		apiGroup.GET("/agents/:id", agentHandler.GetAgent)
		apiGroup.PATCH("/agents/:id", agentHandler.UpdateAgent)
		apiGroup.DELETE("/agents/:id", agentHandler.DeleteAgent)
		apiGroup.PATCH("/agents/:id/advanced-settings", agentHandler.UpdateAdvancedSettings)

		// Trigger Routes
		apiGroup.GET("/agents/:id/triggers", triggerHandler.GetTriggers)
		apiGroup.POST("/agents/:id/triggers", triggerHandler.CreateTrigger)
		apiGroup.PATCH("/agents/:id/triggers/:triggerId", triggerHandler.UpdateTrigger)
		apiGroup.DELETE("/agents/:id/triggers/:triggerId", triggerHandler.DeleteTrigger)
		apiGroup.POST("/agents/:id/triggers/:triggerId/toggle", triggerHandler.ToggleTrigger)
		apiGroup.POST("/agents/:id/triggers/:triggerId/actions/move", triggerHandler.MoveTriggerAction)

		// Chain Routes
		apiGroup.GET("/agents/:id/chains", chainHandler.GetChains)
		apiGroup.POST("/agents/:id/chains", chainHandler.CreateChain)
		apiGroup.PATCH("/agents/:id/chains/:chainId", chainHandler.UpdateChain)
		apiGroup.DELETE("/agents/:id/chains/:chainId", chainHandler.DeleteChain)
		apiGroup.POST("/agents/:id/chains/:chainId/toggle", chainHandler.ToggleChain)

		// Document Routes
		apiGroup.GET("/agents/:id/documents", documentHandler.GetDocuments)
		apiGroup.POST("/agents/:id/documents", documentHandler.UploadDocument)
		apiGroup.PATCH("/agents/:id/documents/:docId", documentHandler.PatchDocument)
		apiGroup.DELETE("/agents/:id/documents/:docId", documentHandler.DeleteDocument)

		// Catalog Routes
		apiGroup.GET("/catalogs/pipelines", catalogHandler.GetPipelines)
		apiGroup.GET("/catalogs/users", catalogHandler.GetUsers)
		apiGroup.GET("/catalogs/channels", catalogHandler.GetChannels)
		apiGroup.GET("/catalogs/salesbots", catalogHandler.GetSalesbots)
		apiGroup.GET("/catalogs/fields", catalogHandler.GetFields)
		apiGroup.GET("/catalogs/models", catalogHandler.GetModels)

		// Knowledge Base Routes
		apiGroup.GET("/kb/categories", kbHandler.GetCategories)
		apiGroup.GET("/kb/articles", kbHandler.GetArticles)

		// Audit Log Routes
		apiGroup.GET("/logs", logHandler.GetLogs)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

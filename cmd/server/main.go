package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"vmagma/config"
	"vmagma/controllers"
	"vmagma/db"
	"vmagma/middlewares"
	"vmagma/routes"
	"vmagma/services"
	"vmagma/websocket"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to MongoDB using the URI from the configuration
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Cognito.Region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	cognitoClient := cognitoidentityprovider.NewFromConfig(awsCfg)

	store := db.NewMongoStore(db.MongoDatabase)
	sessionManager := services.NewSessionManager(store)
	authService := services.NewAuthService(cognitoClient, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret, store, sessionManager)
	comunidadService := services.NewComunidadService(store)
	logrosService := services.NewLogrosService(store)
	gameLauncher := services.NewGameLauncher(serverRuntime{}, nil, nil, nil, cfg.Game.TestMode)

	controllers.Init(authService, sessionManager, comunidadService, logrosService, gameLauncher)
	controllers.InitStore(store)

	router := setupRouter(authService)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// serverRuntime is the backend's view of the launcher runtime. Deep links are
// built and handed to clients; nothing is ever opened server-side.
type serverRuntime struct{}

func (serverRuntime) EsNativo() bool                 { return false }
func (serverRuntime) Plataforma() services.Plataforma { return services.PlataformaWeb }

func setupRouter(authService *services.AuthService) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Public routes for authentication
	router.POST("/signup", routes.RegistroRouteHandler)
	router.POST("/login", routes.LoginRouteHandler)
	router.POST("/logout", routes.LogoutRouteHandler)
	router.POST("/verifyToken", routes.VerifyTokenRouteHandler)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware(authService))
	{
		auth.GET("/user/fetchprofile", routes.GetProfileRouteHandler)
		auth.PUT("/user/updateprofile", routes.UpdateProfileRouteHandler)

		routes.SetupComunidadRoutes(auth)
		routes.SetupLogrosRoutes(auth)
		routes.SetupLauncherRoutes(auth)

		// WebSocket endpoint for community events
		auth.GET("/ws", websocket.ComunidadWebSocketHandler)
	}

	return router
}

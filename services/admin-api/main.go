package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eduadmin/school-backend/pkg/accounts"
	"github.com/eduadmin/school-backend/pkg/apihelpers"
	"github.com/eduadmin/school-backend/pkg/mediastore"
	"github.com/eduadmin/school-backend/services/admin-api/apihandlers"

	jwthandling "github.com/eduadmin/school-backend/pkg/jwt-handling"
	smtp_client "github.com/eduadmin/school-backend/pkg/smtp-client"
)

func main() {
	smtpClients, err := smtp_client.NewSmtpClients(conf.SmtpServerConfig)
	if err != nil {
		slog.Error("Error initialising SMTP clients", slog.String("error", err.Error()))
		return
	}

	mediaStore, err := mediastore.NewMinioMediaStore(conf.MediaStoreConfig)
	if err != nil {
		slog.Error("Error connecting to media store", slog.String("error", err.Error()))
		return
	}

	issueToken := func(accountID string, role string) (string, error) {
		return jwthandling.GenerateNewAccountUserToken(
			sessionTokenExpiresIn,
			accountID,
			role,
			conf.AccountConfig.SessionTokenConfig.SignKey,
		)
	}

	accountServices := map[string]*accounts.Service{}
	for _, role := range []string{accounts.ROLE_ADMIN, accounts.ROLE_LIBRARIAN, accounts.ROLE_STAFF} {
		accountServices[role] = accounts.NewService(
			role,
			accountDBService.ForRole(role),
			smtpClients,
			mediaStore,
			issueToken,
		)
	}

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.AccountConfig.SessionTokenConfig.SignKey,
		sessionTokenExpiresIn,
		accountServices,
		studentDBService,
		conf.AccountConfig.UseSecureCookies,
	)
	v1APIHandlers.AddAccountAPI(v1Root, "admins", accountServices[accounts.ROLE_ADMIN])
	v1APIHandlers.AddAccountAPI(v1Root, "librarians", accountServices[accounts.ROLE_LIBRARIAN])
	v1APIHandlers.AddAccountAPI(v1Root, "staff", accountServices[accounts.ROLE_STAFF])
	v1APIHandlers.AddStudentAPI(v1Root)

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "admin-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Admin API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Admin API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Admin API", slog.String("error", err.Error()))
			return
		}
	}
}

package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Signup Monitor API
// @version 1.0
// @description API for managing marketplace accounts and their gated signup workflow
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1

// SetupRouter configures the API routes
//
//go:generate swag init -g routes.go -d .,../models,../progress -o ../../docs
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 group
	v1 := r.Group("/api/v1")
	{
		progress := v1.Group("/progress/:orderId")
		{
			// @Summary Get signup progress
			// @Description Get the signup progress record for an account, creating it on first access
			// @Tags progress
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Success 200 {object} models.SignupProgress
			// @Failure 404 {object} ErrorResponse
			// @Failure 503 {object} ErrorResponse
			// @Router /progress/{orderId} [get]
			progress.GET("", h.GetProgress)

			// @Summary Stream live countdown snapshots
			// @Description Server-sent events: one snapshot per tick plus one-shot waiting-period notifications
			// @Tags progress
			// @Produce text/event-stream
			// @Param orderId path string true "Account order ID"
			// @Success 200 {object} progress.Snapshot
			// @Failure 404 {object} ErrorResponse
			// @Router /progress/{orderId}/live [get]
			progress.GET("/live", h.StreamProgress)

			// @Summary Update the create-account step
			// @Description Mark the create-account step completed or not
			// @Tags progress
			// @Accept json
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Param request body stepUpdateRequest true "Step update"
			// @Success 200 {object} models.SignupProgress
			// @Failure 400 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Router /progress/{orderId}/create-account [put]
			progress.PUT("/create-account", h.UpdateCreateAccountStep)

			// @Summary Update the first-listing step
			// @Tags progress
			// @Accept json
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Param request body stepUpdateRequest true "Step update"
			// @Success 200 {object} models.SignupProgress
			// @Failure 400 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 409 {object} ErrorResponse
			// @Router /progress/{orderId}/first-listing [put]
			progress.PUT("/first-listing", h.UpdateFirstListingStep)

			// @Summary Update the seller-account step
			// @Tags progress
			// @Accept json
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Param request body stepUpdateRequest true "Step update"
			// @Success 200 {object} models.SignupProgress
			// @Failure 400 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 409 {object} ErrorResponse
			// @Router /progress/{orderId}/seller-account [put]
			progress.PUT("/seller-account", h.UpdateSellerAccountStep)

			// @Summary Update the check-account status
			// @Description Record the review outcome; active/suspended also flips the account's suspended flag
			// @Tags progress
			// @Accept json
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Param request body statusUpdateRequest true "Status update"
			// @Success 200 {object} models.SignupProgress
			// @Failure 400 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 409 {object} ErrorResponse
			// @Router /progress/{orderId}/check-account [put]
			progress.PUT("/check-account", h.UpdateCheckAccountStatus)
		}

		accounts := v1.Group("/accounts")
		{
			// @Summary List accounts
			// @Tags accounts
			// @Produce json
			// @Param limit query int false "Page size" default(100)
			// @Param offset query int false "Rows to skip" default(0)
			// @Param search query string false "Search term"
			// @Success 200 {object} AccountListResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /accounts [get]
			accounts.GET("", h.ListAccounts)

			// @Summary Create an account
			// @Tags accounts
			// @Accept json
			// @Produce json
			// @Param request body createAccountRequest true "Account"
			// @Success 201 {object} models.Account
			// @Failure 400 {object} ErrorResponse
			// @Router /accounts [post]
			accounts.POST("", h.CreateAccount)

			// @Summary Generate a random account
			// @Tags accounts
			// @Accept json
			// @Produce json
			// @Param request body generateAccountRequest false "Generation options"
			// @Success 201 {object} models.Account
			// @Failure 503 {object} ErrorResponse
			// @Router /accounts/generate-random [post]
			accounts.POST("/generate-random", h.GenerateRandomAccount)

			// @Summary Delete all suspended accounts
			// @Tags accounts
			// @Produce json
			// @Success 200 {object} map[string]int64
			// @Failure 503 {object} ErrorResponse
			// @Router /accounts/suspended [delete]
			accounts.DELETE("/suspended", h.DeleteSuspendedAccounts)

			// @Summary Get account details
			// @Tags accounts
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Success 200 {object} models.Account
			// @Failure 404 {object} ErrorResponse
			// @Router /accounts/{orderId} [get]
			accounts.GET("/:orderId", h.GetAccount)

			// @Summary Update an account
			// @Description Merge the supplied fields into the account; omitted fields keep their value
			// @Tags accounts
			// @Accept json
			// @Produce json
			// @Param orderId path string true "Account order ID"
			// @Param request body updateAccountRequest true "Fields to update"
			// @Success 200 {object} models.Account
			// @Failure 400 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Router /accounts/{orderId} [put]
			accounts.PUT("/:orderId", h.UpdateAccount)

			// @Summary Delete an account
			// @Tags accounts
			// @Param orderId path string true "Account order ID"
			// @Success 204 "No Content"
			// @Failure 404 {object} ErrorResponse
			// @Router /accounts/{orderId} [delete]
			accounts.DELETE("/:orderId", h.DeleteAccount)
		}

		emailDomain := v1.Group("/email-domain")
		{
			// @Summary Get the email domain for generated accounts
			// @Tags settings
			// @Produce json
			// @Success 200 {object} models.EmailDomainSettings
			// @Failure 503 {object} ErrorResponse
			// @Router /email-domain [get]
			emailDomain.GET("", h.GetEmailDomain)

			// @Summary Update the email domain for generated accounts
			// @Tags settings
			// @Accept json
			// @Produce json
			// @Param request body emailDomainRequest true "Email domain"
			// @Success 200 {object} models.EmailDomainSettings
			// @Failure 400 {object} ErrorResponse
			// @Router /email-domain [put]
			emailDomain.PUT("", h.UpdateEmailDomain)
		}
	}

	return r
}

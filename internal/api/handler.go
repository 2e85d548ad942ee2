package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/ybenmoussa/signup-monitor/internal/accounts"
	"github.com/ybenmoussa/signup-monitor/internal/errors"
	"github.com/ybenmoussa/signup-monitor/internal/models"
	"github.com/ybenmoussa/signup-monitor/internal/progress"
)

// ProgressService is the workflow surface exposed over HTTP.
type ProgressService interface {
	GetOrCreate(ctx context.Context, accountID string) (*models.SignupProgress, error)
	SetCreateAccountStep(ctx context.Context, accountID string, completed bool) error
	SetFirstListingStep(ctx context.Context, accountID string, completed bool) error
	SetSellerAccountStep(ctx context.Context, accountID string, completed bool) error
	SetCheckAccountStatus(ctx context.Context, accountID string, status models.CheckStatus) error
}

// AccountService is the account management surface exposed over HTTP.
type AccountService interface {
	Get(ctx context.Context, orderID string) (*models.Account, error)
	List(ctx context.Context, limit, offset int, search string) ([]*models.Account, int64, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, orderID string, update accounts.AccountUpdate) (*models.Account, error)
	CreateRandom(ctx context.Context, userID string) (*models.Account, error)
	Delete(ctx context.Context, orderID string) error
	PurgeSuspended(ctx context.Context) (int64, error)
	EmailDomain(ctx context.Context) (string, error)
	SetEmailDomain(ctx context.Context, domain string) error
}

type Handler struct {
	progress     ProgressService
	accounts     AccountService
	clock        clockwork.Clock
	tickInterval time.Duration
	logger       *logrus.Logger
}

func NewHandler(progress ProgressService, accounts AccountService, clock clockwork.Clock, tickInterval time.Duration, logger *logrus.Logger) *Handler {
	return &Handler{
		progress:     progress,
		accounts:     accounts,
		clock:        clock,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

// ErrorResponse is the error payload returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AccountListResponse is the paginated account listing payload.
type AccountListResponse struct {
	Accounts []*models.Account `json:"accounts"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type stepUpdateRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type createAccountRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Country   string `json:"country"`
	UserID    string `json:"user_id"`
}

type updateAccountRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Country   *string `json:"country"`
	UserID    *string `json:"user_id"`
}

type generateAccountRequest struct {
	UserID string `json:"user_id"`
}

type emailDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// GetProgress returns the signup progress for an account, creating the
// record on first access.
func (h *Handler) GetProgress(c *gin.Context) {
	record, err := h.progress.GetOrCreate(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to fetch progress")
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateCreateAccountStep marks the create-account step completed or not.
func (h *Handler) UpdateCreateAccountStep(c *gin.Context) {
	h.updateStep(c, h.progress.SetCreateAccountStep)
}

// UpdateFirstListingStep marks the first-listing step completed or not.
func (h *Handler) UpdateFirstListingStep(c *gin.Context) {
	h.updateStep(c, h.progress.SetFirstListingStep)
}

// UpdateSellerAccountStep marks the seller-account step completed or not.
func (h *Handler) UpdateSellerAccountStep(c *gin.Context) {
	h.updateStep(c, h.progress.SetSellerAccountStep)
}

func (h *Handler) updateStep(c *gin.Context, set func(ctx context.Context, accountID string, completed bool) error) {
	var req stepUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body: completed is required")
		return
	}

	accountID := c.Param("orderId")
	if err := set(c.Request.Context(), accountID, *req.Completed); err != nil {
		h.respondWithServiceError(c, err, "Failed to update step")
		return
	}

	// Setters do not return the row; the refreshed record is the single
	// source of truth for reads.
	record, err := h.progress.GetOrCreate(c.Request.Context(), accountID)
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to fetch updated progress")
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateCheckAccountStatus records the final review outcome and mirrors
// it onto the account's suspended flag.
func (h *Handler) UpdateCheckAccountStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body: status is required")
		return
	}

	accountID := c.Param("orderId")
	if err := h.progress.SetCheckAccountStatus(c.Request.Context(), accountID, models.CheckStatus(req.Status)); err != nil {
		h.respondWithServiceError(c, err, "Failed to update check account status")
		return
	}

	record, err := h.progress.GetOrCreate(c.Request.Context(), accountID)
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to fetch updated progress")
		return
	}
	c.JSON(http.StatusOK, record)
}

// StreamProgress streams live countdown snapshots for an account as
// server-sent events. Each connection runs its own presenter ticking
// against a cached record; the stream ends when the client disconnects.
func (h *Handler) StreamProgress(c *gin.Context) {
	presenter := progress.NewPresenter(h.progress, h.clock, h.tickInterval, h.logger)
	if err := presenter.Start(c.Request.Context(), c.Param("orderId")); err != nil {
		h.respondWithServiceError(c, err, "Failed to start countdown stream")
		return
	}
	defer presenter.Stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("snapshot", presenter.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-presenter.Updates():
			c.SSEvent("snapshot", snap)
			c.Writer.Flush()
		case n := <-presenter.Notifications():
			c.SSEvent("notification", n)
			c.Writer.Flush()
		}
	}
}

// ListAccounts returns a page of accounts.
func (h *Handler) ListAccounts(c *gin.Context) {
	limit, err := getIntQueryParam(c, "limit", 100)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid limit parameter")
		return
	}
	offset, err := getIntQueryParam(c, "offset", 0)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid offset parameter")
		return
	}

	accounts, total, err := h.accounts.List(c.Request.Context(), limit, offset, c.Query("search"))
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, AccountListResponse{
		Accounts: accounts,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetAccount returns one account by order ID.
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to fetch account")
		return
	}
	c.JSON(http.StatusOK, account)
}

// CreateAccount inserts a new account from the request payload.
func (h *Handler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body: order_id is required")
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), &models.Account{
		OrderID:   req.OrderID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Country:   req.Country,
		UserID:    req.UserID,
	})
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, account)
}

// UpdateAccount merges the supplied fields into an existing account.
// The suspended flag cannot be set here; it only moves through the
// check-account status endpoint.
func (h *Handler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), c.Param("orderId"), accounts.AccountUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Country:   req.Country,
		UserID:    req.UserID,
	})
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, account)
}

// GenerateRandomAccount creates a synthetic account.
func (h *Handler) GenerateRandomAccount(c *gin.Context) {
	var req generateAccountRequest
	// Body is optional; an empty user_id mints one.
	_ = c.ShouldBindJSON(&req)

	account, err := h.accounts.CreateRandom(c.Request.Context(), req.UserID)
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to generate account")
		return
	}
	c.JSON(http.StatusCreated, account)
}

// DeleteAccount removes an account and its progress record.
func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("orderId")); err != nil {
		h.respondWithServiceError(c, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSuspendedAccounts purges every suspended account.
func (h *Handler) DeleteSuspendedAccounts(c *gin.Context) {
	count, err := h.accounts.PurgeSuspended(c.Request.Context())
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to delete suspended accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetEmailDomain returns the configured email domain.
func (h *Handler) GetEmailDomain(c *gin.Context) {
	domain, err := h.accounts.EmailDomain(c.Request.Context())
	if err != nil {
		h.respondWithServiceError(c, err, "Failed to fetch email domain")
		return
	}
	c.JSON(http.StatusOK, models.EmailDomainSettings{Domain: domain})
}

// UpdateEmailDomain replaces the configured email domain.
func (h *Handler) UpdateEmailDomain(c *gin.Context) {
	var req emailDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body: domain is required")
		return
	}

	if err := h.accounts.SetEmailDomain(c.Request.Context(), req.Domain); err != nil {
		h.respondWithServiceError(c, err, "Failed to update email domain")
		return
	}
	c.JSON(http.StatusOK, models.EmailDomainSettings{Domain: req.Domain})
}

func (h *Handler) respondWithServiceError(c *gin.Context, err error, logMessage string) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsInvalidStatus(err):
		status = http.StatusBadRequest
	case errors.IsPreconditionFailed(err):
		status = http.StatusConflict
	case errors.IsStoreUnavailable(err):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Errorf("%s: %v", logMessage, err)
	}
	respondWithError(c, status, err.Error())
}

func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Error: message})
}

func getIntQueryParam(c *gin.Context, param string, defaultValue int) (int, error) {
	value := c.Query(param)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

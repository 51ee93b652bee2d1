package routers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"courtside-api/internal/billing"
	"courtside-api/internal/ctx"
	"courtside-api/internal/shared"

	"github.com/labstack/echo/v4"
)

// AdminStore covers the mutations only operators may perform.
type AdminStore interface {
	GetSettings(ctx context.Context) (billing.Settings, error)
	PutSettings(ctx context.Context, settings billing.Settings) error
	Credit(ctx context.Context, id string, amount float64) (float64, error)
}

type AdminRouter struct {
	store  AdminStore
	apiKey string
}

func RegisterAdminRoutes(e *echo.Group, store AdminStore, adminAPIKey string) {
	ar := AdminRouter{store: store, apiKey: adminAPIKey}

	admin := e.Group("/admin", ar.requireAdminKey)
	admin.GET("/settings", ar.GetSettings)
	admin.PUT("/settings", ar.UpdateSettings)
	admin.POST("/accounts/:id/credits", ar.CreditAccount)
}

func (ar *AdminRouter) requireAdminKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(cc echo.Context) error {
		apiKey, err := shared.ExtractAPIKey(cc)
		if err != nil {
			return cc.String(401, "Missing or invalid API key")
		}
		if ar.apiKey == "" || apiKey != ar.apiKey {
			return cc.String(401, "Unauthorized API key")
		}
		return next(cc)
	}
}

func (ar *AdminRouter) GetSettings(cc echo.Context) error {
	c := cc.(*ctx.Context)

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	settings, err := ar.store.GetSettings(reqCtx)
	if err != nil {
		c.LogValues.AddError(errors.Join(errors.New("failed to get settings"), err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

func (ar *AdminRouter) UpdateSettings(cc echo.Context) error {
	c := cc.(*ctx.Context)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	var settings billing.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		c.LogValues.AddError(errors.Join(errors.New("failed to unmarshal settings"), err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON format"})
	}
	if settings.ProfitMarginPercent < 0 || settings.ExchangeRate <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "margin must be non-negative and exchange rate positive"})
	}

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := ar.store.PutSettings(reqCtx, settings); err != nil {
		c.LogValues.AddError(errors.Join(errors.New("failed to save settings"), err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

type creditRequest struct {
	Amount float64 `json:"amount"`
}

func (ar *AdminRouter) CreditAccount(cc echo.Context) error {
	c := cc.(*ctx.Context)

	accountID := c.Param("id")
	var req creditRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON format"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
	}

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	balance, err := ar.store.Credit(reqCtx, accountID, req.Amount)
	if err != nil {
		c.LogValues.AddError(err)
		rerr := resolveRequestError(err)
		return c.JSON(rerr.StatusCode, map[string]string{"error": rerr.Err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"account_id": accountID,
		"balance":    balance,
	})
}

package routers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"courtside-api/internal/ctx"
	"courtside-api/internal/handlers/generate"
	"courtside-api/internal/pricing"
	"courtside-api/internal/shared"

	"github.com/labstack/echo/v4"
)

type GenerateRouter struct {
	h *generate.Handler
}

func RegisterGenerateRoutes(e *echo.Group, h *generate.Handler) {
	gr := GenerateRouter{h: h}

	v1 := e.Group("/v1")
	v1.POST("/generate", gr.Generate)
	v1.GET("/models", gr.GetModels)
	v1.GET("/usage", gr.GetUsage)
	v1.GET("/balance", gr.GetBalance)
}

func (gr *GenerateRouter) Generate(cc echo.Context) error {
	c := cc.(*ctx.Context)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.LogValues.AddError(err)
		return writeFramedError(c, false, shared.ErrInvalidRequest)
	}

	reqInfo, preErr := gr.h.Preprocess(body, c.Reqid)
	if preErr != nil {
		c.LogValues.AddError(preErr)
		// Transport preference is unknown until the body parses, so
		// validation failures always use the buffered envelope.
		return writeFramedError(c, false, preErr)
	}

	c.LogValues.AccountID = reqInfo.AccountID
	c.LogValues.Model = reqInfo.Model
	c.LogValues.Stream = reqInfo.Stream

	var emit generate.EmitFunc
	var buffered []shared.Event
	if reqInfo.Stream {
		emit = createStreamEmitter(c)
	} else {
		emit = func(ev shared.Event) error {
			buffered = append(buffered, ev)
			return nil
		}
	}

	out, doErr := gr.h.Do(c.Request().Context(), reqInfo, emit)
	if doErr != nil {
		// Nothing has been emitted yet, status is still ours to choose
		c.LogValues.AddError(doErr)
		c.LogValues.LogLevel = "ERROR"
		return writeFramedError(c, reqInfo.Stream, doErr)
	}

	c.LogValues.InputTokens = out.Usage.InputTokens
	c.LogValues.OutputTokens = out.Usage.OutputTokens
	c.LogValues.BilledCost = out.Usage.BilledSettlement
	if out.Canceled {
		c.LogValues.AddError(errors.New("client disconnected mid-response"))
	}

	if !reqInfo.Stream {
		return c.JSON(http.StatusOK, buffered)
	}
	return nil
}

type ModelList struct {
	Data []Model `json:"data"`
}

type Model struct {
	ID      string       `json:"id"`
	Pricing ModelPricing `json:"pricing"`
}

type ModelPricing struct {
	Prompt     float64 `json:"prompt"`
	Completion float64 `json:"completion"`
	Unit       string  `json:"unit"`
}

func (gr *GenerateRouter) GetModels(cc echo.Context) error {
	c := cc.(*ctx.Context)

	models := make([]Model, 0, len(pricing.Models()))
	for _, name := range pricing.Models() {
		entry, _ := pricing.Lookup(name)
		models = append(models, Model{
			ID: name,
			Pricing: ModelPricing{
				Prompt:     entry.InputPerMillion,
				Completion: entry.OutputPerMillion,
				Unit:       "usd_per_million_tokens",
			},
		})
	}

	return c.JSON(http.StatusOK, ModelList{Data: models})
}

func (gr *GenerateRouter) GetUsage(cc echo.Context) error {
	c := cc.(*ctx.Context)

	accountID := c.QueryParam("account_id")
	if accountID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account_id is required"})
	}

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := gr.h.Usage.ListUsage(reqCtx, accountID, 50)
	if err != nil {
		c.LogValues.AddError(errors.Join(errors.New("failed to list usage"), err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list usage"})
	}
	if records == nil {
		records = []shared.UsageRecord{}
	}

	return c.JSON(http.StatusOK, map[string]any{"data": records})
}

func (gr *GenerateRouter) GetBalance(cc echo.Context) error {
	c := cc.(*ctx.Context)

	accountID := c.QueryParam("account_id")
	if accountID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account_id is required"})
	}

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := gr.h.Accounts.GetAccount(reqCtx, accountID)
	if err != nil {
		c.LogValues.AddError(errors.Join(errors.New("failed to get account"), err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get account"})
	}
	if acc == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": shared.ErrAccountNotFound.Err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"account_id": acc.ID,
		"balance":    acc.Balance,
	})
}

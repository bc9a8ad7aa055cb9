package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

// Converter converts a batch of amounts against the current snapshot.
type Converter interface {
	ConvertBatch(ctx context.Context, reqs []rate.ConversionRequest) ([]rate.Conversion, error)
}

type currencyValue struct {
	Currency string   `json:"currency" validate:"required"`
	Amount   *float64 `json:"amount" validate:"required"`
}

type rateConversionItem struct {
	FromValue      currencyValue `json:"from_value" validate:"required"`
	TargetCurrency string        `json:"target_currency" validate:"required"`
}

type rateConversionParams struct {
	Conversions []rateConversionItem `json:"conversions" validate:"required,min=1,dive"`
}

type amountJSON struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

type conversionJSON struct {
	Rate float64    `json:"rate"`
	From amountJSON `json:"from"`
	To   amountJSON `json:"to"`
}

// RateConversion is the rate_conversion tool.
type RateConversion struct {
	converter Converter
	validate  *validator.Validate
}

func NewRateConversion(converter Converter) *RateConversion {
	return &RateConversion{
		converter: converter,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (t *RateConversion) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "rate_conversion",
		Description: "Convert between different currencies using ECB exchange rates. Supports major currencies " +
			"including USD, JPY, BGN, CZK, DKK, GBP, HUF, PLN, RON, SEK, CHF, ISK, NOK, TRY, AUD, BRL, CAD, " +
			"CNY, HKD, IDR, ILS, INR, KRW, MXN, MYR, NZD, PHP, SGD, THB, ZAR",
		InputSchema: rateConversionSchema(),
	}
}

func (t *RateConversion) Execute(ctx context.Context, arguments json.RawMessage) ([]Content, error) {
	if len(arguments) == 0 || string(arguments) == "null" {
		return nil, fmt.Errorf("%w: missing arguments", rate.ErrInvalidArguments)
	}

	var params rateConversionParams
	if err := json.Unmarshal(arguments, &params); err != nil {
		return nil, fmt.Errorf("%w: %w", rate.ErrInvalidArguments, err)
	}
	if err := t.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %w", rate.ErrInvalidArguments, err)
	}

	reqs := make([]rate.ConversionRequest, len(params.Conversions))
	for i, c := range params.Conversions {
		reqs[i] = rate.ConversionRequest{
			From:   c.FromValue.Currency,
			Amount: *c.FromValue.Amount,
			To:     c.TargetCurrency,
		}
	}

	conversions, err := t.converter.ConvertBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}

	out := make([]conversionJSON, len(conversions))
	for i, c := range conversions {
		out[i] = conversionJSON{
			Rate: c.Rate,
			From: amountJSON{Currency: c.From, Amount: c.Amount},
			To:   amountJSON{Currency: c.To, Amount: c.ConvertedAmount},
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode conversions: %w", err)
	}
	return []Content{TextContent(string(b))}, nil
}

func rateConversionSchema() map[string]any {
	currency := func(desc string) map[string]any {
		return map[string]any{"type": "string", "description": desc}
	}
	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"title":    "RateConversionParams",
		"type":     "object",
		"required": []string{"conversions"},
		"properties": map[string]any{
			"conversions": map[string]any{
				"description": "Array of currency conversions to perform",
				"type":        "array",
				"minItems":    1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"from_value", "target_currency"},
					"properties": map[string]any{
						"from_value": map[string]any{
							"description": "Currency value to convert from",
							"type":        "object",
							"required":    []string{"currency", "amount"},
							"properties": map[string]any{
								"currency": currency("The currency code (e.g., EUR, USD, JPY)"),
								"amount": map[string]any{
									"type":        "number",
									"description": "The amount to convert",
								},
							},
						},
						"target_currency": currency("The target currency to convert to (e.g., EUR, USD, JPY)"),
					},
				},
			},
		},
	}
}

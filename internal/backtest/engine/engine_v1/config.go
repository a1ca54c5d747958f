package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/quantfolio/stockdash-engine/internal/backtest/engine/engine_v1/costmodel"
	"github.com/quantfolio/stockdash-engine/pkg/errors"
)

// FillPolicy controls which price a validated action is executed at.
type FillPolicy string

const (
	// FillNextOpen executes a bar's decision at the next bar's open. A decision
	// on the final bar cannot be filled and is rejected.
	FillNextOpen FillPolicy = "next_open"
	// FillSameClose executes a bar's decision at that bar's own close. This is
	// optimistic: the close is already known when the strategy decides.
	FillSameClose FillPolicy = "same_close"
)

// AllFillPolicies lists every valid fill policy, for schema generation.
var AllFillPolicies = []any{string(FillNextOpen), string(FillSameClose)}

// IsValid reports whether the fill policy is one of the known values.
func (p FillPolicy) IsValid() bool {
	return p == FillNextOpen || p == FillSameClose
}

// SizingPolicy controls how a buy action is converted into a share quantity.
type SizingPolicy string

const (
	// SizeFixedFraction spends PositionSize of available cash, scaled by the
	// action's fraction.
	SizeFixedFraction SizingPolicy = "fixed_fraction"
	// SizeAllIn spends all available cash.
	SizeAllIn SizingPolicy = "all_in"
	// SizeFixedQuantity buys exactly FixedQuantity shares.
	SizeFixedQuantity SizingPolicy = "fixed_quantity"
)

// AllSizingPolicies lists every valid sizing policy, for schema generation.
var AllSizingPolicies = []any{string(SizeFixedFraction), string(SizeAllIn), string(SizeFixedQuantity)}

// IsValid reports whether the sizing policy is one of the known values.
func (p SizingPolicy) IsValid() bool {
	return p == SizeFixedFraction || p == SizeAllIn || p == SizeFixedQuantity
}

// BacktestEngineV1Config is the full configuration of one simulation run.
type BacktestEngineV1Config struct {
	InitialCash      float64                    `yaml:"initial_cash" json:"initial_cash" validate:"required,gt=0" jsonschema:"title=Initial Cash,description=Starting cash for the simulation,minimum=0"`
	RiskFreeRate     float64                    `yaml:"risk_free_rate" json:"risk_free_rate" validate:"gte=0" jsonschema:"title=Risk Free Rate,description=Annual risk free rate used by the performance analyzer"`
	BarsPerYear      int                        `yaml:"bars_per_year" json:"bars_per_year" validate:"gt=0" jsonschema:"title=Bars Per Year,description=Number of bars in one year used for annualization,default=252"`
	CostModel        costmodel.ModelType        `yaml:"cost_model" json:"cost_model" jsonschema:"title=Cost Model,description=Transaction cost model applied to every fill"`
	FixedFee         float64                    `yaml:"fixed_fee" json:"fixed_fee" validate:"gte=0" jsonschema:"title=Fixed Fee,description=Flat fee per trade for the fixed and both cost models"`
	SpreadRate       float64                    `yaml:"spread_rate" json:"spread_rate" validate:"gte=0" jsonschema:"title=Spread Rate,description=Proportional cost rate for the proportional and both cost models"`
	FillPolicy       FillPolicy                 `yaml:"fill_policy" json:"fill_policy" jsonschema:"title=Fill Policy,description=Which price a decision is executed at"`
	SizingPolicy     SizingPolicy               `yaml:"sizing_policy" json:"sizing_policy" jsonschema:"title=Sizing Policy,description=How a buy decision is converted into a share quantity"`
	PositionSize     float64                    `yaml:"position_size" json:"position_size" validate:"gt=0,lte=1" jsonschema:"title=Position Size,description=Fraction of cash committed per buy under fixed_fraction sizing,default=0.95"`
	FixedQuantity    float64                    `yaml:"fixed_quantity" json:"fixed_quantity" validate:"gte=0" jsonschema:"title=Fixed Quantity,description=Shares per buy under fixed_quantity sizing"`
	CloseAtEnd       bool                       `yaml:"close_at_end" json:"close_at_end" jsonschema:"title=Close At End,description=Flatten any open position at the final bar's close"`
	DecimalPrecision int                        `yaml:"decimal_precision" json:"decimal_precision" validate:"gte=0" jsonschema:"title=Decimal Precision,description=Decimal places kept when rounding share quantities,default=0"`
	StartTime        optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional inclusive lower bound on bar time"`
	EndTime          optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional inclusive upper bound on bar time"`
}

// UnmarshalYAML implements custom unmarshaling so optional times map to
// Option values and omitted fields pick up defaults.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCash      float64             `yaml:"initial_cash"`
		RiskFreeRate     float64             `yaml:"risk_free_rate"`
		BarsPerYear      *int                `yaml:"bars_per_year"`
		CostModel        costmodel.ModelType `yaml:"cost_model"`
		FixedFee         float64             `yaml:"fixed_fee"`
		SpreadRate       float64             `yaml:"spread_rate"`
		FillPolicy       FillPolicy          `yaml:"fill_policy"`
		SizingPolicy     SizingPolicy        `yaml:"sizing_policy"`
		PositionSize     *float64            `yaml:"position_size"`
		FixedQuantity    float64             `yaml:"fixed_quantity"`
		CloseAtEnd       *bool               `yaml:"close_at_end"`
		DecimalPrecision int                 `yaml:"decimal_precision"`
		StartTime        *time.Time          `yaml:"start_time"`
		EndTime          *time.Time          `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	defaults := EmptyConfig()

	c.InitialCash = config.InitialCash
	c.RiskFreeRate = config.RiskFreeRate
	c.CostModel = config.CostModel
	c.FixedFee = config.FixedFee
	c.SpreadRate = config.SpreadRate
	c.FillPolicy = config.FillPolicy
	c.SizingPolicy = config.SizingPolicy
	c.FixedQuantity = config.FixedQuantity
	c.DecimalPrecision = config.DecimalPrecision

	c.BarsPerYear = defaults.BarsPerYear
	if config.BarsPerYear != nil {
		c.BarsPerYear = *config.BarsPerYear
	}

	c.PositionSize = defaults.PositionSize
	if config.PositionSize != nil {
		c.PositionSize = *config.PositionSize
	}

	c.CloseAtEnd = defaults.CloseAtEnd
	if config.CloseAtEnd != nil {
		c.CloseAtEnd = *config.CloseAtEnd
	}

	if c.CostModel == "" {
		c.CostModel = defaults.CostModel
	}

	if c.FillPolicy == "" {
		c.FillPolicy = defaults.FillPolicy
	}

	if c.SizingPolicy == "" {
		c.SizingPolicy = defaults.SizingPolicy
	}

	c.StartTime = optional.None[time.Time]()
	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	c.EndTime = optional.None[time.Time]()
	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the configuration before a run starts.
func (c *BacktestEngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if c.InitialCash <= 0 {
			return errors.Wrapf(errors.ErrCodeInvalidInitialCash, err,
				"initial_cash must be positive, got %f", c.InitialCash)
		}

		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine configuration", err)
	}

	if !c.FillPolicy.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidFillPolicy,
			"unknown fill policy %q", c.FillPolicy)
	}

	if !c.SizingPolicy.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidSizingPolicy,
			"unknown sizing policy %q", c.SizingPolicy)
	}

	if !c.CostModel.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidCostModel,
			"unknown cost model %q", c.CostModel)
	}

	if c.SizingPolicy == SizeFixedQuantity && c.FixedQuantity <= 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"fixed_quantity sizing requires a positive fixed_quantity, got %f", c.FixedQuantity)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the engine configuration.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "costmodel.ModelType") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: costmodel.AllModels,
				}
			}

			if strings.Contains(t.String(), "engine.FillPolicy") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllFillPolicies,
				}
			}

			if strings.Contains(t.String(), "engine.SizingPolicy") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllSizingPolicies,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the engine configuration.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a configuration suitable for tests: frictionless fills
// at the bar's own close, all-in sizing, no end flattening.
func TestConfig(initialCash float64) BacktestEngineV1Config {
	cfg := EmptyConfig()
	cfg.InitialCash = initialCash
	cfg.FillPolicy = FillSameClose
	cfg.SizingPolicy = SizeAllIn

	return cfg
}

// EmptyConfig returns a configuration with default values. InitialCash is
// left at zero and must be set before Validate passes.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCash:      0,
		RiskFreeRate:     0,
		BarsPerYear:      252,
		CostModel:        costmodel.ModelNone,
		FixedFee:         0,
		SpreadRate:       0,
		FillPolicy:       FillNextOpen,
		SizingPolicy:     SizeFixedFraction,
		PositionSize:     0.95,
		FixedQuantity:    0,
		CloseAtEnd:       false,
		DecimalPrecision: 0,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
	}
}

package engine_v1

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/barsim/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/barsim/pkg/errors"
)

// BacktestEngineV1Config controls a single backtest run. StartTime and
// EndTime, when present, restrict the loaded series to bars inside the
// closed interval.
type BacktestEngineV1Config struct {
	InitialCapital  float64                    `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting cash for the backtest,minimum=0"`
	CommissionModel commission.ModelName       `yaml:"commission_model" json:"commission_model" jsonschema:"title=Commission Model,description=The commission model applied to every fill"`
	CommissionRate  float64                    `yaml:"commission_rate" json:"commission_rate" validate:"gte=0" jsonschema:"title=Commission Rate,description=Fractional commission rate per fill notional,minimum=0"`
	PositionSize    float64                    `yaml:"position_size" json:"position_size" validate:"gt=0" jsonschema:"title=Position Size,description=Units bought or sold on every entry,minimum=0"`
	Annualization   float64                    `yaml:"annualization" json:"annualization" validate:"gt=0" jsonschema:"title=Annualization,description=Bars per year used to annualize ratio metrics,minimum=0"`
	StartTime       optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the backtest period"`
	EndTime         optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the backtest period"`
}

// DefaultConfig is the configuration used when Initialize receives an empty
// string: 10000 starting cash, no commission, single-unit positions and a
// daily annualization factor.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:  10000,
		CommissionModel: commission.ModelZero,
		CommissionRate:  0,
		PositionSize:    1,
		Annualization:   252,
	}
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Absent fields keep their current values, so a partial document layered
// over DefaultConfig overrides field by field; absent time fields stay None.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCapital  *float64              `yaml:"initial_capital"`
		CommissionModel *commission.ModelName `yaml:"commission_model"`
		CommissionRate  *float64              `yaml:"commission_rate"`
		PositionSize    *float64              `yaml:"position_size"`
		Annualization   *float64              `yaml:"annualization"`
		StartTime       *time.Time            `yaml:"start_time"`
		EndTime         *time.Time            `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	if config.InitialCapital != nil {
		c.InitialCapital = *config.InitialCapital
	}

	if config.CommissionModel != nil {
		c.CommissionModel = *config.CommissionModel
	}

	if config.CommissionRate != nil {
		c.CommissionRate = *config.CommissionRate
	}

	if config.PositionSize != nil {
		c.PositionSize = *config.PositionSize
	}

	if config.Annualization != nil {
		c.Annualization = *config.Annualization
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the config invariants beyond struct tags.
func (c *BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.StartTime.Unwrap().After(c.EndTime.Unwrap()) {
		return errors.New(errors.ErrCodeBacktestConfigError, "start_time must not be after end_time")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
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

			if t.String() == "commission.ModelName" {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission.AllModels,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "Backtest Engine V1 Config"
	schema.Description = "Configuration schema for the V1 backtest engine"

	return schema, nil
}

// GenerateSchemaJSON returns the config schema as indented JSON.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
